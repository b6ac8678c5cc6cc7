// Package speech adapts external speech recognizers and synthesizers.
package speech

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Result is one recognition result from a speech-to-text engine.
// Interim results have Final set to false and are superseded by later ones.
type Result struct {
	Text       string
	Final      bool
	Confidence float64
}

// wireResult is the JSON shape emitted by recognizers: one object per
// result, with "partial" marking interim hypotheses. Objects with a "type"
// other than a result are status events and carry no text.
type wireResult struct {
	Text       string  `json:"text"`
	Partial    bool    `json:"partial"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
	Message    string  `json:"message"`
}

// DecodeResults reads a stream of JSON result objects. Objects may be on
// separate lines or pretty-printed; status events are skipped.
func DecodeResults(r io.Reader) ([]Result, error) {
	dec := json.NewDecoder(r)
	var results []Result
	for i := 0; ; i++ {
		var wr wireResult
		err := dec.Decode(&wr)
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode result %d: %w", i, err)
		}
		if wr.Message != "" && wr.Text == "" {
			continue
		}
		results = append(results, Result{
			Text:       wr.Text,
			Final:      !wr.Partial,
			Confidence: wr.Confidence,
		})
	}
}

// FinalTranscript joins the text of final results, ignoring interim ones.
func FinalTranscript(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if !r.Final {
			continue
		}
		if text := strings.TrimSpace(r.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
