// Package generator picks practice prompts and adds optional score jitter.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/tuispeak/internal/analysis"
)

// Generator picks prompts at random.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects a prompt uniformly. It returns "" for no prompts.
func (g *Generator) Pick(prompts []string) string {
	if len(prompts) == 0 {
		return ""
	}
	return prompts[g.rnd.Intn(len(prompts))]
}

// PickWeighted selects a prompt with a bias toward prompts containing weak
// sounds. Each occurrence of a weak sound adds factor to the prompt's weight.
func (g *Generator) PickWeighted(prompts []string, weakSounds []string, factor float64) string {
	if len(prompts) == 0 {
		return ""
	}
	if len(weakSounds) == 0 || factor <= 0 {
		return g.Pick(prompts)
	}
	weights := make([]float64, len(prompts))
	total := 0.0
	for i, prompt := range prompts {
		w := 1.0 + float64(WeakOccurrences(prompt, weakSounds))*factor
		weights[i] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return prompts[i]
		}
	}
	return prompts[len(prompts)-1]
}

// WeakOccurrences counts occurrences of weak sounds in text, case-insensitively.
func WeakOccurrences(text string, weakSounds []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, sound := range weakSounds {
		if sound == "" {
			continue
		}
		n += strings.Count(lower, strings.ToLower(sound))
	}
	return n
}

// Jitter is a randomized analysis.BaseScorer. Each call draws a fresh base in
// [analysis.MinBaseScore, analysis.MaxBaseScore], so repeated analyses of the
// same transcript differ.
type Jitter struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewJitter returns a Jitter drawing from g's source.
func (g *Generator) NewJitter() *Jitter {
	return &Jitter{rnd: rand.New(rand.NewSource(g.rnd.Int63()))}
}

// BaseScore implements analysis.BaseScorer.
func (j *Jitter) BaseScore(string) float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return analysis.MinBaseScore + j.rnd.Float64()*(analysis.MaxBaseScore-analysis.MinBaseScore)
}
