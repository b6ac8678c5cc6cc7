package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles the prompt, marking runes that belong to a weak sound.
func buildStyledRunes(prompt string, weakSounds []string) []styledRune {
	runes := []rune(prompt)
	mask := weakMask(runes, weakSounds)
	out := make([]styledRune, 0, len(runes))
	for i, r := range runes {
		style := promptStyle
		if mask[i] {
			style = weakStyle
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: unicode.IsSpace(r),
		})
	}
	return out
}

// weakMask reports for each rune whether it is part of a case-insensitive
// occurrence of any weak sound.
func weakMask(runes []rune, weakSounds []string) []bool {
	mask := make([]bool, len(runes))
	if len(weakSounds) == 0 {
		return mask
	}
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	for _, sound := range weakSounds {
		pattern := []rune(strings.ToLower(sound))
		if len(pattern) == 0 {
			continue
		}
		for i := 0; i+len(pattern) <= len(lower); i++ {
			if !hasRunesAt(lower, pattern, i) {
				continue
			}
			for j := range pattern {
				mask[i+j] = true
			}
		}
	}
	return mask
}

func hasRunesAt(s, pattern []rune, at int) bool {
	for j, r := range pattern {
		if s[at+j] != r {
			return false
		}
	}
	return true
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits the display width.
// Words wider than the line are split.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
