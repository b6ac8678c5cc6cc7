// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

// Scale is the fixed value range shared by every series in a plot.
type Scale struct {
	Min float64
	Max float64
}

// ScoreScale covers all score values.
var ScoreScale = Scale{Min: 0, Max: 100}

type dash struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 3
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var dashes = []dash{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var palette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// PlotScores renders series on the fixed score scale.
func PlotScores(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return Plot(w, title, series, ScoreScale, width, height, forceColor)
}

// Plot renders a braille line chart of series on a shared scale.
// Zero width fits the terminal; zero height uses the default.
func Plot(w io.Writer, title string, series []Series, scale Scale, width, height int, forceColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if scale.Max-scale.Min < 1e-9 {
		scale.Max = scale.Min + 1
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	layers := make([]*canvas, len(series))
	for i, s := range series {
		c := newCanvas(width, height)
		style := dashes[i%len(dashes)]
		prevX, prevY := -1, -1
		for x, v := range resample(s.Values, width) {
			px, py := x*2, c.row(v, scale)
			if prevX < 0 {
				if style.draws(px) {
					c.dot(px, py)
				}
			} else {
				c.line(prevX, prevY, px, py, style)
			}
			prevX, prevY = px, py
		}
		layers[i] = c
	}

	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	labels := axisLabels(height, scale)
	for y := 0; y < height; y++ {
		b.WriteString(runewidth.FillLeft(labels[y], axisLabelWidth))
		b.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, c := range layers {
				if m := c.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			if useColor && owner >= 0 {
				b.WriteString(palette[owner%len(palette)])
				b.WriteRune(braille(mask))
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(braille(mask))
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(series, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		return minPlotWidth
	}
	return plotWidth
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func axisLabels(height int, scale Scale) []string {
	labels := make([]string, height)
	labels[0] = formatTick(scale.Max)
	if height > 2 {
		labels[height/2] = formatTick((scale.Max + scale.Min) / 2)
	}
	if height > 1 {
		labels[height-1] = formatTick(scale.Min)
	}
	return labels
}

func formatTick(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", braille(0x01), s.Name, dashes[i%len(dashes)].name)
		if useColor {
			label = palette[i%len(palette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// resample stretches or buckets values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func (d dash) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%d.period < d.on
}

// canvas is a grid of braille cells, each 2 dots wide and 4 dots tall.
type canvas struct {
	cells [][]uint8
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{cells: cells}
}

// row maps a value to a dot row; values outside the scale are pinned to the edges.
func (c *canvas) row(v float64, scale Scale) int {
	dots := len(c.cells) * 4
	if dots <= 1 {
		return 0
	}
	pos := (v - scale.Min) / (scale.Max - scale.Min)
	r := int(math.Round((1 - pos) * float64(dots-1)))
	return min(max(r, 0), dots-1)
}

func (c *canvas) dot(x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(c.cells) || cx >= len(c.cells[cy]) {
		return
	}
	c.cells[cy][cx] |= dotBit(x%2, y%4)
}

// line draws with Bresenham's algorithm, skipping dots the dash pattern hides.
func (c *canvas) line(x0, y0, x1, y1 int, d dash) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if d.draws(x0) {
			c.dot(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// dotBit returns the Unicode braille bit for a dot within a cell.
func dotBit(col, row int) uint8 {
	if row == 3 {
		return 0x40 << col
	}
	return 1 << (row + 3*col)
}

func braille(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
