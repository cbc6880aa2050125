// Package plot contains presentation-layer collaborators for the render
// driver: an ASCII terminal view and a PNG chart writer. They consume
// frames; they never touch the store or the ingestion path.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"csi-monitor/internal/render"
)

// Fixed display windows, deliberately not auto-derived: magnitude and
// phase keep a stable frame of reference across redraws. The timing
// history autoscales.
const (
	magMin   = 0.0
	magMax   = 1.0
	phaseMin = -10.0
	phaseMax = 10.0
)

// Term renders frames as ASCII plots, redrawing the whole screen each
// update.
type Term struct {
	out      io.Writer
	width    int
	height   int
	channels []int
}

// NewTerm builds a terminal presenter. Width and height are per-plot
// character dimensions; pass 0 to size from the terminal, falling back
// to 80x10 when stdout is not a terminal.
func NewTerm(width, height int) *Term {
	if width <= 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w - 10 // leave room for the y-axis labels
		} else {
			width = 80
		}
	}
	if height <= 0 {
		height = 10
	}
	return &Term{out: os.Stdout, width: width, height: height}
}

func (t *Term) Layout(channels []int) error {
	t.channels = channels
	_, err := fmt.Fprintf(t.out, "Plot layout fixed for RX ports %v\n", channels)
	return err
}

func (t *Term) Update(frame render.Frame) error {
	var b strings.Builder
	b.WriteString("\033[H\033[2J") // home + clear

	for _, ch := range frame.Channels {
		fmt.Fprintf(&b, "RX %d - Magnitude\n", ch.ID)
		t.drawSeries(&b, ch.Magnitude, magMin, magMax)
		fmt.Fprintf(&b, "RX %d - Unwrapped Phase (rad)\n", ch.ID)
		t.drawSeries(&b, ch.Phase, phaseMin, phaseMax)
	}

	if len(frame.Timing.Micros) > 0 {
		lo, hi := seriesRange(frame.Timing.Micros)
		fmt.Fprintf(&b, "Time Alignment History (µs)  [%d samples]\n", len(frame.Timing.Micros))
		t.drawSeries(&b, frame.Timing.Micros, lo, hi)
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

func (t *Term) Close() error {
	_, err := fmt.Fprintln(t.out)
	return err
}

// drawSeries plots ys into a width x height character grid with the
// given value window, then writes it with y-axis labels.
func (t *Term) drawSeries(b *strings.Builder, ys []float64, lo, hi float64) {
	grid := renderGrid(ys, t.width, t.height, lo, hi)
	for row, line := range grid {
		switch row {
		case 0:
			fmt.Fprintf(b, "%8.2f |%s\n", hi, line)
		case len(grid) - 1:
			fmt.Fprintf(b, "%8.2f |%s\n", lo, line)
		default:
			fmt.Fprintf(b, "         |%s\n", line)
		}
	}
	fmt.Fprintf(b, "         +%s\n", strings.Repeat("-", t.width))
}

// renderGrid maps each sample to a cell, clamping values outside the
// window to the edge rows.
func renderGrid(ys []float64, width, height int, lo, hi float64) []string {
	if hi == lo {
		hi = lo + 1e-6
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i, v := range ys {
		x := 0
		if len(ys) > 1 {
			x = i * (width - 1) / (len(ys) - 1)
		}
		norm := (v - lo) / (hi - lo)
		y := int(math.Round(float64(height-1) * (1 - norm)))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		if grid[y][x] == ' ' {
			grid[y][x] = '*'
		} else {
			grid[y][x] = '#'
		}
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return lines
}

// seriesRange returns the min and max of ys for autoscaled plots.
func seriesRange(ys []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range ys {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
