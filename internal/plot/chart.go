package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"csi-monitor/internal/render"
)

// Chart renders each frame to PNG files under a directory, one file per
// plot, overwritten in place so an external viewer can poll them.
// Rendering is throttled: PNG encoding at the full 50ms render cadence
// would burn CPU for no visible benefit.
type Chart struct {
	dir      string
	interval time.Duration
	width    int
	height   int
	last     time.Time
}

// NewChart builds a PNG presenter writing into dir at most once per
// interval.
func NewChart(dir string, interval time.Duration) *Chart {
	return &Chart{dir: dir, interval: interval, width: 640, height: 320}
}

func (c *Chart) Layout(channels []int) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	return nil
}

func (c *Chart) Update(frame render.Frame) error {
	now := time.Now()
	if now.Sub(c.last) < c.interval {
		return nil
	}
	c.last = now

	for _, ch := range frame.Channels {
		mag := c.plot(fmt.Sprintf("RX %d - Magnitude", ch.ID), ch.X, ch.Magnitude,
			&chart.ContinuousRange{Min: magMin, Max: magMax})
		if err := c.write(fmt.Sprintf("rx%02d_magnitude.png", ch.ID), mag); err != nil {
			return err
		}

		phase := c.plot(fmt.Sprintf("RX %d - Unwrapped Phase (rad)", ch.ID), ch.X, ch.Phase,
			&chart.ContinuousRange{Min: phaseMin, Max: phaseMax})
		if err := c.write(fmt.Sprintf("rx%02d_phase.png", ch.ID), phase); err != nil {
			return err
		}
	}

	timing := c.plot("Time Alignment History (µs)", frame.Timing.X, frame.Timing.Micros, nil)
	return c.write("time_alignment.png", timing)
}

func (c *Chart) Close() error { return nil }

// plot builds a single-series chart. go-chart cannot render fewer than
// two points, so single-point series are padded with a duplicate and
// empty series yield nil.
func (c *Chart) plot(title string, xs, ys []float64, yrange chart.Range) *chart.Chart {
	if len(xs) == 0 {
		return nil
	}
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}
	return &chart.Chart{
		Title:  title,
		Width:  c.width,
		Height: c.height,
		XAxis:  chart.XAxis{Name: "Sample Index"},
		YAxis:  chart.YAxis{Range: yrange},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}
}

func (c *Chart) write(name string, ch *chart.Chart) error {
	if ch == nil {
		return nil
	}

	file, err := os.Create(filepath.Join(c.dir, name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer file.Close()

	if err := ch.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
