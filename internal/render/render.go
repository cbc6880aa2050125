// Package render drives the consumer side of the pipeline: on a fixed
// cadence it snapshots the store, derives presentation-ready series
// (magnitude, unwrapped phase, timing history) and hands them to a
// Presenter.
package render

import (
	"log"
	"math"
	"sync"
	"time"

	"csi-monitor/internal/store"
)

// ChannelSeries holds the derived series for one channel's latest
// measurement. X is the subcarrier index axis 0..len-1.
type ChannelSeries struct {
	ID        int
	X         []float64
	Magnitude []float64
	Phase     []float64 // unwrapped, radians
}

// TimingSeries holds the full timing-offset history in µs with its
// sample-index axis.
type TimingSeries struct {
	X      []float64
	Micros []float64
}

// Frame is everything a presenter needs for one redraw.
type Frame struct {
	Channels []ChannelSeries
	Timing   TimingSeries
}

// Presenter is the presentation-layer collaborator. Layout is called
// exactly once, before the first Update, with the channel ids known at
// that moment. All calls happen on the driver goroutine.
type Presenter interface {
	Layout(channels []int) error
	Update(frame Frame) error
	Close() error
}

// Driver polls the store on a timer and feeds the presenter. It never
// holds the store lock across derivation: Snapshot copies then releases.
type Driver struct {
	store     *store.Store
	presenter Presenter
	interval  time.Duration

	layout []int // fixed at first non-empty channel set, nil until then

	stop     chan struct{}
	stopOnce sync.Once
}

// NewDriver prepares a render driver ticking every interval.
func NewDriver(st *store.Store, p Presenter, interval time.Duration) *Driver {
	return &Driver{
		store:     st,
		presenter: p,
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// Run ticks until Stop is called. Presenter failures are logged and the
// tick skipped; the loop keeps running so a transient output problem
// never takes down the pipeline.
func (d *Driver) Run() error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	defer d.presenter.Close()

	for {
		select {
		case <-d.stop:
			return nil
		case <-ticker.C:
			if err := d.tick(); err != nil {
				log.Printf("[render] tick skipped: %v", err)
			}
		}
	}
}

// Stop terminates the render loop after the in-flight tick.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

func (d *Driver) tick() error {
	if d.layout == nil {
		ids := d.store.Channels()
		if len(ids) == 0 {
			// Nothing observed yet; layout stays undecided.
			return nil
		}
		if err := d.presenter.Layout(ids); err != nil {
			return err
		}
		d.layout = ids
	}

	latest, history := d.store.Snapshot()
	if len(latest) == 0 {
		// Seeded channels but no sample yet: no output this tick.
		return nil
	}

	return d.presenter.Update(BuildFrame(d.layout, latest, history))
}

// BuildFrame derives the presentation series from one snapshot. Channels
// outside the fixed layout are silently ignored; a layout channel with no
// sample yet contributes no series.
func BuildFrame(layout []int, latest map[int][]complex64, history []float64) Frame {
	frame := Frame{
		Timing: TimingSeries{X: indexAxis(len(history)), Micros: history},
	}
	for _, id := range layout {
		meas, ok := latest[id]
		if !ok {
			continue
		}
		frame.Channels = append(frame.Channels, ChannelSeries{
			ID:        id,
			X:         indexAxis(len(meas)),
			Magnitude: magnitude(meas),
			Phase:     unwrapPhase(meas),
		})
	}
	return frame
}

func indexAxis(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// magnitude is the elementwise absolute value of the measurement vector.
func magnitude(meas []complex64) []float64 {
	out := make([]float64, len(meas))
	for i, m := range meas {
		out[i] = math.Hypot(float64(real(m)), float64(imag(m)))
	}
	return out
}

// unwrapPhase computes the phase angle sequence with ±2π jump
// discontinuities removed, processed in vector order: each step is
// brought within (-π, π] of its predecessor by adding a cumulative
// multiple of 2π.
func unwrapPhase(meas []complex64) []float64 {
	out := make([]float64, len(meas))
	if len(meas) == 0 {
		return out
	}

	prev := math.Atan2(float64(imag(meas[0])), float64(real(meas[0])))
	out[0] = prev
	var correction float64
	for i := 1; i < len(meas); i++ {
		phase := math.Atan2(float64(imag(meas[i])), float64(real(meas[i])))
		delta := phase - prev
		for delta > math.Pi {
			delta -= 2 * math.Pi
			correction -= 2 * math.Pi
		}
		for delta <= -math.Pi {
			delta += 2 * math.Pi
			correction += 2 * math.Pi
		}
		out[i] = phase + correction
		prev = phase
	}
	return out
}
