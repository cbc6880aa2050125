// Package source provides the ingestion variants that feed decoded CSI
// samples into the shared store: a live UDP listener and a recorded-file
// replay driver. Exactly one source runs per process, in its own
// goroutine, separate from the render driver.
package source

import "csi-monitor/internal/wire"

// Ingester consumes decoded samples. *store.Store satisfies it.
type Ingester interface {
	Ingest(sample wire.Sample)
}

// Seeder pre-registers channel ids so the plot layout can be decided
// before the first sample for them arrives.
type Seeder interface {
	Seed(ids []int)
}

// Source produces samples and pushes them into its sink at its own pace.
type Source interface {
	// Run blocks until the source is exhausted or stopped. Normal
	// terminal conditions (end of stream, replay finished) return nil.
	Run() error

	// Stop asks the source to terminate; Run returns shortly after.
	// Safe to call more than once and from any goroutine.
	Stop()

	// Name identifies the source in log output.
	Name() string
}

// Tee fans each sample out to every sink in order.
func Tee(sinks ...Ingester) Ingester {
	return teeIngester(sinks)
}

type teeIngester []Ingester

func (t teeIngester) Ingest(sample wire.Sample) {
	for _, sink := range t {
		sink.Ingest(sample)
	}
}
