package source

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"csi-monitor/internal/recording"
)

// ReplaySource feeds recorded sample batches back into the store,
// pausing a fixed interval between records to simulate real-time
// arrival. Files are consumed in the configured order; with Loop set the
// sequence restarts from the first file.
type ReplaySource struct {
	folder   string
	files    []string
	interval time.Duration
	loop     bool
	sink     Ingester

	stop     chan struct{}
	stopOnce sync.Once
}

// NewReplay prepares a replay of the named files under folder.
func NewReplay(folder string, files []string, interval time.Duration, loop bool, sink Ingester) *ReplaySource {
	return &ReplaySource{
		folder:   folder,
		files:    files,
		interval: interval,
		loop:     loop,
		sink:     sink,
		stop:     make(chan struct{}),
	}
}

func (r *ReplaySource) Name() string {
	return "replay " + r.folder
}

// SeedChannels loads the first file and marks its channel ids as
// observed, so the render layout does not have to wait for the first
// replayed sample. Call before Run.
func (r *ReplaySource) SeedChannels() error {
	if len(r.files) == 0 {
		return fmt.Errorf("no replay files configured")
	}

	seeder, ok := r.sink.(Seeder)
	if !ok {
		return nil
	}

	records, err := recording.ReadFile(filepath.Join(r.folder, r.files[0]))
	if err != nil {
		return fmt.Errorf("failed to seed channels from %s: %w", r.files[0], err)
	}
	seeder.Seed(recording.Channels(records))
	return nil
}

// Run replays every file once, or forever when looping. A file that
// cannot be read is logged and skipped. Returning after the last record
// with loop disabled is the normal terminal condition, not an error.
func (r *ReplaySource) Run() error {
	if len(r.files) == 0 {
		return fmt.Errorf("no replay files configured")
	}

	for {
		for _, name := range r.files {
			records, err := recording.ReadFile(filepath.Join(r.folder, name))
			if err != nil {
				log.Printf("[replay] skipping %s: %v", name, err)
				continue
			}
			log.Printf("[replay] playing %s, %d records", name, len(records))

			for _, rec := range records {
				r.sink.Ingest(rec.Sample())

				select {
				case <-r.stop:
					return nil
				case <-time.After(r.interval):
				}
			}
		}

		if !r.loop {
			log.Printf("[replay] finished all files")
			return nil
		}
	}
}

// Stop terminates the replay after the in-flight record.
func (r *ReplaySource) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
