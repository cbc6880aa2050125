package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"csi-monitor/internal/recording"
	"csi-monitor/internal/store"
	"csi-monitor/internal/wire"
)

type countingSink struct {
	mu      sync.Mutex
	samples []wire.Sample
}

func (c *countingSink) Ingest(sample wire.Sample) {
	c.mu.Lock()
	c.samples = append(c.samples, sample)
	c.mu.Unlock()
}

func (c *countingSink) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

func writeReplayFiles(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()

	first := []recording.Record{
		{ChannelID: 1, TimingMicros: 10, Measurement: []complex64{complex(1, 0)}},
		{ChannelID: 2, TimingMicros: 12, Measurement: []complex64{complex(0, 1)}},
		{ChannelID: 1, TimingMicros: 11, Measurement: []complex64{complex(0, -1)}},
	}
	second := []recording.Record{
		{ChannelID: 2, TimingMicros: 13, Measurement: []complex64{complex(0.5, 0.5)}},
		{ChannelID: 1, TimingMicros: 14, Measurement: []complex64{complex(-1, 0)}},
	}

	if err := recording.WriteFile(filepath.Join(dir, "a.csi"), first); err != nil {
		t.Fatalf("failed to write first file: %v", err)
	}
	if err := recording.WriteFile(filepath.Join(dir, "b.csi"), second); err != nil {
		t.Fatalf("failed to write second file: %v", err)
	}

	return dir, []string{"a.csi", "b.csi"}
}

func TestReplayCompletesWithoutLoop(t *testing.T) {
	dir, files := writeReplayFiles(t)
	sink := &countingSink{}

	src := NewReplay(dir, files, time.Millisecond, false, sink)

	done := make(chan error, 1)
	go func() { done <- src.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not terminate with loop disabled")
	}

	if got := sink.len(); got != 5 {
		t.Errorf("ingest count = %d, want 5", got)
	}
	if got := sink.samples[0].ChannelID; got != 1 {
		t.Errorf("first sample channel = %d, want 1", got)
	}
	if got := sink.samples[4].ChannelID; got != 1 {
		t.Errorf("last sample channel = %d, want 1", got)
	}
}

func TestReplayLoopRestartsAndStops(t *testing.T) {
	dir, files := writeReplayFiles(t)
	sink := &countingSink{}

	src := NewReplay(dir, files, 0, true, sink)

	done := make(chan error, 1)
	go func() { done <- src.Run() }()

	deadline := time.After(5 * time.Second)
	for sink.len() <= 5 {
		select {
		case <-deadline:
			t.Fatal("looping replay never passed the first pass")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	src.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Run failed after Stop: %v", err)
	}
}

func TestReplaySeedsChannelsBeforeRun(t *testing.T) {
	dir, files := writeReplayFiles(t)
	st := store.New()

	src := NewReplay(dir, files, time.Millisecond, false, st)
	if err := src.SeedChannels(); err != nil {
		t.Fatalf("SeedChannels failed: %v", err)
	}

	channels := st.Channels()
	if len(channels) != 2 || channels[0] != 1 || channels[1] != 2 {
		t.Errorf("Channels after seed = %v, want [1 2]", channels)
	}

	_, history := st.Snapshot()
	if len(history) != 0 {
		t.Errorf("seeding wrote %d history entries, want 0", len(history))
	}
}

func TestReplaySkipsUnreadableFile(t *testing.T) {
	dir, files := writeReplayFiles(t)
	if err := os.WriteFile(filepath.Join(dir, "corrupt.csi"), []byte("garbage"), 0644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}
	sink := &countingSink{}

	src := NewReplay(dir, append([]string{"corrupt.csi"}, files...), time.Millisecond, false, sink)
	if err := src.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got := sink.len(); got != 5 {
		t.Errorf("ingest count = %d, want 5 (corrupt file skipped)", got)
	}
}

func TestReplayWithoutFilesFails(t *testing.T) {
	src := NewReplay(t.TempDir(), nil, time.Millisecond, false, &countingSink{})
	if err := src.Run(); err == nil {
		t.Fatal("Run succeeded with no files configured")
	}
	if err := src.SeedChannels(); err == nil {
		t.Fatal("SeedChannels succeeded with no files configured")
	}
}
