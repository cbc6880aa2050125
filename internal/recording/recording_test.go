package recording

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"csi-monitor/internal/wire"
)

func testRecords() []Record {
	return []Record{
		{ChannelID: 1, PeerID: 0, TimingMicros: 10, Measurement: []complex64{complex(1, 0), complex(0, 1)}},
		{ChannelID: 2, PeerID: 0, TimingMicros: 12, Measurement: []complex64{complex(0.5, 0.5)}},
		{ChannelID: 1, PeerID: 1, TimingMicros: 11, Measurement: []complex64{complex(0, -1)}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csi")
	want := testRecords()

	if err := WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("record count = %d, want %d", len(got), len(want))
	}

	for i, rec := range got {
		if rec.ChannelID != want[i].ChannelID || rec.PeerID != want[i].PeerID {
			t.Errorf("record %d ids = (%d, %d), want (%d, %d)",
				i, rec.ChannelID, rec.PeerID, want[i].ChannelID, want[i].PeerID)
		}
		if math.Abs(rec.TimingMicros-want[i].TimingMicros) > 1e-9 {
			t.Errorf("record %d timing = %v, want %v", i, rec.TimingMicros, want[i].TimingMicros)
		}
		if len(rec.Measurement) != len(want[i].Measurement) {
			t.Fatalf("record %d measurement length = %d, want %d",
				i, len(rec.Measurement), len(want[i].Measurement))
		}
		for j, m := range rec.Measurement {
			if m != want[i].Measurement[j] {
				t.Errorf("record %d measurement[%d] = %v, want %v", i, j, m, want[i].Measurement[j])
			}
		}
	}
}

func TestSampleConversionRoundTrip(t *testing.T) {
	sample := wire.Sample{ChannelID: 3, PeerID: 1, TimingOffset: 25e-6, Measurement: []complex64{complex(1, 2)}}
	back := FromSample(sample).Sample()

	if back.ChannelID != sample.ChannelID || back.PeerID != sample.PeerID {
		t.Errorf("ids = (%d, %d), want (%d, %d)", back.ChannelID, back.PeerID, sample.ChannelID, sample.PeerID)
	}
	if math.Abs(back.TimingOffsetMicros()-sample.TimingOffsetMicros()) > 1e-9 {
		t.Errorf("timing µs = %v, want %v", back.TimingOffsetMicros(), sample.TimingOffsetMicros())
	}
}

func TestReadFileRejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.csi")
	if err := os.WriteFile(path, []byte("NOTCSI\x01\x00\x00\x00\x00\x00"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Fatal("ReadFile accepted a file with the wrong magic")
	}
}

func TestChannels(t *testing.T) {
	ids := Channels(testRecords())
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("Channels = %v, want [1 2]", ids)
	}
}

func TestRecorderRotation(t *testing.T) {
	dir := t.TempDir()

	rec, err := NewRecorder(dir, "test", 2)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	for k := 0; k < 5; k++ {
		sample := wire.Sample{ChannelID: k % 2, TimingOffset: float64(k) * 1e-6, Measurement: []complex64{complex(float32(k), 0)}}
		if err := rec.Record(FromSample(sample)); err != nil {
			t.Fatalf("Record %d failed: %v", k, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".csi") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(names), names)
	}

	total := 0
	for i, name := range names {
		records, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", name, err)
		}
		if len(records) > 2 {
			t.Errorf("file %s holds %d records, want at most 2", name, len(records))
		}
		for _, r := range records {
			if int(real(r.Measurement[0])) != total {
				t.Errorf("file %d out of order: got sample %v, want %d", i, real(r.Measurement[0]), total)
			}
			total++
		}
	}
	if total != 5 {
		t.Errorf("total records = %d, want 5", total)
	}
}
