// Package recording implements the on-disk container for recorded CSI
// sample streams, used by the live monitor to capture traffic and by the
// replay source to feed it back.
//
// File layout (all little-endian):
//
//	magic "CSIREC" | version uint16 | record count uint32 | records...
//
// Each record: channel id int32, peer id int32, timing offset µs float64,
// measurement length uint32, then interleaved float32 re/im pairs.
package recording

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"csi-monitor/internal/wire"
)

const fileMagic = "CSIREC"

// FormatVersion is written into every file header.
const FormatVersion uint16 = 1

// countOffset is where the record count lives: after the magic and the
// version field. The Writer patches it on Close.
const countOffset = int64(len(fileMagic) + 2)

// Record is one stored sample. Timing is kept in microseconds, already
// converted, matching what the store appends to its history.
type Record struct {
	ChannelID    int32
	PeerID       int32
	TimingMicros float64
	Measurement  []complex64
}

// FromSample captures a live sample for storage.
func FromSample(s wire.Sample) Record {
	return Record{
		ChannelID:    int32(s.ChannelID),
		PeerID:       int32(s.PeerID),
		TimingMicros: s.TimingOffsetMicros(),
		Measurement:  s.Measurement,
	}
}

// Sample converts a stored record back into the wire representation.
func (r Record) Sample() wire.Sample {
	return wire.Sample{
		ChannelID:    int(r.ChannelID),
		PeerID:       int(r.PeerID),
		TimingOffset: r.TimingMicros / 1e6,
		Measurement:  r.Measurement,
	}
}

// Writer appends records to a single recording file. The record count in
// the header is patched when the writer is closed.
type Writer struct {
	file  *os.File
	count uint32
}

// Create opens a new recording file and writes its header.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	if _, err := file.WriteString(fileMagic); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, FormatVersion); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(0)); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	return &Writer{file: file}, nil
}

// Append writes one record to the file.
func (w *Writer) Append(rec Record) error {
	if err := binary.Write(w.file, binary.LittleEndian, rec.ChannelID); err != nil {
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, rec.PeerID); err != nil {
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, rec.TimingMicros); err != nil {
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(len(rec.Measurement))); err != nil {
		return err
	}
	for _, m := range rec.Measurement {
		if err := binary.Write(w.file, binary.LittleEndian, real(m)); err != nil {
			return err
		}
		if err := binary.Write(w.file, binary.LittleEndian, imag(m)); err != nil {
			return err
		}
	}

	w.count++
	return nil
}

// Count returns the number of records appended so far.
func (w *Writer) Count() int {
	return int(w.count)
}

// Close patches the record count into the header and closes the file.
func (w *Writer) Close() error {
	if _, err := w.file.Seek(countOffset, io.SeekStart); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to patch record count: %w", err)
	}
	if err := binary.Write(w.file, binary.LittleEndian, w.count); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to patch record count: %w", err)
	}
	return w.file.Close()
}

// WriteFile writes a complete recording in one call.
func WriteFile(path string, records []Record) error {
	w, err := Create(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Append(rec); err != nil {
			w.file.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return w.Close()
}

// ReadFile loads all records from a recording file.
func ReadFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer file.Close()

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != fileMagic {
		return nil, fmt.Errorf("invalid recording format in %s", path)
	}

	var version uint16
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("unsupported recording version %d", version)
	}

	var count uint32
	if err := binary.Read(file, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	records := make([]Record, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec Record
		if err := binary.Read(file, binary.LittleEndian, &rec.ChannelID); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		if err := binary.Read(file, binary.LittleEndian, &rec.PeerID); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		if err := binary.Read(file, binary.LittleEndian, &rec.TimingMicros); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		var length uint32
		if err := binary.Read(file, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		rec.Measurement = make([]complex64, length)
		for j := uint32(0); j < length; j++ {
			var re, im float32
			if err := binary.Read(file, binary.LittleEndian, &re); err != nil {
				return nil, fmt.Errorf("failed to read record %d: %w", i, err)
			}
			if err := binary.Read(file, binary.LittleEndian, &im); err != nil {
				return nil, fmt.Errorf("failed to read record %d: %w", i, err)
			}
			rec.Measurement[j] = complex(re, im)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Channels returns the distinct channel ids present in records, in
// first-seen order.
func Channels(records []Record) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, rec := range records {
		id := int(rec.ChannelID)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
