package wire

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	original := Sample{
		ChannelID:    3,
		PeerID:       1,
		TimingOffset: 12.5e-6,
		Measurement:  []complex64{complex(1, 0), complex(0, 1), complex(-0.5, 0.25)},
	}

	decoded, err := Decode(Encode(original))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if decoded.ChannelID != original.ChannelID {
		t.Errorf("ChannelID = %d, want %d", decoded.ChannelID, original.ChannelID)
	}
	if decoded.PeerID != original.PeerID {
		t.Errorf("PeerID = %d, want %d", decoded.PeerID, original.PeerID)
	}
	// Timing offset survives a float32 round trip, so compare against the
	// float32 representation rather than the exact float64 input.
	want := float64(float32(original.TimingOffset))
	if math.Abs(decoded.TimingOffset-want) > 1e-12 {
		t.Errorf("TimingOffset = %v, want %v", decoded.TimingOffset, want)
	}
	if len(decoded.Measurement) != len(original.Measurement) {
		t.Fatalf("Measurement length = %d, want %d", len(decoded.Measurement), len(original.Measurement))
	}
	for i, m := range decoded.Measurement {
		if m != original.Measurement[i] {
			t.Errorf("Measurement[%d] = %v, want %v", i, m, original.Measurement[i])
		}
	}
}

func TestDecodeEmptyMeasurement(t *testing.T) {
	decoded, err := Decode(Encode(Sample{ChannelID: 7, PeerID: 2, TimingOffset: 1e-6}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded.Measurement) != 0 {
		t.Errorf("Measurement length = %d, want 0", len(decoded.Measurement))
	}
	if decoded.ChannelID != 7 {
		t.Errorf("ChannelID = %d, want 7", decoded.ChannelID)
	}
}

func TestDecodeKnownBytes(t *testing.T) {
	// Hand-built packet: channel 2, peer 0, 10 µs offset, one subcarrier -1i.
	values := []float32{2, 0, 10e-6, 0, -1}
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}

	sample, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if sample.ChannelID != 2 || sample.PeerID != 0 {
		t.Errorf("ids = (%d, %d), want (2, 0)", sample.ChannelID, sample.PeerID)
	}
	if math.Abs(sample.TimingOffsetMicros()-10) > 1e-3 {
		t.Errorf("TimingOffsetMicros = %v, want ~10", sample.TimingOffsetMicros())
	}
	if len(sample.Measurement) != 1 || sample.Measurement[0] != complex(0, -1) {
		t.Errorf("Measurement = %v, want [(0-1i)]", sample.Measurement)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"one float", Encode(Sample{})[:4]},
		{"two floats", Encode(Sample{})[:8]},
		{"odd trailing floats", make([]byte, 4*4)},
		{"partial float", make([]byte, 7)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.buf); !errors.Is(err, ErrMalformedPacket) {
				t.Errorf("Decode(%d bytes) error = %v, want ErrMalformedPacket", len(tc.buf), err)
			}
		})
	}
}

func TestIDTruncationTowardZero(t *testing.T) {
	// Encoded ids travel as float32; decode must floor toward zero the way
	// the numeric source encoding does.
	values := []float32{3.9, 1.2, 0}
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}

	sample, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if sample.ChannelID != 3 || sample.PeerID != 1 {
		t.Errorf("ids = (%d, %d), want (3, 1)", sample.ChannelID, sample.PeerID)
	}
}
