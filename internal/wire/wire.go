// Package wire implements the CSI datagram layout shared by the live UDP
// feed, the recording container and the test sender.
//
// A packet is a flat sequence of little-endian float32 values:
//
//	[channel_id, peer_id, timing_offset_s, re, im, re, im, ...]
//
// The trailing floats are interleaved real/imaginary pairs forming one
// complex measurement vector.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedPacket reports a payload that cannot hold a complete sample.
// Callers drop the packet and keep receiving.
var ErrMalformedPacket = errors.New("malformed CSI packet")

const (
	// headerFloats is the number of leading values before the interleaved
	// measurement: channel id, peer id, timing offset.
	headerFloats = 3

	floatSize = 4
)

// Sample is one decoded CSI measurement. Immutable once constructed.
type Sample struct {
	ChannelID    int         // receiving path (RX port) that produced the vector
	PeerID       int         // transmitting peer (TX port)
	TimingOffset float64     // timing correction in seconds
	Measurement  []complex64 // channel response across subcarriers
}

// TimingOffsetMicros returns the timing offset converted to microseconds,
// the unit used for storage and display.
func (s Sample) TimingOffsetMicros() float64 {
	return s.TimingOffset * 1e6
}

// Decode parses a raw packet into a Sample. It is a pure function and safe
// to call concurrently.
func Decode(buf []byte) (Sample, error) {
	if len(buf)%floatSize != 0 {
		return Sample{}, fmt.Errorf("%w: %d bytes is not a whole float32 sequence", ErrMalformedPacket, len(buf))
	}

	n := len(buf) / floatSize
	if n < headerFloats {
		return Sample{}, fmt.Errorf("%w: got %d floats, need at least %d", ErrMalformedPacket, n, headerFloats)
	}
	if (n-headerFloats)%2 != 0 {
		return Sample{}, fmt.Errorf("%w: %d trailing floats do not form re/im pairs", ErrMalformedPacket, n-headerFloats)
	}

	floats := make([]float32, n)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*floatSize:]))
	}

	sample := Sample{
		ChannelID:    int(floats[0]),
		PeerID:       int(floats[1]),
		TimingOffset: float64(floats[2]),
		Measurement:  make([]complex64, (n-headerFloats)/2),
	}
	for i := range sample.Measurement {
		sample.Measurement[i] = complex(floats[headerFloats+2*i], floats[headerFloats+2*i+1])
	}

	return sample, nil
}

// Encode serializes a Sample into the packet layout understood by Decode.
func Encode(s Sample) []byte {
	buf := make([]byte, (headerFloats+2*len(s.Measurement))*floatSize)

	put := func(i int, v float32) {
		binary.LittleEndian.PutUint32(buf[i*floatSize:], math.Float32bits(v))
	}
	put(0, float32(s.ChannelID))
	put(1, float32(s.PeerID))
	put(2, float32(s.TimingOffset))
	for i, m := range s.Measurement {
		put(headerFloats+2*i, real(m))
		put(headerFloats+2*i+1, imag(m))
	}

	return buf
}
