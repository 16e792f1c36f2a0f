// Package media builds, parses and classifies the RTP packets carried over a
// dsrtp channel.
package media

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pion/rtp"
)

const (
	// HeaderSize is the fixed RTP header without CSRCs or extensions.
	HeaderSize = 12

	SamplePayloadType = 0x7f
	SampleSequence    = 0x1234
	SampleTimestamp   = 0xdecafbad
	SampleFill        = 0xab
)

var ErrPacketSize = errors.New("media: packet size smaller than the RTP header")

// Sample returns a size byte RTP packet for ssrc with a fixed header and a
// payload filled with SampleFill, for tests and demos.
func Sample(ssrc uint32, size int) ([]byte, error) {
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %d", ErrPacketSize, size)
	}
	return Build(rtp.Header{
		Version:        2,
		PayloadType:    SamplePayloadType,
		SequenceNumber: SampleSequence,
		Timestamp:      SampleTimestamp,
		SSRC:           ssrc,
	}, bytes.Repeat([]byte{SampleFill}, size-HeaderSize))
}

// Build serializes a header and payload. A zero Version is treated as 2.
func Build(h rtp.Header, payload []byte) ([]byte, error) {
	if h.Version == 0 {
		h.Version = 2
	}
	p := rtp.Packet{Header: h, Payload: payload}
	return p.Marshal()
}

// Parse decodes an RTP packet. The returned payload aliases b.
func Parse(b []byte) (rtp.Packet, error) {
	var p rtp.Packet
	if err := p.Unmarshal(b); err != nil {
		return rtp.Packet{}, err
	}
	return p, nil
}
