package srtp

import (
	"bytes"
	"testing"

	"github.com/pion/rtp"
)

var (
	testKey  = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x20, 0x21, 0x22, 0x23}
	testSalt = []byte{0x24, 0x25, 0x30, 0x31, 0x32, 0x33, 0x34, 0x35, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
)

const testSSRC = 0x12345678

func testPacket(t testing.TB, ssrc uint32, seq uint16) []byte {
	t.Helper()
	p := rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    0x7f,
			SequenceNumber: seq,
			Timestamp:      0xdecafbad,
			SSRC:           ssrc,
		},
		Payload: bytes.Repeat([]byte{0xab}, 18),
	}
	b, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return b
}

func testKeys() SessionKeys {
	return SessionKeys{Key: testKey, Salt: testSalt}
}

func newTestPair(t testing.TB, profile Profile, send, recv SessionOptions) (*Session, *Session) {
	t.Helper()
	tx, err := NewSession(Send, profile, testKeys(), send)
	if err != nil {
		t.Fatalf("NewSession send: %v", err)
	}
	rx, err := NewSession(Receive, profile, testKeys(), recv)
	if err != nil {
		t.Fatalf("NewSession receive: %v", err)
	}
	return tx, rx
}
