package media

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pion/rtp"
)

func TestSample(t *testing.T) {
	b, err := Sample(0x12345678, 30)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	want := []byte{
		0x80, 0x7f, 0x12, 0x34, 0xde, 0xca, 0xfb, 0xad, 0x12, 0x34, 0x56, 0x78,
	}
	want = append(want, bytes.Repeat([]byte{0xab}, 18)...)
	if diff := cmp.Diff(want, b); diff != "" {
		t.Fatalf("sample packet mismatch (-want +got):\n%s", diff)
	}

	if _, err := Sample(1, 11); !errors.Is(err, ErrPacketSize) {
		t.Fatalf("expected ErrPacketSize, got %v", err)
	}
	if b, _ := Sample(1, HeaderSize); len(b) != HeaderSize {
		t.Fatalf("header-only sample is %d bytes", len(b))
	}
}

func TestBuildParse(t *testing.T) {
	h := rtp.Header{
		Marker:         true,
		PayloadType:    96,
		SequenceNumber: 7,
		Timestamp:      9000,
		SSRC:           0xcafe,
		CSRC:           []uint32{1, 2},
	}
	b, err := Build(h, []byte("payload"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := Parse(b)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Version != 2 || p.SSRC != 0xcafe || !p.Marker || len(p.CSRC) != 2 || string(p.Payload) != "payload" {
		t.Fatalf("unexpected packet %+v", p)
	}
	if _, err := Parse([]byte{0x80, 0x00}); err == nil {
		t.Fatalf("expected error for truncated packet")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		first byte
		want  Class
	}{
		{0, ClassSTUN}, {1, ClassSTUN}, {2, ClassUnknown},
		{19, ClassUnknown}, {20, ClassDTLS}, {22, ClassDTLS}, {63, ClassDTLS},
		{64, ClassUnknown}, {127, ClassUnknown}, {128, ClassRTP}, {191, ClassRTP}, {192, ClassUnknown},
	}
	for _, tt := range tests {
		if got := Classify([]byte{tt.first, 0}); got != tt.want {
			t.Fatalf("Classify(%d) = %s, want %s", tt.first, got, tt.want)
		}
	}
	if Classify(nil) != ClassUnknown {
		t.Fatalf("empty datagram must be unknown")
	}
}
