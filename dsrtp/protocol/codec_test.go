package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Record{Type: ContentTypeHandshake, Epoch: 1, Sequence: 0x0000_1234_5678_9abc, Fragment: []byte("flight")}
	if err := WriteRecord(&buf, in); err != nil {
		t.Fatalf("WriteRecord: %v", err)
	}
	if buf.Len() != RecordHeaderSize+len(in.Fragment) {
		t.Fatalf("unexpected encoded length %d", buf.Len())
	}
	out, n, err := ParseRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if n != buf.Len() {
		t.Fatalf("consumed %d of %d bytes", n, buf.Len())
	}
	if out.Type != in.Type || out.Epoch != in.Epoch || out.Sequence != in.Sequence {
		t.Fatalf("header mismatch: %+v", out)
	}
	if !bytes.Equal(out.Fragment, in.Fragment) {
		t.Fatalf("fragment mismatch")
	}
}

func TestParseRecordIncomplete(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteRecord(&buf, Record{Type: ContentTypeAlert, Fragment: Alert{Level: AlertLevelFatal, Description: AlertDecodeError}.Marshal()})
	encoded := buf.Bytes()

	for i := 0; i < len(encoded); i++ {
		if _, _, err := ParseRecord(encoded[:i]); err != ErrIncompleteRecord {
			t.Fatalf("prefix %d: expected ErrIncompleteRecord, got %v", i, err)
		}
	}
	rec, _, err := ParseRecord(encoded)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	alert, err := ParseAlert(rec.Fragment)
	if err != nil {
		t.Fatalf("ParseAlert: %v", err)
	}
	if alert.Description != AlertDecodeError {
		t.Fatalf("unexpected alert %v", alert.Description)
	}
}

func TestRecordValidation(t *testing.T) {
	if _, err := (Record{Type: 99}).Header(); err != ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, err := (Record{Type: ContentTypeHandshake, Sequence: MaxSequence + 1}).Header(); err != ErrSequenceOverflow {
		t.Fatalf("expected ErrSequenceOverflow, got %v", err)
	}
	if _, err := (Record{Type: ContentTypeHandshake, Fragment: make([]byte, MaxRecordPayload+1)}).Header(); err != ErrRecordTooLarge {
		t.Fatalf("expected ErrRecordTooLarge, got %v", err)
	}
	if _, _, err := ParseRecord(make([]byte, RecordHeaderSize)); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestContentTypesDemuxAsDTLS(t *testing.T) {
	for _, ct := range []ContentType{ContentTypeAlert, ContentTypeHandshake} {
		if ct < 20 || ct > 63 {
			t.Fatalf("content type %v outside the RFC 5764 DTLS range", ct)
		}
	}
}
