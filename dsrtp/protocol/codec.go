package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// RecordHeaderSize is the size of the record header:
	//
	//	1 byte: content type
	//	2 bytes: epoch (big endian)
	//	6 bytes: sequence number (big endian)
	//	2 bytes: fragment length (big endian)
	RecordHeaderSize = 11

	// MaxRecordPayload limits a single record fragment.
	MaxRecordPayload = 1 << 14

	// MaxSequence is the largest 48-bit record sequence number.
	MaxSequence = 1<<48 - 1
)

var (
	ErrRecordTooLarge    = errors.New("protocol record fragment too large")
	ErrInvalidType       = errors.New("protocol invalid content type")
	ErrIncompleteRecord  = errors.New("protocol incomplete record")
	ErrSequenceOverflow  = errors.New("protocol record sequence overflow")
	ErrMalformedMessage  = errors.New("protocol malformed handshake message")
	ErrMessageTooLarge   = errors.New("protocol handshake message too large")
	ErrUnexpectedMessage = errors.New("protocol unexpected handshake message")
)

// Record is the datagram-level container for handshake messages and alerts.
// Epoch 0 records travel in the clear; epoch 1 fragments are AEAD protected
// with the record header as additional data.
type Record struct {
	Type     ContentType
	Epoch    uint16
	Sequence uint64
	Fragment []byte
}

// Header returns the encoded record header.
func (r Record) Header() ([]byte, error) {
	if r.Type != ContentTypeAlert && r.Type != ContentTypeHandshake {
		return nil, ErrInvalidType
	}
	if r.Sequence > MaxSequence {
		return nil, ErrSequenceOverflow
	}
	if len(r.Fragment) > MaxRecordPayload {
		return nil, ErrRecordTooLarge
	}
	h := make([]byte, RecordHeaderSize)
	// The sequence number is written first as a uint64 and the epoch then
	// overwrites its two most significant (always zero) bytes.
	binary.BigEndian.PutUint64(h[1:9], r.Sequence)
	h[0] = byte(r.Type)
	binary.BigEndian.PutUint16(h[1:3], r.Epoch)
	binary.BigEndian.PutUint16(h[9:11], uint16(len(r.Fragment)))
	return h, nil
}

func WriteRecord(w io.Writer, r Record) error {
	h, err := r.Header()
	if err != nil {
		return err
	}
	if _, err := w.Write(h); err != nil {
		return err
	}
	if len(r.Fragment) > 0 {
		if _, err := w.Write(r.Fragment); err != nil {
			return err
		}
	}
	return nil
}

// ParseRecord decodes one record from the front of b and returns the number of
// bytes it occupied. ErrIncompleteRecord means b holds only a prefix of a
// record and the caller should wait for more bytes.
func ParseRecord(b []byte) (Record, int, error) {
	if len(b) < RecordHeaderSize {
		return Record{}, 0, ErrIncompleteRecord
	}
	ct := ContentType(b[0])
	if ct != ContentTypeAlert && ct != ContentTypeHandshake {
		return Record{}, 0, fmt.Errorf("%w: %d", ErrInvalidType, b[0])
	}
	epoch := binary.BigEndian.Uint16(b[1:3])
	seq := binary.BigEndian.Uint64(b[1:9]) & MaxSequence
	length := int(binary.BigEndian.Uint16(b[9:11]))
	if length > MaxRecordPayload {
		return Record{}, 0, fmt.Errorf("%w: %d", ErrRecordTooLarge, length)
	}
	if len(b) < RecordHeaderSize+length {
		return Record{}, 0, ErrIncompleteRecord
	}
	fragment := make([]byte, length)
	copy(fragment, b[RecordHeaderSize:RecordHeaderSize+length])
	return Record{Type: ct, Epoch: epoch, Sequence: seq, Fragment: fragment}, RecordHeaderSize + length, nil
}

// Alert is the body of an alert record.
type Alert struct {
	Level       AlertLevel
	Description AlertDescription
}

func (a Alert) Marshal() []byte {
	return []byte{byte(a.Level), byte(a.Description)}
}

func ParseAlert(b []byte) (Alert, error) {
	if len(b) != 2 {
		return Alert{}, ErrMalformedMessage
	}
	return Alert{Level: AlertLevel(b[0]), Description: AlertDescription(b[1])}, nil
}

func (a Alert) Error() string {
	return "protocol alert: " + a.Description.String()
}
