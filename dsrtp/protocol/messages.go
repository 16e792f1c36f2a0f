package protocol

import (
	"golang.org/x/crypto/cryptobyte"
)

const (
	RandomSize = 32

	// MessageHeaderSize is the handshake message header:
	//
	//	1 byte: handshake type
	//	2 bytes: message sequence
	//	3 bytes: body length
	MessageHeaderSize = 6

	maxMessageBody = MaxRecordPayload - MessageHeaderSize - 64
)

// Message is one handshake message. Each message travels in its own record;
// Marshal output is also what enters the transcript hash.
type Message struct {
	Type HandshakeType
	Seq  uint16
	Body []byte
}

func (m Message) Marshal() ([]byte, error) {
	if len(m.Body) > maxMessageBody {
		return nil, ErrMessageTooLarge
	}
	b := cryptobyte.NewBuilder(make([]byte, 0, MessageHeaderSize+len(m.Body)))
	b.AddUint8(uint8(m.Type))
	b.AddUint16(m.Seq)
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(m.Body)
	})
	return b.Bytes()
}

// ParseMessage decodes a record fragment holding exactly one handshake message.
func ParseMessage(fragment []byte) (Message, error) {
	s := cryptobyte.String(fragment)
	var (
		t    uint8
		seq  uint16
		body cryptobyte.String
	)
	if !s.ReadUint8(&t) || !s.ReadUint16(&seq) || !s.ReadUint24LengthPrefixed(&body) || !s.Empty() {
		return Message{}, ErrMalformedMessage
	}
	return Message{Type: HandshakeType(t), Seq: seq, Body: append([]byte(nil), body...)}, nil
}

// ClientHello opens the handshake. Profiles lists the client's supported
// protection profiles in preference order.
type ClientHello struct {
	Version  uint16
	Random   [RandomSize]byte
	KeyShare []byte
	Profiles []uint16
}

func (h ClientHello) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16(h.Version)
	b.AddBytes(h.Random[:])
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(h.KeyShare)
	})
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, p := range h.Profiles {
			b.AddUint16(p)
		}
	})
	return b.Bytes()
}

func ParseClientHello(body []byte) (ClientHello, error) {
	var h ClientHello
	s := cryptobyte.String(body)
	var share, profiles cryptobyte.String
	if !s.ReadUint16(&h.Version) || !s.CopyBytes(h.Random[:]) ||
		!s.ReadUint8LengthPrefixed(&share) || !s.ReadUint16LengthPrefixed(&profiles) || !s.Empty() {
		return ClientHello{}, ErrMalformedMessage
	}
	h.KeyShare = append([]byte(nil), share...)
	for !profiles.Empty() {
		var p uint16
		if !profiles.ReadUint16(&p) {
			return ClientHello{}, ErrMalformedMessage
		}
		h.Profiles = append(h.Profiles, p)
	}
	return h, nil
}

// ServerHello answers a ClientHello with the server key share and the
// selected protection profile.
type ServerHello struct {
	Version  uint16
	Random   [RandomSize]byte
	KeyShare []byte
	Profile  uint16
}

func (h ServerHello) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16(h.Version)
	b.AddBytes(h.Random[:])
	b.AddUint8LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(h.KeyShare)
	})
	b.AddUint16(h.Profile)
	return b.Bytes()
}

func ParseServerHello(body []byte) (ServerHello, error) {
	var h ServerHello
	s := cryptobyte.String(body)
	var share cryptobyte.String
	if !s.ReadUint16(&h.Version) || !s.CopyBytes(h.Random[:]) ||
		!s.ReadUint8LengthPrefixed(&share) || !s.ReadUint16(&h.Profile) || !s.Empty() {
		return ServerHello{}, ErrMalformedMessage
	}
	h.KeyShare = append([]byte(nil), share...)
	return h, nil
}

// Certificate carries the sender's DER certificate.
type Certificate struct {
	DER []byte
}

func (c Certificate) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.DER)
	})
	return b.Bytes()
}

func ParseCertificate(body []byte) (Certificate, error) {
	s := cryptobyte.String(body)
	var der cryptobyte.String
	if !s.ReadUint24LengthPrefixed(&der) || !s.Empty() || len(der) == 0 {
		return Certificate{}, ErrMalformedMessage
	}
	return Certificate{DER: append([]byte(nil), der...)}, nil
}

// CertificateVerify proves possession of the certificate key over the transcript.
type CertificateVerify struct {
	Signature []byte
}

func (c CertificateVerify) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.Signature)
	})
	return b.Bytes()
}

func ParseCertificateVerify(body []byte) (CertificateVerify, error) {
	s := cryptobyte.String(body)
	var sig cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&sig) || !s.Empty() {
		return CertificateVerify{}, ErrMalformedMessage
	}
	return CertificateVerify{Signature: append([]byte(nil), sig...)}, nil
}
