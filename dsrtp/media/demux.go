package media

// Class is the protocol family of a datagram sharing a 5-tuple (RFC 5764 §5.1.2).
type Class int

const (
	ClassUnknown Class = iota
	ClassSTUN
	ClassDTLS
	ClassRTP
)

func (c Class) String() string {
	switch c {
	case ClassSTUN:
		return "stun"
	case ClassDTLS:
		return "dtls"
	case ClassRTP:
		return "rtp"
	default:
		return "unknown"
	}
}

// Classify inspects the first byte of a datagram. Handshake records fall in
// the DTLS range; SRTP and SRTCP both classify as ClassRTP.
func Classify(b []byte) Class {
	if len(b) == 0 {
		return ClassUnknown
	}
	switch first := b[0]; {
	case first <= 1:
		return ClassSTUN
	case first >= 20 && first <= 63:
		return ClassDTLS
	case first >= 128 && first <= 191:
		return ClassRTP
	default:
		return ClassUnknown
	}
}
