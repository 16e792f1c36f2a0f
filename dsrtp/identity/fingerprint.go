package identity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// Fingerprint identifies a certificate: Fingerprint = SHA-256(DER).
// Its string form is the colon separated upper-case hex used in SDP
// "a=fingerprint:sha-256" attributes.
type Fingerprint [32]byte

var ErrInvalidFingerprint = errors.New("identity: invalid fingerprint")

func FingerprintOf(der []byte) Fingerprint {
	return Fingerprint(sha256.Sum256(der))
}

func ParseFingerprint(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil {
		return Fingerprint{}, ErrInvalidFingerprint
	}
	if len(b) != len(Fingerprint{}) {
		return Fingerprint{}, ErrInvalidFingerprint
	}
	var fp Fingerprint
	copy(fp[:], b)
	return fp, nil
}

// Equal compares two fingerprints in constant time.
func (fp Fingerprint) Equal(other Fingerprint) bool {
	return subtle.ConstantTimeCompare(fp[:], other[:]) == 1
}

func (fp Fingerprint) IsZero() bool {
	return fp == Fingerprint{}
}

func (fp Fingerprint) String() string {
	var sb strings.Builder
	sb.Grow(len(fp)*3 - 1)
	for i, b := range fp {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
	}
	return sb.String()
}
