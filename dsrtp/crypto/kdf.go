package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// HashSize is the output size of the key schedule hash (SHA-256).
	HashSize = sha256.Size

	// MaxExpandLength is the largest output HKDF-Expand can produce with SHA-256.
	MaxExpandLength = 255 * HashSize

	labelPrefix = "dsrtp "
)

var (
	ErrExpandLength = errors.New("crypto: invalid HKDF output length")
	ErrLabelTooLong = errors.New("crypto: label or context too long")
)

// Extract runs HKDF-Extract and returns a pseudorandom key of HashSize bytes.
func Extract(secret, salt []byte) []byte {
	return hkdf.Extract(sha256.New, secret, salt)
}

// ExpandLabel runs HKDF-Expand with a TLS 1.3 style HkdfLabel:
//
//	uint16 length
//	opaque label<7..255> = "dsrtp " + label
//	opaque context<0..255>
func ExpandLabel(secret []byte, label string, context []byte, length int) ([]byte, error) {
	if length <= 0 || length > MaxExpandLength {
		return nil, ErrExpandLength
	}
	full := labelPrefix + label
	if len(full) > 255 || len(context) > 255 {
		return nil, ErrLabelTooLong
	}
	info := make([]byte, 0, 4+len(full)+len(context))
	info = append(info, byte(length>>8), byte(length))
	info = append(info, byte(len(full)))
	info = append(info, full...)
	info = append(info, byte(len(context)))
	info = append(info, context...)

	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, secret, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

// FinishedMAC computes HMAC-SHA256(key, transcriptHash).
func FinishedMAC(key, transcriptHash []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(transcriptHash)
	return m.Sum(nil)
}

// VerifyFinished reports whether mac is the Finished MAC of transcriptHash
// under key. The comparison is constant time.
func VerifyFinished(key, transcriptHash, mac []byte) bool {
	return hmac.Equal(FinishedMAC(key, transcriptHash), mac)
}
