package crypto

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// RecordKeySize and RecordIVSize are the per-direction traffic key and IV sizes.
	RecordKeySize = chacha20poly1305.KeySize
	RecordIVSize  = chacha20poly1305.NonceSize
)

var (
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrDecryptionFailed   = errors.New("crypto: decryption failed")
)

// RecordAEAD protects handshake records with ChaCha20-Poly1305.
// The 96-bit nonce is the static IV XORed with the 48-bit record sequence
// number, so the nonce is never carried on the wire and never repeats for a
// given key as long as sequence numbers do not.
type RecordAEAD struct {
	aead cipher.AEAD
	iv   [RecordIVSize]byte
}

// NewRecordAEAD creates a record protector from a 32-byte key and 12-byte IV.
func NewRecordAEAD(key, iv []byte) (*RecordAEAD, error) {
	if len(key) != RecordKeySize {
		return nil, errors.New("crypto: invalid key size for ChaCha20-Poly1305")
	}
	if len(iv) != RecordIVSize {
		return nil, errors.New("crypto: invalid record IV size")
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	a := &RecordAEAD{aead: aead}
	copy(a.iv[:], iv)
	return a, nil
}

func (a *RecordAEAD) nonce(seq uint64) []byte {
	nonce := make([]byte, RecordIVSize)
	copy(nonce, a.iv[:])
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], seq)
	for i := 0; i < 8; i++ {
		nonce[RecordIVSize-8+i] ^= s[i]
	}
	return nonce
}

// Seal encrypts and authenticates plaintext for record sequence seq.
// Returns: ciphertext || tag (16 bytes)
func (a *RecordAEAD) Seal(seq uint64, plaintext, additionalData []byte) []byte {
	return a.aead.Seal(nil, a.nonce(seq), plaintext, additionalData)
}

// Open decrypts and verifies a record fragment sealed for sequence seq.
func (a *RecordAEAD) Open(seq uint64, ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < a.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := a.aead.Open(nil, a.nonce(seq), ciphertext, additionalData)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// Overhead returns the authentication tag overhead.
func (a *RecordAEAD) Overhead() int { return a.aead.Overhead() }
