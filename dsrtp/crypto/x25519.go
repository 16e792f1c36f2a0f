package crypto

import (
	"errors"
	"io"

	"golang.org/x/crypto/curve25519"
)

// KeyShareSize is the size of an X25519 public key as carried in a hello message.
const KeyShareSize = curve25519.PointSize

// X25519KeyPair represents an ephemeral ECDH keypair.
type X25519KeyPair struct {
	PublicKey  [32]byte
	PrivateKey [32]byte
}

var (
	ErrInvalidPublicKey = errors.New("crypto: invalid X25519 public key")
)

// GenerateX25519 generates an ephemeral X25519 keypair reading entropy from r.
func GenerateX25519(r io.Reader) (X25519KeyPair, error) {
	var kp X25519KeyPair
	if _, err := io.ReadFull(r, kp.PrivateKey[:]); err != nil {
		return X25519KeyPair{}, err
	}
	// Clamp private key per RFC 7748
	kp.PrivateKey[0] &= 248
	kp.PrivateKey[31] &= 127
	kp.PrivateKey[31] |= 64

	pub, err := curve25519.X25519(kp.PrivateKey[:], curve25519.Basepoint)
	if err != nil {
		return X25519KeyPair{}, err
	}
	copy(kp.PublicKey[:], pub)
	return kp, nil
}

// ECDH computes the shared secret using X25519.
// Returns 32 bytes of raw shared secret (should be passed to HKDF).
func ECDH(privateKey [32]byte, peerPublicKey []byte) ([]byte, error) {
	if len(peerPublicKey) != KeyShareSize {
		return nil, ErrInvalidPublicKey
	}
	// curve25519.X25519 rejects low-order points, which yield an all-zero output.
	shared, err := curve25519.X25519(privateKey[:], peerPublicKey)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return shared, nil
}
