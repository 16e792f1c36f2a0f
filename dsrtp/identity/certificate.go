package identity

import (
	"bytes"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	ErrMalformedCertificate = errors.New("identity: malformed certificate")
	ErrMissingKey           = errors.New("identity: missing private key")
	ErrUnsupportedKey       = errors.New("identity: only Ed25519 keys are supported")
	ErrKeyMismatch          = errors.New("identity: private key does not match certificate")
)

// Certificate is the identity material of one endpoint: a DER certificate and
// the Ed25519 private key it was issued for. Chain-of-trust is not evaluated;
// peers authenticate each other by certificate fingerprint.
type Certificate struct {
	DER        []byte
	PrivateKey ed25519.PrivateKey
}

// New builds a Certificate and checks that key corresponds to the certificate.
func New(der []byte, key ed25519.PrivateKey) (Certificate, error) {
	c := Certificate{DER: append([]byte(nil), der...), PrivateKey: key}
	if err := c.Validate(); err != nil {
		return Certificate{}, err
	}
	return c, nil
}

// ParsePEM builds a Certificate from PEM encoded certificate and PKCS#8 key blobs.
func ParsePEM(certPEM, keyPEM []byte) (Certificate, error) {
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return Certificate{}, fmt.Errorf("%w: %v", ErrKeyMismatch, err)
	}
	if len(pair.Certificate) == 0 {
		return Certificate{}, ErrMalformedCertificate
	}
	key, ok := pair.PrivateKey.(ed25519.PrivateKey)
	if !ok {
		return Certificate{}, ErrUnsupportedKey
	}
	return New(pair.Certificate[0], key)
}

// Validate checks that the certificate parses, carries an Ed25519 public key,
// and that the private key matches it.
func (c Certificate) Validate() error {
	if len(c.PrivateKey) == 0 {
		return ErrMissingKey
	}
	if len(c.PrivateKey) != ed25519.PrivateKeySize {
		return ErrUnsupportedKey
	}
	pub, _, err := ParsePeerCertificate(c.DER)
	if err != nil {
		return err
	}
	derived, ok := c.PrivateKey.Public().(ed25519.PublicKey)
	if !ok || !bytes.Equal(derived, pub) {
		return ErrKeyMismatch
	}
	return nil
}

// PublicKey returns the public half of the identity key.
func (c Certificate) PublicKey() ed25519.PublicKey {
	return c.PrivateKey.Public().(ed25519.PublicKey)
}

// Fingerprint returns the SHA-256 fingerprint of the DER certificate.
func (c Certificate) Fingerprint() Fingerprint {
	return FingerprintOf(c.DER)
}

func (c Certificate) Sign(message []byte) []byte {
	return ed25519.Sign(c.PrivateKey, message)
}

// EncodePEM returns the certificate and key as PEM blocks, the inverse of ParsePEM.
func (c Certificate) EncodePEM() (certPEM, keyPEM []byte, err error) {
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: c.DER})
	keyBytes, err := x509.MarshalPKCS8PrivateKey(c.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
	return certPEM, keyPEM, nil
}

// ParsePeerCertificate extracts the Ed25519 public key and fingerprint from a
// certificate received from a peer.
func ParsePeerCertificate(der []byte) (ed25519.PublicKey, Fingerprint, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, Fingerprint{}, fmt.Errorf("%w: %v", ErrMalformedCertificate, err)
	}
	pub, ok := cert.PublicKey.(ed25519.PublicKey)
	if !ok {
		return nil, Fingerprint{}, ErrUnsupportedKey
	}
	return pub, FingerprintOf(der), nil
}

func Verify(publicKey ed25519.PublicKey, message, signature []byte) bool {
	return ed25519.Verify(publicKey, message, signature)
}
