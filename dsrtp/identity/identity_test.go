package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
)

func TestGenerateValidates(t *testing.T) {
	c, err := Generate("dsrtp test")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	pub, fp, err := ParsePeerCertificate(c.DER)
	if err != nil {
		t.Fatalf("ParsePeerCertificate: %v", err)
	}
	if !pub.Equal(c.PublicKey()) {
		t.Fatalf("public key mismatch")
	}
	if fp != c.Fingerprint() {
		t.Fatalf("fingerprint mismatch")
	}
}

func TestPEMRoundTrip(t *testing.T) {
	c, _ := Generate("pem")
	certPEM, keyPEM, err := c.EncodePEM()
	if err != nil {
		t.Fatalf("EncodePEM: %v", err)
	}
	parsed, err := ParsePEM(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("ParsePEM: %v", err)
	}
	if parsed.Fingerprint() != c.Fingerprint() {
		t.Fatalf("fingerprint changed across PEM round trip")
	}
}

func TestMismatchedKeyRejected(t *testing.T) {
	c, _ := Generate("a")
	_, other, _ := ed25519.GenerateKey(rand.Reader)

	if _, err := New(c.DER, other); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}

	certPEM, _, _ := c.EncodePEM()
	_, otherPEM, _ := Certificate{DER: c.DER, PrivateKey: other}.EncodePEM()
	if _, err := ParsePEM(certPEM, otherPEM); !errors.Is(err, ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch from ParsePEM, got %v", err)
	}
}

func TestMalformedIdentityRejected(t *testing.T) {
	_, key, _ := ed25519.GenerateKey(rand.Reader)
	if _, err := New([]byte("not a certificate"), key); !errors.Is(err, ErrMalformedCertificate) {
		t.Fatalf("expected ErrMalformedCertificate, got %v", err)
	}

	c, _ := Generate("b")
	if _, err := New(c.DER, nil); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestSignVerify(t *testing.T) {
	c, _ := Generate("sign")
	msg := []byte("transcript")
	sig := c.Sign(msg)
	if !Verify(c.PublicKey(), msg, sig) {
		t.Fatalf("signature verification failed")
	}
	if Verify(c.PublicKey(), []byte("tampered"), sig) {
		t.Fatalf("expected verification to fail for tampered message")
	}
}

func TestFingerprintString(t *testing.T) {
	c, _ := Generate("fp")
	fp := c.Fingerprint()
	s := fp.String()
	if len(s) != 32*3-1 {
		t.Fatalf("unexpected fingerprint string length %d", len(s))
	}
	parsed, err := ParseFingerprint(s)
	if err != nil {
		t.Fatalf("ParseFingerprint: %v", err)
	}
	if !parsed.Equal(fp) {
		t.Fatalf("ParseFingerprint mismatch")
	}
	if _, err := ParseFingerprint("AB:CD"); err != ErrInvalidFingerprint {
		t.Fatalf("expected ErrInvalidFingerprint, got %v", err)
	}
	if !(Fingerprint{}).IsZero() || fp.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}
