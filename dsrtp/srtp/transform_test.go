package srtp

import (
	"bytes"
	"errors"
	"testing"
)

func TestTransformConcreteScenario(t *testing.T) {
	for _, profile := range SupportedProfiles() {
		tr, err := NewTransform(profile, testKey, testSalt)
		if err != nil {
			t.Fatalf("NewTransform(%s): %v", profile, err)
		}
		packet := testPacket(t, testSSRC, 0x1234)
		if len(packet) != 30 {
			t.Fatalf("expected 30-byte packet, got %d", len(packet))
		}
		orig := append([]byte(nil), packet...)

		protected, err := tr.Protect(packet, 0)
		if err != nil {
			t.Fatalf("Protect: %v", err)
		}
		if !bytes.Equal(packet, orig) {
			t.Fatalf("Protect modified its input")
		}
		if len(protected) != len(packet)+tr.Overhead() {
			t.Fatalf("%s: expected %d bytes, got %d", profile, len(packet)+tr.Overhead(), len(protected))
		}
		if !bytes.Equal(protected[:12], packet[:12]) {
			t.Fatalf("header must stay in the clear")
		}
		if bytes.Equal(protected[12:30], packet[12:]) {
			t.Fatalf("payload was not encrypted")
		}

		plain, err := tr.Unprotect(protected, 0)
		if err != nil {
			t.Fatalf("Unprotect: %v", err)
		}
		if !bytes.Equal(plain, orig) {
			t.Fatalf("%s: round trip mismatch\n got %x\nwant %x", profile, plain, orig)
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	tr, _ := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt)
	packet := testPacket(t, testSSRC, 7)
	a, _ := tr.Protect(packet, 3)
	b, _ := tr.Protect(packet, 3)
	if !bytes.Equal(a, b) {
		t.Fatalf("Protect is not deterministic")
	}
	c, _ := tr.Protect(packet, 4)
	if bytes.Equal(a, c) {
		t.Fatalf("rollover counter does not affect output")
	}
}

func TestTransformTamperEveryBit(t *testing.T) {
	for _, profile := range SupportedProfiles() {
		tr, _ := NewTransform(profile, testKey, testSalt)
		protected, err := tr.Protect(testPacket(t, testSSRC, 0x1234), 0)
		if err != nil {
			t.Fatalf("Protect: %v", err)
		}
		for i := 12; i < len(protected); i++ {
			for bit := 0; bit < 8; bit++ {
				tampered := append([]byte(nil), protected...)
				tampered[i] ^= 1 << bit
				if _, err := tr.Unprotect(tampered, 0); !errors.Is(err, ErrAuthentication) {
					t.Fatalf("%s: byte %d bit %d: expected ErrAuthentication, got %v", profile, i, bit, err)
				}
			}
		}
	}
}

func TestTransformWrongROC(t *testing.T) {
	tr, _ := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt)
	protected, _ := tr.Protect(testPacket(t, testSSRC, 1), 1)
	if _, err := tr.Unprotect(protected, 0); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestTransformMalformed(t *testing.T) {
	tr, _ := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt)
	if _, err := tr.Protect([]byte{0x80, 0x00, 0x01}, 0); !errors.Is(err, ErrCrypto) {
		t.Fatalf("expected ErrCrypto for short packet, got %v", err)
	}
	if _, err := tr.Unprotect(make([]byte, 5), 0); !errors.Is(err, ErrCrypto) {
		t.Fatalf("expected ErrCrypto for packet shorter than tag, got %v", err)
	}
	if _, err := tr.Unprotect(make([]byte, 16), 0); !errors.Is(err, ErrCrypto) {
		t.Fatalf("expected ErrCrypto for packet without room for a header, got %v", err)
	}
}

func TestNewTransformRejectsBadKeys(t *testing.T) {
	if _, err := NewTransform(ProfileAES128CMHMACSHA1_80, testKey[:15], testSalt); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("expected ErrKeyLength, got %v", err)
	}
	if _, err := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt[:12]); !errors.Is(err, ErrKeyLength) {
		t.Fatalf("expected ErrKeyLength, got %v", err)
	}
	if _, err := NewTransform(Profile(0x0007), testKey, testSalt); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("expected ErrUnknownProfile, got %v", err)
	}
}

func BenchmarkTransformProtect(b *testing.B) {
	tr, _ := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt)
	packet := testPacket(b, testSSRC, 1)
	b.SetBytes(int64(len(packet)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Protect(packet, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTransformUnprotect(b *testing.B) {
	tr, _ := NewTransform(ProfileAES128CMHMACSHA1_80, testKey, testSalt)
	protected, _ := tr.Protect(testPacket(b, testSSRC, 1), 0)
	b.SetBytes(int64(len(protected)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Unprotect(protected, 0); err != nil {
			b.Fatal(err)
		}
	}
}
