package srtp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/pion/rtp"
)

// Key derivation labels of RFC 3711 §4.3.1.
const (
	labelEncryption     = 0x00
	labelAuthentication = 0x01
	labelSalt           = 0x02
)

// Transform is the AES-CM + HMAC-SHA1 protection primitive. It is deterministic
// and holds no per-packet state: the caller supplies the rollover counter that,
// together with the header sequence number, forms the 48-bit packet index.
type Transform struct {
	profile Profile
	block   cipher.Block
	authKey []byte
	salt    [cmSaltLen]byte
	tagLen  int
}

// NewTransform derives session keys from a master key and salt.
func NewTransform(profile Profile, masterKey, masterSalt []byte) (*Transform, error) {
	keyLen, err := profile.KeyLen()
	if err != nil {
		return nil, err
	}
	saltLen, _ := profile.SaltLen()
	tagLen, _ := profile.TagLen()
	if len(masterKey) != keyLen || len(masterSalt) != saltLen {
		return nil, fmt.Errorf("%w: key %d bytes, salt %d bytes", ErrKeyLength, len(masterKey), len(masterSalt))
	}

	encKey, err := deriveSessionKey(masterKey, masterSalt, labelEncryption, keyLen)
	if err != nil {
		return nil, err
	}
	authKey, err := deriveSessionKey(masterKey, masterSalt, labelAuthentication, sha1AuthLen)
	if err != nil {
		return nil, err
	}
	salt, err := deriveSessionKey(masterKey, masterSalt, labelSalt, saltLen)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	t := &Transform{
		profile: profile,
		block:   block,
		authKey: authKey,
		tagLen:  tagLen,
	}
	copy(t.salt[:], salt)
	return t, nil
}

// deriveSessionKey is the AES-CM PRF with a key derivation rate of zero:
// the keystream under the master key, starting at IV = (salt XOR label<<48) * 2^16.
func deriveSessionKey(masterKey, masterSalt []byte, label byte, n int) ([]byte, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, masterSalt)
	iv[7] ^= label
	out := make([]byte, n)
	cipher.NewCTR(block, iv).XORKeyStream(out, out)
	return out, nil
}

func (t *Transform) Profile() Profile { return t.profile }

// Overhead returns the number of bytes Protect appends.
func (t *Transform) Overhead() int { return t.tagLen }

// Protect encrypts the payload and appends the authentication tag.
// Header fields are authenticated but left in the clear.
func (t *Transform) Protect(packet []byte, roc uint32) ([]byte, error) {
	var h rtp.Header
	n, err := h.Unmarshal(packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return t.protect(packet, n, h.SSRC, h.SequenceNumber, roc), nil
}

func (t *Transform) protect(packet []byte, headerLen int, ssrc uint32, seq uint16, roc uint32) []byte {
	out := make([]byte, len(packet)+t.tagLen)
	copy(out, packet)
	t.xorPayload(out[headerLen:len(packet)], ssrc, packetIndex(roc, seq))
	copy(out[len(packet):], t.tag(out[:len(packet)], roc))
	return out
}

// Unprotect verifies the tag in constant time and decrypts the payload.
func (t *Transform) Unprotect(packet []byte, roc uint32) ([]byte, error) {
	if len(packet) < t.tagLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCrypto, len(packet))
	}
	var h rtp.Header
	n, err := h.Unmarshal(packet[:len(packet)-t.tagLen])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	return t.unprotect(packet, n, h.SSRC, h.SequenceNumber, roc)
}

func (t *Transform) unprotect(packet []byte, headerLen int, ssrc uint32, seq uint16, roc uint32) ([]byte, error) {
	body := packet[:len(packet)-t.tagLen]
	if !hmac.Equal(t.tag(body, roc), packet[len(body):]) {
		return nil, ErrAuthentication
	}
	out := make([]byte, len(body))
	copy(out, body)
	t.xorPayload(out[headerLen:], ssrc, packetIndex(roc, seq))
	return out, nil
}

// xorPayload applies the AES-CM keystream for one packet:
// IV = (k_s * 2^16) XOR (SSRC * 2^64) XOR (i * 2^16).
func (t *Transform) xorPayload(payload []byte, ssrc uint32, index uint64) {
	if len(payload) == 0 {
		return
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, t.salt[:])
	var s [4]byte
	binary.BigEndian.PutUint32(s[:], ssrc)
	for i := 0; i < 4; i++ {
		iv[4+i] ^= s[i]
	}
	for i := 0; i < 6; i++ {
		iv[8+i] ^= byte(index >> (40 - 8*uint(i)))
	}
	cipher.NewCTR(t.block, iv).XORKeyStream(payload, payload)
}

// tag computes the truncated HMAC-SHA1 over the authenticated portion and the ROC.
func (t *Transform) tag(authenticated []byte, roc uint32) []byte {
	m := hmac.New(sha1.New, t.authKey)
	m.Write(authenticated)
	var r [4]byte
	binary.BigEndian.PutUint32(r[:], roc)
	m.Write(r[:])
	return m.Sum(nil)[:t.tagLen]
}

func packetIndex(roc uint32, seq uint16) uint64 {
	return uint64(roc)<<16 | uint64(seq)
}
