package srtp

import (
	"fmt"
)

// ExporterLabel is the keying material exporter label of RFC 5764 §4.2.
// Both peers must use the same label or their keys silently diverge.
const ExporterLabel = "EXTRACTOR-dtls_srtp"

// Exporter is the part of a completed handshake needed to key SRTP.
type Exporter interface {
	ExportKeyingMaterial(label string, length int) ([]byte, error)
	Profile() (Profile, error)
}

// SessionKeys is the master key and salt protecting one direction.
type SessionKeys struct {
	Key  []byte
	Salt []byte
}

// KeyMaterial is everything exported for one established channel. It is never
// mutated after extraction and can be shared by the send and receive sessions.
type KeyMaterial struct {
	Profile Profile
	Label   string
	Client  SessionKeys
	Server  SessionKeys
}

// KeyMaterialLen returns the number of exporter bytes a profile consumes.
func KeyMaterialLen(p Profile) (int, error) {
	keyLen, err := p.KeyLen()
	if err != nil {
		return 0, err
	}
	saltLen, err := p.SaltLen()
	if err != nil {
		return 0, err
	}
	return 2*keyLen + 2*saltLen, nil
}

// ExtractKeyMaterial exports 2*(key+salt) bytes under ExporterLabel and splits them.
func ExtractKeyMaterial(e Exporter) (KeyMaterial, error) {
	profile, err := e.Profile()
	if err != nil {
		return KeyMaterial{}, err
	}
	n, err := KeyMaterialLen(profile)
	if err != nil {
		return KeyMaterial{}, err
	}
	raw, err := e.ExportKeyingMaterial(ExporterLabel, n)
	if err != nil {
		return KeyMaterial{}, err
	}
	return SplitKeyMaterial(profile, raw)
}

// SplitKeyMaterial splits exporter output laid out as
//
//	client_write_key | server_write_key | client_write_salt | server_write_salt
func SplitKeyMaterial(profile Profile, raw []byte) (KeyMaterial, error) {
	n, err := KeyMaterialLen(profile)
	if err != nil {
		return KeyMaterial{}, err
	}
	if len(raw) != n {
		return KeyMaterial{}, fmt.Errorf("%w: got %d bytes of keying material, need %d", ErrKeyLength, len(raw), n)
	}
	keyLen, _ := profile.KeyLen()
	saltLen, _ := profile.SaltLen()

	buf := append([]byte(nil), raw...)
	take := func(k int) []byte {
		out := buf[:k:k]
		buf = buf[k:]
		return out
	}

	km := KeyMaterial{Profile: profile, Label: ExporterLabel}
	km.Client.Key = take(keyLen)
	km.Server.Key = take(keyLen)
	km.Client.Salt = take(saltLen)
	km.Server.Salt = take(saltLen)
	return km, nil
}

// Local returns the keys this endpoint protects outbound packets with.
func (k KeyMaterial) Local(isClient bool) SessionKeys {
	if isClient {
		return k.Client
	}
	return k.Server
}

// Remote returns the keys the peer protects its packets with.
func (k KeyMaterial) Remote(isClient bool) SessionKeys {
	if isClient {
		return k.Server
	}
	return k.Client
}
