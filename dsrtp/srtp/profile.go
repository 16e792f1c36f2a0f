package srtp

import "fmt"

// Profile identifies a protection profile by its DTLS-SRTP registry value
// (RFC 5764 §4.1.2).
type Profile uint16

const (
	ProfileAES128CMHMACSHA1_80 Profile = 0x0001
	ProfileAES128CMHMACSHA1_32 Profile = 0x0002
)

const (
	aes128KeyLen = 16
	cmSaltLen    = 14
	sha1AuthLen  = 20
)

// SupportedProfiles lists every profile this package implements, most preferred first.
func SupportedProfiles() []Profile {
	return []Profile{ProfileAES128CMHMACSHA1_80, ProfileAES128CMHMACSHA1_32}
}

func (p Profile) Valid() bool {
	switch p {
	case ProfileAES128CMHMACSHA1_80, ProfileAES128CMHMACSHA1_32:
		return true
	default:
		return false
	}
}

// KeyLen returns the master key length in bytes.
func (p Profile) KeyLen() (int, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %#04x", ErrUnknownProfile, uint16(p))
	}
	return aes128KeyLen, nil
}

// SaltLen returns the master salt length in bytes.
func (p Profile) SaltLen() (int, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: %#04x", ErrUnknownProfile, uint16(p))
	}
	return cmSaltLen, nil
}

// TagLen returns the length of the authentication tag appended to each packet.
func (p Profile) TagLen() (int, error) {
	switch p {
	case ProfileAES128CMHMACSHA1_80:
		return 10, nil
	case ProfileAES128CMHMACSHA1_32:
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: %#04x", ErrUnknownProfile, uint16(p))
	}
}

func (p Profile) String() string {
	switch p {
	case ProfileAES128CMHMACSHA1_80:
		return "SRTP_AES128_CM_HMAC_SHA1_80"
	case ProfileAES128CMHMACSHA1_32:
		return "SRTP_AES128_CM_HMAC_SHA1_32"
	default:
		return fmt.Sprintf("UNKNOWN(%#04x)", uint16(p))
	}
}

// Negotiate returns the first profile in preferred that also appears in offered.
// The result is the intersection of the two sets ordered by the local preference.
func Negotiate(preferred, offered []Profile) (Profile, bool) {
	set := make(map[Profile]struct{}, len(offered))
	for _, p := range offered {
		set[p] = struct{}{}
	}
	for _, p := range preferred {
		if !p.Valid() {
			continue
		}
		if _, ok := set[p]; ok {
			return p, true
		}
	}
	return 0, false
}
