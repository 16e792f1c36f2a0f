package srtp

import "errors"

var (
	ErrUnknownProfile = errors.New("srtp: unknown protection profile")
	ErrKeyLength      = errors.New("srtp: invalid master key or salt length")

	// ErrCrypto reports a buffer the transform cannot process at all.
	ErrCrypto = errors.New("srtp: malformed packet")
	// ErrAuthentication reports a packet whose authentication tag did not verify.
	ErrAuthentication = errors.New("srtp: authentication failed")
	// ErrReplay reports a packet whose index was already accepted or has
	// fallen behind the replay window.
	ErrReplay = errors.New("srtp: replayed packet")

	ErrUnknownStream = errors.New("srtp: packet does not belong to this session's stream")
	ErrDirection     = errors.New("srtp: operation not valid for session direction")
)
