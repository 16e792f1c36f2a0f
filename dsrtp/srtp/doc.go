// Package srtp protects RTP packets with keys exported from a completed handshake.
//
// It is split in three layers:
//   - Transform: the stateless AES-CM / HMAC-SHA1 protection primitive (RFC 3711)
//   - KeyMaterial: master keys and salts taken from the handshake exporter (RFC 5764)
//   - Session: per-direction sequence, rollover and replay tracking around a Transform
//
// A Session serializes its calls internally. KeyMaterial is immutable and may
// be shared by the send and receive sessions of one endpoint.
package srtp
