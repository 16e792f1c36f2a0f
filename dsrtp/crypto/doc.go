// Package crypto provides the cryptographic building blocks of the dsrtp handshake.
//
// Design goals:
//   - Ephemeral X25519 key exchange per handshake
//   - HKDF-SHA256 key schedule with TLS 1.3 style labels
//   - ChaCha20-Poly1305 (RFC 8439) protection of encrypted handshake records
//   - Constant-time comparisons where secrets are involved
package crypto
