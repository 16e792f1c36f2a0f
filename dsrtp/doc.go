// Package dsrtp keys SRTP media from a datagram handshake between two peers.
//
// The building blocks live in subpackages: handshake runs the key exchange
// over in-memory byte buffers, srtp derives session keys with the RFC 5764
// exporter and protects RTP packets, and transport/pump moves handshake
// bytes between two endpoints in process. Endpoint ties them together for
// the common case of one media channel per peer pair.
package dsrtp
