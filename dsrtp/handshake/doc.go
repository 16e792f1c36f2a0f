// Package handshake implements the datagram handshake that authenticates two
// endpoints, agrees on an SRTP protection profile and derives an exporter
// secret for keying media.
//
// An Endpoint never touches the network. Bytes received from the peer are
// handed to FeedInbound, Advance performs one non-blocking processing step,
// and DrainOutbound yields the bytes to send. A driver such as the pump
// package moves bytes between two endpoints until both report IsEstablished.
//
// The exchange takes three flights:
//
//	client                                   server
//	ClientHello                 -------->
//	                                         ServerHello
//	                                         {Certificate}
//	                                         {CertificateVerify}
//	                            <--------    {Finished}
//	{Certificate}
//	{CertificateVerify}
//	{Finished}                  -------->
//
// Messages in braces travel in epoch 1 records protected with
// ChaCha20-Poly1305 under keys derived from the X25519 shared secret.
package handshake
