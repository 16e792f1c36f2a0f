package handshake

import (
	"io"

	"github.com/TheusHen/dsrtp/dsrtp/crypto"
	"github.com/TheusHen/dsrtp/dsrtp/protocol"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
)

// handleClientHello negotiates the profile and answers with flight 2.
func (e *Endpoint) handleClientHello(msg protocol.Message, raw []byte) error {
	ch, err := protocol.ParseClientHello(msg.Body)
	if err != nil {
		return alertErr(protocol.AlertDecodeError, err)
	}
	if ch.Version != protocol.Version1 {
		return alertf(protocol.AlertProtocolVersion, "client version %d", ch.Version)
	}
	offered := make([]srtp.Profile, len(ch.Profiles))
	for i, p := range ch.Profiles {
		offered[i] = srtp.Profile(p)
	}
	profile, ok := srtp.Negotiate(e.opts.Profiles, offered)
	if !ok {
		return alertf(protocol.AlertHandshakeFailure, "no common protection profile: client offered %v, server supports %v", offered, e.opts.Profiles)
	}

	kp, err := crypto.GenerateX25519(e.rand)
	if err != nil {
		return err
	}
	shared, err := crypto.ECDH(kp.PrivateKey, ch.KeyShare)
	if err != nil {
		return alertErr(protocol.AlertIllegalParameter, err)
	}
	if _, err := io.ReadFull(e.rand, e.serverRandom[:]); err != nil {
		return err
	}
	e.keyShare = kp
	e.clientRandom = ch.Random
	e.profile = profile
	e.transcript.add(raw)

	body, err := protocol.ServerHello{
		Version:  protocol.Version1,
		Random:   e.serverRandom,
		KeyShare: kp.PublicKey[:],
		Profile:  uint16(profile),
	}.Marshal()
	if err != nil {
		return err
	}
	e.beginFlight()
	if err := e.sendMessage(protocol.HandshakeTypeServerHello, body); err != nil {
		return err
	}

	ks, err := newKeySchedule(shared, e.clientRandom[:], e.serverRandom[:], e.transcript.sum())
	if err != nil {
		return err
	}
	e.ks = ks
	e.read = ks.client.aead
	e.write = ks.server.aead
	e.writeEpoch = 1

	if err := e.sendAuthentication(); err != nil {
		return err
	}
	if err := ks.deriveExporter(e.transcript.sum()); err != nil {
		return err
	}
	e.log.Debugf("%s: selected profile %s", e.role, profile)
	e.phase = phaseCertificate
	return nil
}
