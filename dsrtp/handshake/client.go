package handshake

import (
	"io"
	"time"

	"github.com/TheusHen/dsrtp/dsrtp/crypto"
	"github.com/TheusHen/dsrtp/dsrtp/protocol"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
)

// sendClientHello emits flight 1.
func (e *Endpoint) sendClientHello() error {
	kp, err := crypto.GenerateX25519(e.rand)
	if err != nil {
		return err
	}
	if _, err := io.ReadFull(e.rand, e.clientRandom[:]); err != nil {
		return err
	}
	e.keyShare = kp

	profiles := make([]uint16, len(e.opts.Profiles))
	for i, p := range e.opts.Profiles {
		profiles[i] = uint16(p)
	}
	body, err := protocol.ClientHello{
		Version:  protocol.Version1,
		Random:   e.clientRandom,
		KeyShare: kp.PublicKey[:],
		Profiles: profiles,
	}.Marshal()
	if err != nil {
		return err
	}

	e.started = time.Now()
	e.beginFlight()
	if err := e.sendMessage(protocol.HandshakeTypeClientHello, body); err != nil {
		return err
	}
	e.phase = phaseServerHello
	e.setState(StateInProgress)
	return nil
}

func (e *Endpoint) handleServerHello(msg protocol.Message, raw []byte) error {
	sh, err := protocol.ParseServerHello(msg.Body)
	if err != nil {
		return alertErr(protocol.AlertDecodeError, err)
	}
	if sh.Version != protocol.Version1 {
		return alertf(protocol.AlertProtocolVersion, "server version %d", sh.Version)
	}
	profile := srtp.Profile(sh.Profile)
	if !containsProfile(e.opts.Profiles, profile) {
		return alertf(protocol.AlertIllegalParameter, "server selected %s, which was not offered", profile)
	}
	shared, err := crypto.ECDH(e.keyShare.PrivateKey, sh.KeyShare)
	if err != nil {
		return alertErr(protocol.AlertIllegalParameter, err)
	}

	e.serverRandom = sh.Random
	e.profile = profile
	e.transcript.add(raw)

	ks, err := newKeySchedule(shared, e.clientRandom[:], e.serverRandom[:], e.transcript.sum())
	if err != nil {
		return err
	}
	e.ks = ks
	e.read = ks.server.aead
	e.write = ks.client.aead
	e.writeEpoch = 1
	e.phase = phaseCertificate
	return nil
}

// finishClient runs once the server Finished verified: it fixes the exporter
// secret and sends flight 3.
func (e *Endpoint) finishClient() error {
	if err := e.ks.deriveExporter(e.transcript.sum()); err != nil {
		return err
	}
	e.beginFlight()
	if err := e.sendAuthentication(); err != nil {
		return err
	}
	e.establish()
	return nil
}

func containsProfile(list []srtp.Profile, p srtp.Profile) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}
