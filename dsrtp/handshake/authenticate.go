package handshake

import (
	"github.com/TheusHen/dsrtp/dsrtp/crypto"
	"github.com/TheusHen/dsrtp/dsrtp/identity"
	"github.com/TheusHen/dsrtp/dsrtp/protocol"
)

func (e *Endpoint) ownContext() string {
	if e.role == RoleClient {
		return clientSignatureContext
	}
	return serverSignatureContext
}

func (e *Endpoint) peerContext() string {
	if e.role == RoleClient {
		return serverSignatureContext
	}
	return clientSignatureContext
}

func (e *Endpoint) ownKeys() trafficKeys {
	if e.role == RoleClient {
		return e.ks.client
	}
	return e.ks.server
}

func (e *Endpoint) peerKeys() trafficKeys {
	if e.role == RoleClient {
		return e.ks.server
	}
	return e.ks.client
}

// sendAuthentication queues Certificate, CertificateVerify and Finished.
func (e *Endpoint) sendAuthentication() error {
	body, err := protocol.Certificate{DER: e.id.DER}.Marshal()
	if err != nil {
		return err
	}
	if err := e.sendMessage(protocol.HandshakeTypeCertificate, body); err != nil {
		return err
	}

	sig := e.id.Sign(signatureInput(e.ownContext(), e.transcript.sum()))
	if body, err = (protocol.CertificateVerify{Signature: sig}).Marshal(); err != nil {
		return err
	}
	if err := e.sendMessage(protocol.HandshakeTypeCertificateVerify, body); err != nil {
		return err
	}

	mac := crypto.FinishedMAC(e.ownKeys().finished, e.transcript.sum())
	return e.sendMessage(protocol.HandshakeTypeFinished, mac)
}

func (e *Endpoint) handleCertificate(msg protocol.Message, raw []byte) error {
	c, err := protocol.ParseCertificate(msg.Body)
	if err != nil {
		return alertErr(protocol.AlertDecodeError, err)
	}
	pub, fp, err := identity.ParsePeerCertificate(c.DER)
	if err != nil {
		return alertErr(protocol.AlertBadCertificate, err)
	}
	if pin := e.opts.PeerFingerprint; !pin.IsZero() && !fp.Equal(pin) {
		return alertf(protocol.AlertBadCertificate, "peer fingerprint %s does not match %s", fp, pin)
	}
	e.peerKey = pub
	e.peerFingerprint = fp
	e.transcript.add(raw)
	e.phase = phaseCertificateVerify
	return nil
}

func (e *Endpoint) handleCertificateVerify(msg protocol.Message, raw []byte) error {
	cv, err := protocol.ParseCertificateVerify(msg.Body)
	if err != nil {
		return alertErr(protocol.AlertDecodeError, err)
	}
	if !identity.Verify(e.peerKey, signatureInput(e.peerContext(), e.transcript.sum()), cv.Signature) {
		return alertf(protocol.AlertDecryptError, "certificate verify signature mismatch")
	}
	e.transcript.add(raw)
	e.phase = phaseFinished
	return nil
}

func (e *Endpoint) handleFinished(msg protocol.Message, raw []byte) error {
	if len(msg.Body) != crypto.HashSize {
		return alertf(protocol.AlertDecodeError, "finished is %d bytes", len(msg.Body))
	}
	if !crypto.VerifyFinished(e.peerKeys().finished, e.transcript.sum(), msg.Body) {
		return alertf(protocol.AlertDecryptError, "finished mac mismatch")
	}
	e.transcript.add(raw)
	if e.role == RoleClient {
		return e.finishClient()
	}
	e.establish()
	return nil
}
