package handshake

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/TheusHen/dsrtp/dsrtp/crypto"
)

const (
	serverSignatureContext = "dsrtp server CertificateVerify\x00"
	clientSignatureContext = "dsrtp client CertificateVerify\x00"
)

// MaxExportLength is the largest keying material export.
const MaxExportLength = crypto.MaxExpandLength

// transcript is the running hash over every handshake message in order.
type transcript struct {
	h hash.Hash
}

func newTranscript() *transcript {
	return &transcript{h: sha256.New()}
}

func (t *transcript) add(msg []byte) { t.h.Write(msg) }

func (t *transcript) sum() []byte { return t.h.Sum(nil) }

// trafficKeys protect one direction of epoch 1.
type trafficKeys struct {
	aead     *crypto.RecordAEAD
	finished []byte
}

func deriveTrafficKeys(secret []byte) (trafficKeys, error) {
	key, err := crypto.ExpandLabel(secret, "key", nil, crypto.RecordKeySize)
	if err != nil {
		return trafficKeys{}, err
	}
	iv, err := crypto.ExpandLabel(secret, "iv", nil, crypto.RecordIVSize)
	if err != nil {
		return trafficKeys{}, err
	}
	finished, err := crypto.ExpandLabel(secret, "finished", nil, crypto.HashSize)
	if err != nil {
		return trafficKeys{}, err
	}
	aead, err := crypto.NewRecordAEAD(key, iv)
	if err != nil {
		return trafficKeys{}, err
	}
	return trafficKeys{aead: aead, finished: finished}, nil
}

// keySchedule holds the secrets derived after the hellos are exchanged.
type keySchedule struct {
	handshakeSecret []byte
	client          trafficKeys
	server          trafficKeys
	exporterSecret  []byte
}

// newKeySchedule derives the handshake traffic keys from the X25519 shared
// secret, salted with both randoms and bound to the hash of both hellos.
func newKeySchedule(shared, clientRandom, serverRandom, helloHash []byte) (*keySchedule, error) {
	salt := make([]byte, 0, len(clientRandom)+len(serverRandom))
	salt = append(salt, clientRandom...)
	salt = append(salt, serverRandom...)
	ks := &keySchedule{handshakeSecret: crypto.Extract(shared, salt)}

	cSecret, err := crypto.ExpandLabel(ks.handshakeSecret, "c hs traffic", helloHash, crypto.HashSize)
	if err != nil {
		return nil, err
	}
	sSecret, err := crypto.ExpandLabel(ks.handshakeSecret, "s hs traffic", helloHash, crypto.HashSize)
	if err != nil {
		return nil, err
	}
	if ks.client, err = deriveTrafficKeys(cSecret); err != nil {
		return nil, err
	}
	if ks.server, err = deriveTrafficKeys(sSecret); err != nil {
		return nil, err
	}
	return ks, nil
}

// deriveExporter fixes the exporter secret to the transcript through the
// server Finished message.
func (ks *keySchedule) deriveExporter(transcriptHash []byte) error {
	secret, err := crypto.ExpandLabel(ks.handshakeSecret, "exp master", transcriptHash, crypto.HashSize)
	if err != nil {
		return err
	}
	ks.exporterSecret = secret
	return nil
}

// export implements a TLS 1.3 style exporter over the exporter secret.
func (ks *keySchedule) export(label string, length int) ([]byte, error) {
	if length <= 0 || length > MaxExportLength {
		return nil, fmt.Errorf("%w: %d", ErrExportLength, length)
	}
	empty := sha256.Sum256(nil)
	secret, err := crypto.ExpandLabel(ks.exporterSecret, label, empty[:], crypto.HashSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportLength, err)
	}
	return crypto.ExpandLabel(secret, "exporter", empty[:], length)
}

func signatureInput(context string, transcriptHash []byte) []byte {
	out := make([]byte, 0, len(context)+len(transcriptHash))
	out = append(out, context...)
	return append(out, transcriptHash...)
}
