package dsrtp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/TheusHen/dsrtp/dsrtp/handshake"
	"github.com/TheusHen/dsrtp/dsrtp/identity"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
	"github.com/TheusHen/dsrtp/dsrtp/transport/pump"
)

var ErrNotReady = errors.New("dsrtp: SRTP sessions are not set up")

// Config combines the settings of the handshake and of both SRTP sessions.
type Config struct {
	Role      handshake.Role
	Identity  identity.Certificate
	Handshake handshake.Options
	// Send and Receive configure the outbound and inbound SRTP sessions.
	// LoggerFactory and Metrics default to the handshake's.
	Send    srtp.SessionOptions
	Receive srtp.SessionOptions
}

// Endpoint is a handshake endpoint that, once established, protects media
// with keys exported from the handshake. It satisfies pump.Peer.
type Endpoint struct {
	*handshake.Endpoint
	cfg Config

	mu   sync.Mutex
	keys srtp.KeyMaterial
	send *srtp.Session
	recv *srtp.Session
}

func NewEndpoint(cfg Config) (*Endpoint, error) {
	hs, err := handshake.New(cfg.Role, cfg.Identity, cfg.Handshake)
	if err != nil {
		return nil, err
	}
	for _, o := range []*srtp.SessionOptions{&cfg.Send, &cfg.Receive} {
		if o.LoggerFactory == nil {
			o.LoggerFactory = cfg.Handshake.LoggerFactory
		}
		if o.Metrics == nil {
			o.Metrics = cfg.Handshake.Metrics
		}
	}
	return &Endpoint{Endpoint: hs, cfg: cfg}, nil
}

// SetupSRTP exports the key material of the established handshake and
// creates the send and receive sessions. It is idempotent.
func (e *Endpoint) SetupSRTP() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.send != nil {
		return nil
	}
	km, err := srtp.ExtractKeyMaterial(e.Endpoint)
	if err != nil {
		return err
	}
	isClient := e.Role() == handshake.RoleClient
	send, err := srtp.NewSession(srtp.Send, km.Profile, km.Local(isClient), e.cfg.Send)
	if err != nil {
		return err
	}
	recv, err := srtp.NewSession(srtp.Receive, km.Profile, km.Remote(isClient), e.cfg.Receive)
	if err != nil {
		return err
	}
	e.keys, e.send, e.recv = km, send, recv
	return nil
}

func (e *Endpoint) sessions() (*srtp.Session, *srtp.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.send == nil {
		return nil, nil, ErrNotReady
	}
	return e.send, e.recv, nil
}

// Protect protects an outbound RTP packet.
func (e *Endpoint) Protect(packet []byte) ([]byte, error) {
	send, _, err := e.sessions()
	if err != nil {
		return nil, err
	}
	return send.Protect(packet)
}

// Unprotect verifies and decrypts an inbound SRTP packet.
func (e *Endpoint) Unprotect(packet []byte) ([]byte, error) {
	_, recv, err := e.sessions()
	if err != nil {
		return nil, err
	}
	return recv.Unprotect(packet)
}

// KeyMaterial returns the exported keys once SetupSRTP has run.
func (e *Endpoint) KeyMaterial() (srtp.KeyMaterial, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.send == nil {
		return srtp.KeyMaterial{}, ErrNotReady
	}
	return e.keys, nil
}

// Sessions exposes the send and receive sessions, e.g. for their stats.
func (e *Endpoint) Sessions() (send, receive *srtp.Session, err error) {
	return e.sessions()
}

// Connect runs the handshake between a and b in memory and sets up SRTP on
// both when it completes.
func Connect(ctx context.Context, a, b *Endpoint, opts pump.Options) (pump.Result, error) {
	res, err := pump.Run(ctx, a, b, opts)
	if err != nil {
		return res, err
	}
	for _, e := range []*Endpoint{a, b} {
		if err := e.SetupSRTP(); err != nil {
			return res, fmt.Errorf("dsrtp: %s: %w", e.Role(), err)
		}
	}
	return res, nil
}
