package handshake

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/TheusHen/dsrtp/dsrtp/crypto"
	"github.com/TheusHen/dsrtp/dsrtp/identity"
	"github.com/TheusHen/dsrtp/dsrtp/protocol"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
)

// Endpoint is one side of a handshake. All methods are safe for concurrent use.
type Endpoint struct {
	mu   sync.Mutex
	role Role
	id   identity.Certificate
	opts Options
	rand io.Reader
	log  logging.LeveledLogger

	state   State
	phase   phase
	err     error
	started time.Time

	inbound    bytes.Buffer
	outbound   bytes.Buffer
	lastFlight []byte

	sendMsgSeq uint16
	recvMsgSeq uint16
	writeEpoch uint16
	writeSeq   [2]uint64
	write      *crypto.RecordAEAD
	read       *crypto.RecordAEAD

	transcript   *transcript
	keyShare     crypto.X25519KeyPair
	clientRandom [protocol.RandomSize]byte
	serverRandom [protocol.RandomSize]byte
	ks           *keySchedule

	profile         srtp.Profile
	peerKey         ed25519.PublicKey
	peerFingerprint identity.Fingerprint
	peerAlert       *protocol.Alert
}

var _ srtp.Exporter = (*Endpoint)(nil)

// New creates an endpoint in StateInitial. It fails with ErrConfiguration when
// the identity is unusable or the profile list is empty or unknown.
func New(role Role, id identity.Certificate, opts Options) (*Endpoint, error) {
	if role != RoleClient && role != RoleServer {
		return nil, fmt.Errorf("%w: unknown role %v", ErrConfiguration, role)
	}
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	e := &Endpoint{
		role:       role,
		id:         id,
		opts:       opts,
		rand:       opts.Rand,
		log:        opts.LoggerFactory.NewLogger("handshake"),
		transcript: newTranscript(),
		phase:      phaseStart,
	}
	if e.rand == nil {
		e.rand = rand.Reader
	}
	if role == RoleServer {
		e.phase = phaseClientHello
	}
	return e, nil
}

func (e *Endpoint) Role() Role { return e.role }

func (e *Endpoint) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Endpoint) IsEstablished() bool {
	return e.State() == StateEstablished
}

// Err returns the reason the endpoint failed, or nil.
func (e *Endpoint) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Advance performs one processing step using only bytes already fed in.
// A client's first call emits its opening flight. Advance never blocks and is
// a no-op when no complete record is buffered.
func (e *Endpoint) Advance() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateFailed:
		return fmt.Errorf("%w: endpoint has failed: %v", ErrState, e.err)
	case StateInitial:
		if e.role == RoleClient {
			if err := e.sendClientHello(); err != nil {
				return e.fail(err)
			}
		}
	}

	resend := false
	for e.inbound.Len() > 0 {
		rec, n, err := protocol.ParseRecord(e.inbound.Bytes())
		if errors.Is(err, protocol.ErrIncompleteRecord) {
			break
		}
		if err != nil {
			if e.state == StateEstablished {
				e.log.Debugf("%s: discarding %d undecodable bytes after establishment", e.role, e.inbound.Len())
				e.inbound.Reset()
				break
			}
			return e.fail(alertErr(protocol.AlertDecodeError, err))
		}
		e.inbound.Next(n)

		if e.state == StateEstablished {
			if rec.Type == protocol.ContentTypeAlert {
				e.lateAlert(rec)
				continue
			}
			e.log.Debugf("%s: discarding %s record (epoch %d, seq %d) after establishment", e.role, rec.Type, rec.Epoch, rec.Sequence)
			// The server only repeats its flight when ours was lost.
			if rec.Type == protocol.ContentTypeHandshake && e.role == RoleClient {
				resend = true
			}
			continue
		}
		dup, err := e.handleRecord(rec)
		if err != nil {
			return e.fail(err)
		}
		resend = resend || dup
	}

	if resend && len(e.lastFlight) > 0 {
		e.log.Debugf("%s: peer repeated a flight, resending %d bytes", e.role, len(e.lastFlight))
		e.outbound.Write(e.lastFlight)
	}
	return nil
}

// FeedInbound appends bytes received from the peer. The first bytes fed to a
// server start its handshake.
func (e *Endpoint) FeedInbound(b []byte) {
	if len(b) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateFailed {
		e.log.Debugf("%s: dropping %d inbound bytes, endpoint has failed", e.role, len(b))
		return
	}
	e.inbound.Write(b)
	if e.role == RoleServer && e.state == StateInitial {
		e.setState(StateInProgress)
		e.started = time.Now()
	}
}

// DrainOutbound removes and returns up to max pending outbound bytes. The
// result is empty, never nil, when nothing is queued or max <= 0.
func (e *Endpoint) DrainOutbound(max int) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drain(max)
}

// DrainAll removes and returns every pending outbound byte.
func (e *Endpoint) DrainAll() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drain(e.outbound.Len())
}

func (e *Endpoint) drain(limit int) []byte {
	n := 0
	if limit > 0 {
		n = min(limit, e.outbound.Len())
	}
	out := make([]byte, n)
	copy(out, e.outbound.Next(n))
	return out
}

// PeerAlert returns the alert the peer sent after this endpoint considered
// the handshake established. Such an alert means the peer rejected the
// channel, so no media it protects will arrive.
func (e *Endpoint) PeerAlert() (protocol.Alert, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.peerAlert == nil {
		return protocol.Alert{}, false
	}
	return *e.peerAlert, true
}

// Retransmit queues the most recent flight again. Timers that decide when to
// call it belong to the transport driving the endpoint.
func (e *Endpoint) Retransmit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateFailed || len(e.lastFlight) == 0 {
		return fmt.Errorf("%w: nothing to retransmit in state %s", ErrState, e.state)
	}
	e.outbound.Write(e.lastFlight)
	return nil
}

// Profile returns the negotiated protection profile.
func (e *Endpoint) Profile() (srtp.Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateEstablished {
		return 0, fmt.Errorf("%w: profile requested in state %s", ErrState, e.state)
	}
	return e.profile, nil
}

// PeerFingerprint returns the SHA-256 fingerprint of the authenticated peer certificate.
func (e *Endpoint) PeerFingerprint() (identity.Fingerprint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateEstablished {
		return identity.Fingerprint{}, fmt.Errorf("%w: peer fingerprint requested in state %s", ErrState, e.state)
	}
	return e.peerFingerprint, nil
}

// ExportKeyingMaterial derives length bytes bound to label from the
// established session. Both endpoints obtain identical output.
func (e *Endpoint) ExportKeyingMaterial(label string, length int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateEstablished {
		return nil, fmt.Errorf("%w: export requested in state %s", ErrState, e.state)
	}
	return e.ks.export(label, length)
}

// lateAlert records an alert received once established. The local state is
// final, so the alert is only reported.
func (e *Endpoint) lateAlert(rec protocol.Record) {
	fragment := rec.Fragment
	switch rec.Epoch {
	case 0:
	case 1:
		header, err := rec.Header()
		if err == nil {
			fragment, err = e.read.Open(rec.Sequence, rec.Fragment, header)
		}
		if err != nil {
			e.log.Debugf("%s: discarding undecryptable alert after establishment: %v", e.role, err)
			return
		}
	default:
		e.log.Debugf("%s: discarding alert in unknown epoch %d", e.role, rec.Epoch)
		return
	}
	a, err := protocol.ParseAlert(fragment)
	if err != nil {
		e.log.Debugf("%s: discarding malformed alert after establishment: %v", e.role, err)
		return
	}
	e.peerAlert = &a
	e.log.Warnf("%s: peer sent %s alert after the handshake completed, the channel cannot be used", e.role, a.Description)
}

func (e *Endpoint) setState(s State) {
	e.log.Debugf("%s: %s -> %s", e.role, e.state, s)
	e.state = s
}

func (e *Endpoint) establish() {
	e.phase = phaseDone
	e.setState(StateEstablished)
	e.log.Infof("%s: handshake established, profile %s, peer %s", e.role, e.profile, e.peerFingerprint)
	e.opts.Metrics.ObserveHandshake(e.role.String(), time.Since(e.started))
}

// fail moves the endpoint to StateFailed, queuing an alert for locally
// detected errors.
func (e *Endpoint) fail(cause error) error {
	var ae *AlertError
	if !errors.As(cause, &ae) {
		ae = alertErr(protocol.AlertInternalError, cause)
		cause = ae
	}
	if !ae.Remote {
		if err := e.sendAlert(ae.Alert); err != nil {
			e.log.Debugf("%s: could not queue alert: %v", e.role, err)
		}
	}

	kind := ErrHandshakeFailure
	if ae.Alert.Description == protocol.AlertHandshakeFailure {
		kind = ErrConfiguration
	}
	e.err = fmt.Errorf("%w: %w", kind, cause)
	e.setState(StateFailed)
	e.log.Warnf("%s: handshake failed in %s: %v", e.role, e.phase, cause)
	e.opts.Metrics.HandshakeFailed(e.role.String(), ae.Alert.Description.String())
	return e.err
}
