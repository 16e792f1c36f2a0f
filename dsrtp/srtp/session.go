package srtp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/rtp"

	"github.com/TheusHen/dsrtp/dsrtp/metrics"
)

// maxIndex is the largest 48-bit packet index a master key may protect.
const maxIndex = 1<<48 - 1

// ErrIndexExhausted is returned once a stream has used every packet index
// available under its master key.
var ErrIndexExhausted = errors.New("srtp: packet index space exhausted")

// Direction says whether a Session protects outbound or verifies inbound packets.
type Direction int

const (
	Send Direction = iota
	Receive
)

func (d Direction) String() string {
	switch d {
	case Send:
		return "send"
	case Receive:
		return "receive"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// StreamSelector picks which SSRCs a Session accepts. The zero value is AnyStream.
type StreamSelector struct {
	ssrc uint32
	set  bool
}

// AnyStream accepts every SSRC, keeping independent state per stream.
var AnyStream = StreamSelector{}

// Stream accepts only the given SSRC.
func Stream(ssrc uint32) StreamSelector {
	return StreamSelector{ssrc: ssrc, set: true}
}

// SSRC returns the selected SSRC, or false for the wildcard.
func (s StreamSelector) SSRC() (uint32, bool) { return s.ssrc, s.set }

func (s StreamSelector) String() string {
	if !s.set {
		return "any"
	}
	return fmt.Sprintf("%#08x", s.ssrc)
}

// SessionOptions configures a Session. The zero value accepts any stream,
// uses a DefaultReplayWindow window and numbers outbound packets from 0.
type SessionOptions struct {
	StreamID StreamSelector
	// LockStream narrows a wildcard StreamID to the first stream that is
	// successfully processed.
	LockStream bool
	// ReplayWindow is the number of indices tracked per stream on receive.
	// Values below 64 are raised to 64.
	ReplayWindow int
	// InitialSequence is the first sequence number Protect writes into each
	// new outbound stream. Later packets take the next value of the counter.
	InitialSequence uint16
	// PreserveSequence makes Protect keep the caller's sequence number and
	// infer the rollover counter from it instead of numbering packets.
	PreserveSequence bool

	LoggerFactory logging.LoggerFactory
	Metrics       *metrics.Metrics
}

// Stats counts the packets a Session has processed.
type Stats struct {
	Streams       int
	Processed     uint64
	Replayed      uint64
	AuthFailures  uint64
	Malformed     uint64
	UnknownStream uint64
}

type streamState struct {
	top    uint64
	window *replayWindow
}

// Session is one direction of protected media keyed by a single master key.
// It is safe for concurrent use.
type Session struct {
	dir       Direction
	transform *Transform
	opts      SessionOptions
	log       logging.LeveledLogger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	selector StreamSelector
	streams  map[uint32]*streamState
	stats    Stats
}

// NewSession creates a session for dir keyed with keys.
func NewSession(dir Direction, profile Profile, keys SessionKeys, opts SessionOptions) (*Session, error) {
	if dir != Send && dir != Receive {
		return nil, fmt.Errorf("%w: %v", ErrDirection, dir)
	}
	t, err := NewTransform(profile, keys.Key, keys.Salt)
	if err != nil {
		return nil, err
	}
	if opts.ReplayWindow <= 0 {
		opts.ReplayWindow = DefaultReplayWindow
	}
	if opts.ReplayWindow < minReplayWindow {
		opts.ReplayWindow = minReplayWindow
	}
	lf := opts.LoggerFactory
	if lf == nil {
		lf = logging.NewDefaultLoggerFactory()
	}
	return &Session{
		dir:       dir,
		transform: t,
		opts:      opts,
		log:       lf.NewLogger("srtp"),
		metrics:   opts.Metrics,
		selector:  opts.StreamID,
		streams:   make(map[uint32]*streamState),
	}, nil
}

func (s *Session) Direction() Direction { return s.dir }
func (s *Session) Profile() Profile     { return s.transform.Profile() }
func (s *Session) Overhead() int        { return s.transform.Overhead() }

// Protect writes the stream's next sequence number into a copy of packet, then
// encrypts and authenticates it. The input is not modified.
func (s *Session) Protect(packet []byte) ([]byte, error) {
	if s.dir != Send {
		return nil, ErrDirection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, h, err := s.protect(packet)
	if err != nil {
		return nil, s.drop(h, err)
	}
	return out, nil
}

func (s *Session) protect(packet []byte) ([]byte, rtp.Header, error) {
	var h rtp.Header
	n, err := h.Unmarshal(packet)
	if err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	st, err := s.lookup(h.SSRC)
	if err != nil {
		return nil, h, err
	}

	var index uint64
	switch {
	case s.opts.PreserveSequence && st != nil:
		index = packetIndex(estimateROC(st.top, h.SequenceNumber), h.SequenceNumber)
	case s.opts.PreserveSequence:
		index = uint64(h.SequenceNumber)
	case st != nil:
		index = st.top + 1
	default:
		index = uint64(s.opts.InitialSequence)
	}
	if index > maxIndex {
		return nil, h, ErrIndexExhausted
	}
	seq := uint16(index)
	if !s.opts.PreserveSequence {
		packet = append([]byte(nil), packet...)
		binary.BigEndian.PutUint16(packet[2:4], seq)
		h.SequenceNumber = seq
	}

	out := s.transform.protect(packet, n, h.SSRC, seq, uint32(index>>16))
	s.commit(h.SSRC, st, index)
	return out, h, nil
}

// Unprotect verifies and decrypts an SRTP packet. A rejected packet leaves
// the session state untouched.
func (s *Session) Unprotect(packet []byte) ([]byte, error) {
	if s.dir != Receive {
		return nil, ErrDirection
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, h, err := s.unprotect(packet)
	if err != nil {
		return nil, s.drop(h, err)
	}
	return out, nil
}

func (s *Session) unprotect(packet []byte) ([]byte, rtp.Header, error) {
	var h rtp.Header
	tagLen := s.transform.tagLen
	if len(packet) < tagLen {
		return nil, h, fmt.Errorf("%w: %d bytes is shorter than the tag", ErrCrypto, len(packet))
	}
	n, err := h.Unmarshal(packet[:len(packet)-tagLen])
	if err != nil {
		return nil, h, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	st, err := s.lookup(h.SSRC)
	if err != nil {
		return nil, h, err
	}

	index := uint64(h.SequenceNumber)
	if st != nil {
		index = packetIndex(estimateROC(st.top, h.SequenceNumber), h.SequenceNumber)
		if err := st.window.check(index); err != nil {
			return nil, h, err
		}
	}

	out, err := s.transform.unprotect(packet, n, h.SSRC, h.SequenceNumber, uint32(index>>16))
	if err != nil {
		return nil, h, err
	}
	st = s.commit(h.SSRC, st, index)
	st.window.accept(index)
	return out, h, nil
}

// RolloverCounter returns the current rollover counter of a stream.
func (s *Session) RolloverCounter(ssrc uint32) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[ssrc]
	if !ok {
		return 0, false
	}
	return uint32(st.top >> 16), true
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Streams = len(s.streams)
	return st
}

// lookup returns the state of a known stream, nil for a stream the selector
// admits but has not been seen yet, or ErrUnknownStream.
func (s *Session) lookup(ssrc uint32) (*streamState, error) {
	if want, ok := s.selector.SSRC(); ok && want != ssrc {
		return nil, fmt.Errorf("%w: ssrc %#08x, session bound to %#08x", ErrUnknownStream, ssrc, want)
	}
	return s.streams[ssrc], nil
}

func (s *Session) commit(ssrc uint32, st *streamState, index uint64) *streamState {
	if st == nil {
		st = &streamState{top: index}
		if s.dir == Receive {
			st.window = newReplayWindow(s.opts.ReplayWindow)
		}
		s.streams[ssrc] = st
		if s.opts.LockStream {
			if _, ok := s.selector.SSRC(); !ok {
				s.selector = Stream(ssrc)
				s.log.Debugf("%s session locked to ssrc %#08x", s.dir, ssrc)
			}
		}
	} else if index > st.top {
		st.top = index
	}
	s.stats.Processed++
	s.metrics.Packet(s.dir.String(), OutcomeOK.String())
	return st
}

// drop records a rejected packet. s.mu must be held.
func (s *Session) drop(h rtp.Header, err error) error {
	o := OutcomeOf(err)
	switch o {
	case OutcomeReplay:
		s.stats.Replayed++
	case OutcomeAuthFailure:
		s.stats.AuthFailures++
	case OutcomeMalformed:
		s.stats.Malformed++
	case OutcomeUnknownStream:
		s.stats.UnknownStream++
	}
	s.metrics.Packet(s.dir.String(), o.String())
	s.log.Debugf("%s: dropping packet ssrc=%#08x seq=%d: %v", s.dir, h.SSRC, h.SequenceNumber, err)
	return err
}
