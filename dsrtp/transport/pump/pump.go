// Package pump drives two handshake endpoints against each other in memory,
// standing in for the datagram network between them.
package pump

import (
	"context"
	"errors"
	"fmt"

	"github.com/pion/logging"
)

const (
	DefaultMTU           = 1024
	DefaultMaxRoundTrips = 5
)

var ErrMaxRoundTrips = errors.New("pump: handshake did not complete within the round trip limit")

// Peer is the byte-buffer surface of a handshake endpoint.
type Peer interface {
	Advance() error
	DrainOutbound(max int) []byte
	FeedInbound(b []byte)
	IsEstablished() bool
}

// Direction names the path a datagram travels.
type Direction int

const (
	AToB Direction = iota
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "a->b"
	}
	return "b->a"
}

// Options configures Run. Zero values select the defaults.
type Options struct {
	// MTU bounds the size of each datagram handed to a peer.
	MTU           int
	MaxRoundTrips int
	// Intercept sees every datagram before delivery. It may return a
	// modified copy, or nil to drop the datagram.
	Intercept     func(d Direction, datagram []byte) []byte
	LoggerFactory logging.LoggerFactory
}

// Result describes the traffic of one Run.
type Result struct {
	RoundTrips int
	Datagrams  [2]int
	Bytes      [2]int
}

type pump struct {
	opts Options
	log  logging.LeveledLogger
	res  Result
}

// Run alternates a and b until both are established, either fails, the
// round trip limit is reached or ctx is done.
func Run(ctx context.Context, a, b Peer, opts Options) (Result, error) {
	if opts.MTU <= 0 {
		opts.MTU = DefaultMTU
	}
	if opts.MaxRoundTrips <= 0 {
		opts.MaxRoundTrips = DefaultMaxRoundTrips
	}
	if opts.LoggerFactory == nil {
		opts.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	p := &pump{opts: opts, log: opts.LoggerFactory.NewLogger("pump")}

	for round := 1; round <= opts.MaxRoundTrips; round++ {
		if err := ctx.Err(); err != nil {
			return p.res, err
		}
		p.res.RoundTrips = round

		if err := p.step(a, b, AToB); err != nil {
			return p.res, fmt.Errorf("pump: peer a failed in round %d: %w", round, err)
		}
		if a.IsEstablished() && b.IsEstablished() {
			return p.res, nil
		}
		if err := p.step(b, a, BToA); err != nil {
			return p.res, fmt.Errorf("pump: peer b failed in round %d: %w", round, err)
		}
		if a.IsEstablished() && b.IsEstablished() {
			return p.res, nil
		}
		p.log.Debugf("round %d done: %d/%d datagrams", round, p.res.Datagrams[AToB], p.res.Datagrams[BToA])
	}
	return p.res, fmt.Errorf("%w (%d)", ErrMaxRoundTrips, opts.MaxRoundTrips)
}

// step advances from and delivers its output to to. When from fails, its
// alert is still delivered and processed so both sides observe the failure.
func (p *pump) step(from, to Peer, d Direction) error {
	err := from.Advance()
	p.transfer(from, to, d)
	if err != nil {
		if perr := to.Advance(); perr != nil {
			p.log.Debugf("%s: receiver also failed: %v", d, perr)
		}
	}
	return err
}

func (p *pump) transfer(from, to Peer, d Direction) {
	for {
		datagram := from.DrainOutbound(p.opts.MTU)
		if len(datagram) == 0 {
			return
		}
		if p.opts.Intercept != nil {
			if datagram = p.opts.Intercept(d, datagram); datagram == nil {
				p.log.Tracef("%s: datagram dropped by interceptor", d)
				continue
			}
		}
		p.res.Datagrams[d]++
		p.res.Bytes[d] += len(datagram)
		to.FeedInbound(datagram)
	}
}
