package pump

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/TheusHen/dsrtp/dsrtp/handshake"
	"github.com/TheusHen/dsrtp/dsrtp/identity"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
)

func newEndpoints(t *testing.T, copts, sopts handshake.Options) (*handshake.Endpoint, *handshake.Endpoint) {
	t.Helper()
	cid, err := identity.Generate("client")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	sid, err := identity.Generate("server")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c, err := handshake.New(handshake.RoleClient, cid, copts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := handshake.New(handshake.RoleServer, sid, sopts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, s
}

func TestRunCompletes(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	res, err := Run(context.Background(), c, s, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RoundTrips > 4 {
		t.Fatalf("took %d round trips", res.RoundTrips)
	}
	if res.Datagrams[AToB] == 0 || res.Datagrams[BToA] == 0 || res.Bytes[AToB] == 0 || res.Bytes[BToA] == 0 {
		t.Fatalf("unexpected traffic accounting %+v", res)
	}

	ck, err := srtp.ExtractKeyMaterial(c)
	if err != nil {
		t.Fatalf("client ExtractKeyMaterial: %v", err)
	}
	sk, err := srtp.ExtractKeyMaterial(s)
	if err != nil {
		t.Fatalf("server ExtractKeyMaterial: %v", err)
	}
	if !bytes.Equal(ck.Local(true).Key, sk.Remote(false).Key) || !bytes.Equal(ck.Local(true).Salt, sk.Remote(false).Salt) {
		t.Fatalf("client send keys differ from server receive keys")
	}
	if !bytes.Equal(ck.Remote(true).Key, sk.Local(false).Key) {
		t.Fatalf("server send keys differ from client receive keys")
	}
	if bytes.Equal(ck.Client.Key, ck.Server.Key) {
		t.Fatalf("both directions share a key")
	}
}

func TestRunServerFirst(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	if _, err := Run(context.Background(), s, c, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !c.IsEstablished() || !s.IsEstablished() {
		t.Fatalf("not established")
	}
}

func TestRunSmallMTU(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	var largest int
	_, err := Run(context.Background(), c, s, Options{
		MTU: 64,
		Intercept: func(d Direction, b []byte) []byte {
			if len(b) > largest {
				largest = len(b)
			}
			return b
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if largest > 64 {
		t.Fatalf("datagram of %d bytes exceeds MTU", largest)
	}
}

func TestRunTamperedFlight(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	tampered := false
	_, err := Run(context.Background(), c, s, Options{
		MTU: 1 << 16,
		Intercept: func(d Direction, b []byte) []byte {
			if d == BToA && !tampered {
				tampered = true
				b = append([]byte(nil), b...)
				b[len(b)-1] ^= 0x80
			}
			return b
		},
	})
	if !errors.Is(err, handshake.ErrHandshakeFailure) {
		t.Fatalf("expected ErrHandshakeFailure, got %v", err)
	}
	if c.State() != handshake.StateFailed || s.State() != handshake.StateFailed {
		t.Fatalf("expected both failed, got client %s server %s", c.State(), s.State())
	}
}

func TestRunNoCommonProfile(t *testing.T) {
	c, s := newEndpoints(t,
		handshake.Options{Profiles: []srtp.Profile{srtp.ProfileAES128CMHMACSHA1_32}},
		handshake.Options{Profiles: []srtp.Profile{srtp.ProfileAES128CMHMACSHA1_80}})
	_, err := Run(context.Background(), c, s, Options{})
	if !errors.Is(err, handshake.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if c.State() != handshake.StateFailed || s.State() != handshake.StateFailed {
		t.Fatalf("expected both failed, got client %s server %s", c.State(), s.State())
	}
}

func TestRunDuplicateDelivery(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	_, err := Run(context.Background(), c, s, Options{
		Intercept: func(d Direction, b []byte) []byte {
			return append(append([]byte(nil), b...), b...)
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunAllDropped(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	res, err := Run(context.Background(), c, s, Options{
		MaxRoundTrips: 3,
		Intercept:     func(Direction, []byte) []byte { return nil },
	})
	if !errors.Is(err, ErrMaxRoundTrips) {
		t.Fatalf("expected ErrMaxRoundTrips, got %v", err)
	}
	if res.RoundTrips != 3 || res.Datagrams[AToB] != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunContextCanceled(t *testing.T) {
	c, s := newEndpoints(t, handshake.Options{}, handshake.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, c, s, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
