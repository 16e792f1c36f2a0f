package handshake

import (
	"fmt"
	"io"

	"github.com/pion/logging"

	"github.com/TheusHen/dsrtp/dsrtp/identity"
	"github.com/TheusHen/dsrtp/dsrtp/metrics"
	"github.com/TheusHen/dsrtp/dsrtp/srtp"
)

// Options configures an Endpoint. The zero value offers every supported
// profile, accepts any peer certificate and logs through the pion default
// logger factory.
type Options struct {
	// Profiles lists acceptable protection profiles in preference order.
	// A server selects its most preferred profile that the client offered.
	Profiles []srtp.Profile
	// PeerFingerprint pins the SHA-256 fingerprint of the peer certificate.
	// The zero fingerprint disables pinning.
	PeerFingerprint identity.Fingerprint
	// Rand is the entropy source for randoms and key shares; crypto/rand by default.
	Rand io.Reader

	LoggerFactory logging.LoggerFactory
	Metrics       *metrics.Metrics
}

func (o Options) withDefaults() (Options, error) {
	if o.Profiles == nil {
		o.Profiles = srtp.SupportedProfiles()
	}
	if len(o.Profiles) == 0 {
		return o, fmt.Errorf("%w: no protection profiles configured", ErrConfiguration)
	}
	for _, p := range o.Profiles {
		if !p.Valid() {
			return o, fmt.Errorf("%w: %v", ErrConfiguration, p)
		}
	}
	o.Profiles = append([]srtp.Profile(nil), o.Profiles...)
	if o.LoggerFactory == nil {
		o.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	return o, nil
}
