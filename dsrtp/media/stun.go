package media

import (
	"errors"
	"fmt"
	"net"

	"github.com/pion/stun/v3"
)

var (
	ErrNotSTUN        = errors.New("media: not a STUN message")
	ErrNotSTUNRequest = errors.New("media: STUN message is not a request")
)

// ParseSTUN decodes a datagram classified as ClassSTUN. The returned message
// does not alias b.
func ParseSTUN(b []byte) (*stun.Message, error) {
	if !stun.IsMessage(b) {
		return nil, ErrNotSTUN
	}
	m := new(stun.Message)
	if err := m.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSTUN, err)
	}
	return m, nil
}

// STUNResponder answers ICE connectivity checks arriving on the media port
// for one short-term credential.
type STUNResponder struct {
	// Password is the local ICE password keying MESSAGE-INTEGRITY.
	Password string
}

// Respond builds the answer to a request seen from addr. A Binding request
// gets a success response with XOR-MAPPED-ADDRESS, MESSAGE-INTEGRITY and
// FINGERPRINT. Other methods get a 500 error response.
func (r STUNResponder) Respond(req *stun.Message, addr *net.UDPAddr) (*stun.Message, error) {
	if req.Type.Class != stun.ClassRequest {
		return nil, fmt.Errorf("%w: %s", ErrNotSTUNRequest, req.Type)
	}
	id := stun.NewTransactionIDSetter(req.TransactionID)
	if req.Type.Method != stun.MethodBinding {
		return stun.Build(id,
			stun.NewType(req.Type.Method, stun.ClassErrorResponse),
			stun.ErrorCodeAttribute{Code: stun.CodeServerError, Reason: []byte("Unimplemented")},
			stun.Fingerprint,
		)
	}
	return stun.Build(id,
		stun.BindingSuccess,
		&stun.XORMappedAddress{IP: addr.IP, Port: addr.Port},
		stun.NewShortTermIntegrity(r.Password),
		stun.Fingerprint,
	)
}

// Verify checks MESSAGE-INTEGRITY and FINGERPRINT when the message carries them.
func (r STUNResponder) Verify(m *stun.Message) error {
	if m.Contains(stun.AttrMessageIntegrity) {
		if err := stun.NewShortTermIntegrity(r.Password).Check(m); err != nil {
			return err
		}
	}
	if m.Contains(stun.AttrFingerprint) {
		if err := stun.Fingerprint.Check(m); err != nil {
			return err
		}
	}
	return nil
}
