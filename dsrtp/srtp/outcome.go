package srtp

import "errors"

// Outcome classifies the result of a single Protect or Unprotect call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeReplay
	OutcomeAuthFailure
	OutcomeMalformed
	OutcomeUnknownStream
	OutcomeError
)

// OutcomeOf maps an error returned by a Session to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrReplay):
		return OutcomeReplay
	case errors.Is(err, ErrAuthentication):
		return OutcomeAuthFailure
	case errors.Is(err, ErrCrypto):
		return OutcomeMalformed
	case errors.Is(err, ErrUnknownStream):
		return OutcomeUnknownStream
	default:
		return OutcomeError
	}
}

// Dropped reports whether the packet was discarded.
func (o Outcome) Dropped() bool { return o != OutcomeOK }

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeReplay:
		return "replay"
	case OutcomeAuthFailure:
		return "auth_failure"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnknownStream:
		return "unknown_stream"
	default:
		return "error"
	}
}
