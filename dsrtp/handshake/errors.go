package handshake

import (
	"errors"
	"fmt"

	"github.com/TheusHen/dsrtp/dsrtp/protocol"
)

var (
	// ErrConfiguration reports unusable local settings, or peers whose
	// protection profiles do not intersect.
	ErrConfiguration = errors.New("handshake: configuration error")
	// ErrState reports an operation that is not valid in the current state.
	ErrState = errors.New("handshake: invalid state")
	// ErrHandshakeFailure reports a handshake that ended in the Failed state.
	ErrHandshakeFailure = errors.New("handshake: failure")
	ErrExportLength     = errors.New("handshake: invalid export length")
)

// AlertError is a failure that was signalled with, or caused by, an alert.
type AlertError struct {
	Alert protocol.Alert
	// Remote is true when the peer sent the alert.
	Remote bool
	cause  error
}

func (e *AlertError) Error() string {
	who := "local"
	if e.Remote {
		who = "peer"
	}
	if e.cause != nil {
		return fmt.Sprintf("%s alert %s: %v", who, e.Alert.Description, e.cause)
	}
	return fmt.Sprintf("%s alert %s", who, e.Alert.Description)
}

func (e *AlertError) Unwrap() error { return e.cause }

func alertf(desc protocol.AlertDescription, format string, args ...any) *AlertError {
	return &AlertError{
		Alert: protocol.Alert{Level: protocol.AlertLevelFatal, Description: desc},
		cause: fmt.Errorf(format, args...),
	}
}

func alertErr(desc protocol.AlertDescription, err error) *AlertError {
	return &AlertError{
		Alert: protocol.Alert{Level: protocol.AlertLevelFatal, Description: desc},
		cause: err,
	}
}
