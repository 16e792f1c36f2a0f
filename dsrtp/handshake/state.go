package handshake

import "fmt"

type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// State is the externally visible progress of an Endpoint.
// Established and Failed are final; Failed is never left.
type State int

const (
	StateInitial State = iota
	StateInProgress
	StateEstablished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateInProgress:
		return "in_progress"
	case StateEstablished:
		return "established"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// phase is the next message an endpoint expects from its peer.
type phase int

const (
	phaseStart phase = iota
	phaseClientHello
	phaseServerHello
	phaseCertificate
	phaseCertificateVerify
	phaseFinished
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseStart:
		return "start"
	case phaseClientHello:
		return "wait_client_hello"
	case phaseServerHello:
		return "wait_server_hello"
	case phaseCertificate:
		return "wait_certificate"
	case phaseCertificateVerify:
		return "wait_certificate_verify"
	case phaseFinished:
		return "wait_finished"
	case phaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
