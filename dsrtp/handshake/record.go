package handshake

import (
	"bytes"
	"fmt"

	"github.com/TheusHen/dsrtp/dsrtp/protocol"
)

// beginFlight starts a new retransmission unit.
func (e *Endpoint) beginFlight() {
	e.lastFlight = nil
}

// writeRecord frames payload in the current write epoch and queues it.
// Records that belong to a flight are also kept for Retransmit.
func (e *Endpoint) writeRecord(t protocol.ContentType, payload []byte, flight bool) error {
	epoch := e.writeEpoch
	rec := protocol.Record{Type: t, Epoch: epoch, Sequence: e.writeSeq[epoch], Fragment: payload}
	if epoch == 1 {
		// The header covers the sealed length, so frame a placeholder first.
		rec.Fragment = make([]byte, len(payload)+e.write.Overhead())
		header, err := rec.Header()
		if err != nil {
			return err
		}
		rec.Fragment = e.write.Seal(rec.Sequence, payload, header)
	}

	var buf bytes.Buffer
	if err := protocol.WriteRecord(&buf, rec); err != nil {
		return err
	}
	e.writeSeq[epoch]++
	e.outbound.Write(buf.Bytes())
	if flight {
		e.lastFlight = append(e.lastFlight, buf.Bytes()...)
	}
	return nil
}

// sendMessage frames a handshake message, adds it to the transcript and queues it.
func (e *Endpoint) sendMessage(t protocol.HandshakeType, body []byte) error {
	msg, err := protocol.Message{Type: t, Seq: e.sendMsgSeq, Body: body}.Marshal()
	if err != nil {
		return err
	}
	e.sendMsgSeq++
	e.transcript.add(msg)
	e.log.Tracef("%s: sending %s (message_seq %d, epoch %d)", e.role, t, e.sendMsgSeq-1, e.writeEpoch)
	return e.writeRecord(protocol.ContentTypeHandshake, msg, true)
}

func (e *Endpoint) sendAlert(a protocol.Alert) error {
	return e.writeRecord(protocol.ContentTypeAlert, a.Marshal(), false)
}

// handleRecord decrypts and dispatches one inbound record. dup reports a
// handshake message the peer had already sent.
func (e *Endpoint) handleRecord(rec protocol.Record) (dup bool, err error) {
	fragment := rec.Fragment
	switch rec.Epoch {
	case 0:
	case 1:
		if e.read == nil {
			return false, alertf(protocol.AlertUnexpectedMessage, "epoch 1 record before keys were agreed")
		}
		header, err := rec.Header()
		if err != nil {
			return false, alertErr(protocol.AlertDecodeError, err)
		}
		if fragment, err = e.read.Open(rec.Sequence, rec.Fragment, header); err != nil {
			return false, alertErr(protocol.AlertDecryptError, err)
		}
	default:
		return false, alertf(protocol.AlertDecodeError, "unknown epoch %d", rec.Epoch)
	}

	if rec.Type == protocol.ContentTypeAlert {
		a, err := protocol.ParseAlert(fragment)
		if err != nil {
			return false, alertErr(protocol.AlertDecodeError, err)
		}
		return false, &AlertError{Alert: a, Remote: true}
	}
	return e.handleMessage(rec.Epoch, fragment)
}

func (e *Endpoint) handleMessage(epoch uint16, raw []byte) (bool, error) {
	msg, err := protocol.ParseMessage(raw)
	if err != nil {
		return false, alertErr(protocol.AlertDecodeError, err)
	}
	if msg.Seq < e.recvMsgSeq {
		e.log.Debugf("%s: ignoring duplicate %s (message_seq %d)", e.role, msg.Type, msg.Seq)
		return true, nil
	}
	if msg.Seq > e.recvMsgSeq {
		return false, unexpected("message_seq %d, expected %d", msg.Seq, e.recvMsgSeq)
	}

	want, wantEpoch, ok := e.expected()
	if !ok || msg.Type != want {
		return false, unexpected("%s in %s", msg.Type, e.phase)
	}
	if epoch != wantEpoch {
		return false, unexpected("%s in epoch %d", msg.Type, epoch)
	}
	e.recvMsgSeq++
	e.log.Tracef("%s: received %s (message_seq %d)", e.role, msg.Type, msg.Seq)

	switch e.phase {
	case phaseClientHello:
		err = e.handleClientHello(msg, raw)
	case phaseServerHello:
		err = e.handleServerHello(msg, raw)
	case phaseCertificate:
		err = e.handleCertificate(msg, raw)
	case phaseCertificateVerify:
		err = e.handleCertificateVerify(msg, raw)
	case phaseFinished:
		err = e.handleFinished(msg, raw)
	}
	return false, err
}

func unexpected(format string, args ...any) *AlertError {
	return alertErr(protocol.AlertUnexpectedMessage,
		fmt.Errorf("%w: %s", protocol.ErrUnexpectedMessage, fmt.Sprintf(format, args...)))
}

// expected returns the next message type and the epoch it must arrive in.
func (e *Endpoint) expected() (protocol.HandshakeType, uint16, bool) {
	switch e.phase {
	case phaseClientHello:
		return protocol.HandshakeTypeClientHello, 0, true
	case phaseServerHello:
		return protocol.HandshakeTypeServerHello, 0, true
	case phaseCertificate:
		return protocol.HandshakeTypeCertificate, 1, true
	case phaseCertificateVerify:
		return protocol.HandshakeTypeCertificateVerify, 1, true
	case phaseFinished:
		return protocol.HandshakeTypeFinished, 1, true
	default:
		return 0, 0, false
	}
}
