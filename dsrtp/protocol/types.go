package protocol

// Version1 is the only handshake protocol version spoken.
const Version1 uint16 = 1

// ContentType is the first byte of every record. Both values lie in 20..63 so
// that RFC 5764 demultiplexing classifies handshake traffic as DTLS.
type ContentType uint8

const (
	ContentTypeAlert     ContentType = 21
	ContentTypeHandshake ContentType = 22
)

func (t ContentType) String() string {
	switch t {
	case ContentTypeAlert:
		return "ALERT"
	case ContentTypeHandshake:
		return "HANDSHAKE"
	default:
		return "UNKNOWN"
	}
}

type HandshakeType uint8

const (
	HandshakeTypeClientHello       HandshakeType = 1
	HandshakeTypeServerHello       HandshakeType = 2
	HandshakeTypeCertificate       HandshakeType = 11
	HandshakeTypeCertificateVerify HandshakeType = 15
	HandshakeTypeFinished          HandshakeType = 20
)

func (t HandshakeType) String() string {
	switch t {
	case HandshakeTypeClientHello:
		return "CLIENT_HELLO"
	case HandshakeTypeServerHello:
		return "SERVER_HELLO"
	case HandshakeTypeCertificate:
		return "CERTIFICATE"
	case HandshakeTypeCertificateVerify:
		return "CERTIFICATE_VERIFY"
	case HandshakeTypeFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

type AlertLevel uint8

const (
	AlertLevelWarning AlertLevel = 1
	AlertLevelFatal   AlertLevel = 2
)

type AlertDescription uint8

const (
	AlertCloseNotify       AlertDescription = 0
	AlertUnexpectedMessage AlertDescription = 10
	AlertHandshakeFailure  AlertDescription = 40
	AlertBadCertificate    AlertDescription = 42
	AlertIllegalParameter  AlertDescription = 47
	AlertDecodeError       AlertDescription = 50
	AlertDecryptError      AlertDescription = 51
	AlertProtocolVersion   AlertDescription = 70
	AlertInternalError     AlertDescription = 80
)

func (d AlertDescription) String() string {
	switch d {
	case AlertCloseNotify:
		return "close_notify"
	case AlertUnexpectedMessage:
		return "unexpected_message"
	case AlertHandshakeFailure:
		return "handshake_failure"
	case AlertBadCertificate:
		return "bad_certificate"
	case AlertIllegalParameter:
		return "illegal_parameter"
	case AlertDecodeError:
		return "decode_error"
	case AlertDecryptError:
		return "decrypt_error"
	case AlertProtocolVersion:
		return "protocol_version"
	case AlertInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}
