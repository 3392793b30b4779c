package RTSP

const (
	RTSP_VERSION = "RTSP/1.0"
	DefaultPort  = 554
)

const (
	OPTIONS = "OPTIONS"

	DESCRIBE = "DESCRIBE"

	ANNOUNCE = "ANNOUNCE"

	SETUP = "SETUP"

	PLAY = "PLAY"

	PAUSE = "PAUSE"

	RECORD = "RECORD"

	REDIRECT = "REDIRECT"

	TEARDOWN = "TEARDOWN"
)

const (
	ContentLength    = "Content-Length"
	ContentType      = "Content-Type"
	UserAgent        = "User-Agent"
	SessionID        = "Session"
	WWW_Authenticate = "Www-Authenticate"
	Accept           = "Accept"
	Transport        = "Transport"
	Range            = "Range"
	CSeq             = "CSeq"
	Public           = "Public"
	Connection       = "Connection"
)

// MagicChar starts an interleaved binary frame on the control connection.
const MagicChar = 0x24

// MaxBodySize bounds Content-Length so a bogus header cannot exhaust memory.
const MaxBodySize = 4 << 20
