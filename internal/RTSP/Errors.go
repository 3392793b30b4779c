package RTSP

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ErrorCode classifies a failed round trip. The numbering is stable so a
// diagnostic line can be grepped for.
type ErrorCode int

const (
	CodeOK                  ErrorCode = 0
	CodeUnsupportedProtocol ErrorCode = 1
	CodeURLMalformat        ErrorCode = 3
	CodeCouldntResolveHost  ErrorCode = 6
	CodeCouldntConnect      ErrorCode = 7
	CodeStatusError         ErrorCode = 22
	CodeWriteError          ErrorCode = 23
	CodeOperationTimedout   ErrorCode = 28
	CodeAborted             ErrorCode = 42
	CodeSendError           ErrorCode = 55
	CodeRecvError           ErrorCode = 56
	CodeRtspCSeqError       ErrorCode = 85
	CodeRtspSessionError    ErrorCode = 86
)

var codeNames = map[ErrorCode]string{
	CodeOK:                  "ok",
	CodeUnsupportedProtocol: "unsupported protocol",
	CodeURLMalformat:        "url malformed",
	CodeCouldntResolveHost:  "could not resolve host",
	CodeCouldntConnect:      "could not connect",
	CodeStatusError:         "server returned error status",
	CodeWriteError:          "write body failed",
	CodeOperationTimedout:   "operation timed out",
	CodeAborted:             "aborted",
	CodeSendError:           "send failed",
	CodeRecvError:           "receive failed",
	CodeRtspCSeqError:       "cseq mismatch",
	CodeRtspSessionError:    "session mismatch",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code %d", int(c))
}

type Error struct {
	Op         string
	Code       ErrorCode
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s (%d)", e.Op, e.Code, int(e.Code))
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Cause() error { return e.Err }

// CodeOf returns the code carried by err, CodeOK for nil and CodeRecvError for
// errors that did not come from this package.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeRecvError
}

// StatusOf returns the RTSP status attached to err, 0 when there is none.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func newError(op string, code ErrorCode, err error) *Error {
	return &Error{Op: op, Code: code, Err: err}
}

// ioError picks the code for a failed socket operation; fallback is used when
// the failure is neither a timeout nor a cancellation.
func ioError(ctx context.Context, op string, fallback ErrorCode, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return newError(op, CodeOperationTimedout, ctxErr)
		}
		return newError(op, CodeAborted, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(op, CodeOperationTimedout, err)
	}
	return newError(op, fallback, err)
}

func dialError(ctx context.Context, op string, err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newError(op, CodeCouldntResolveHost, err)
	}
	return ioError(ctx, op, CodeCouldntConnect, err)
}
