package RTSP

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Response struct {
	Version    string
	StatusCode int
	Status     string
	Header     map[string]string
	Body       string

	// RawHeader is the status line and header block exactly as received,
	// including the terminating blank line.
	RawHeader []byte
}

func ReadResponse(r *bufio.Reader) (resp Response, err error) {
	respLine, err := r.ReadString('\n')
	if err != nil {
		return resp, err
	}
	raw := []byte(respLine)
	parts := strings.SplitN(strings.TrimSpace(respLine), " ", 3)
	if len(parts) < 2 {
		err = errors.Errorf("response line format error: %q", respLine)
		return
	}
	//Response-Line
	resp.Version = parts[0]
	if !strings.HasPrefix(resp.Version, "RTSP/") {
		err = errors.Errorf("response version format error: %q", resp.Version)
		return
	}
	resp.StatusCode, err = strconv.Atoi(parts[1])
	if err != nil {
		err = errors.Wrap(err, "response status format error")
		return
	}
	if len(parts) == 3 {
		resp.Status = parts[2]
	}
	resp.Header = make(map[string]string)
	//Response-Header
	for {
		var line string
		line, err = r.ReadString('\n')
		if err != nil {
			err = errors.Wrap(err, "read response header")
			return
		}
		raw = append(raw, line...)
		if len(strings.TrimSpace(line)) == 0 {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			err = errors.Errorf("response header format error: %q", line)
			return
		}
		resp.Header[canonicalKey(parts[0])] = strings.TrimSpace(parts[1])
	}
	resp.RawHeader = raw
	//Response-Body
	resp.Body, err = readBody(r, resp.Header)
	return
}

func GenerateResponse(code int, desc string, header map[string]string, body string) (resp Response) {
	resp.Version = RTSP_VERSION
	resp.StatusCode = code
	resp.Status = desc
	resp.Header = header
	resp.Body = body
	return
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Session returns the session id without its parameters, "" when absent.
func (r *Response) Session() string {
	val, ok := r.Header[SessionID]
	if !ok {
		return ""
	}
	if i := strings.IndexByte(val, ';'); i >= 0 {
		val = val[:i]
	}
	return strings.TrimSpace(val)
}

// CloseRequested reports whether the server asked to drop the connection.
func (r *Response) CloseRequested() bool {
	return strings.EqualFold(r.Header[Connection], "close")
}

func (r *Response) String() string {
	var str strings.Builder
	str.WriteString(fmt.Sprintf("%s %d %s\r\n", r.Version, r.StatusCode, r.Status))
	if v, ok := r.Header[CSeq]; ok {
		str.WriteString(fmt.Sprintf("%s: %s\r\n", CSeq, v))
	}
	for key, value := range r.Header {
		if key == CSeq || key == ContentLength {
			continue
		}
		str.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	if len(r.Body) > 0 {
		str.WriteString(fmt.Sprintf("%s: %d\r\n", ContentLength, len(r.Body)))
	}
	str.WriteString("\r\n")
	str.WriteString(r.Body)
	return str.String()
}
