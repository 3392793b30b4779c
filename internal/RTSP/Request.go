package RTSP

import (
	"bufio"
	"fmt"
	"io"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type Request struct {
	Method  string
	URL     string
	Version string
	Header  map[string]string
	Body    string
}

func NewRequest(method, url string) *Request {
	return &Request{
		Method:  method,
		URL:     url,
		Version: RTSP_VERSION,
		Header:  make(map[string]string),
	}
}

// SetHeader stores val under the canonical form of key.
func (r *Request) SetHeader(key, val string) *Request {
	if r.Header == nil {
		r.Header = make(map[string]string)
	}
	r.Header[canonicalKey(key)] = val
	return r
}

// ReadRequest parses one request from r. The fake servers in the client tests
// are built on it.
func ReadRequest(r *bufio.Reader) (req Request, err error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return
	}
	//Request-Line
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) != 3 {
		err = errors.Errorf("request line format error: %q", line)
		return
	}
	req.Method = parts[0]
	req.URL = parts[1]
	req.Version = parts[2]
	req.Header = make(map[string]string)
	for {
		line, err = r.ReadString('\n')
		if err != nil {
			err = errors.Wrap(err, "read request header")
			return
		}
		if len(strings.TrimSpace(line)) == 0 {
			break
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			err = errors.Errorf("request header format error: %q", line)
			return
		}
		req.Header[canonicalKey(parts[0])] = strings.TrimSpace(parts[1])
	}
	body, err := readBody(r, req.Header)
	if err != nil {
		return
	}
	req.Body = body
	return
}

func (r *Request) String() string {
	var str strings.Builder
	_, _ = r.WriteTo(&str)
	return str.String()
}

// WriteTo encodes the request. CSeq leads the header block, the remaining
// headers follow in name order so the encoding is stable.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	version := r.Version
	if version == "" {
		version = RTSP_VERSION
	}
	var str strings.Builder
	str.WriteString(fmt.Sprintf("%s %s %s\r\n", r.Method, r.URL, version))
	if v, ok := r.Header[CSeq]; ok {
		str.WriteString(fmt.Sprintf("%s: %s\r\n", CSeq, v))
	}
	keys := make([]string, 0, len(r.Header))
	for key := range r.Header {
		if key == CSeq || key == ContentLength {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		str.WriteString(fmt.Sprintf("%s: %s\r\n", key, r.Header[key]))
	}
	if len(r.Body) > 0 {
		str.WriteString(fmt.Sprintf("%s: %d\r\n", ContentLength, len(r.Body)))
	}
	str.WriteString("\r\n")
	str.WriteString(r.Body)
	n, err := io.WriteString(w, str.String())
	return int64(n), err
}

func (r *Request) GetLength() int {
	v, err := strconv.ParseInt(r.Header[ContentLength], 10, 64)
	if err != nil {
		return 0
	} else {
		return int(v)
	}
}

// canonicalKey folds header names the MIME way, except CSeq which RTSP spells
// with two capitals.
func canonicalKey(key string) string {
	key = textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(key))
	if key == "Cseq" {
		return CSeq
	}
	return key
}

func readBody(r *bufio.Reader, header map[string]string) (string, error) {
	contentLengthStr, ok := header[ContentLength]
	if !ok {
		return "", nil
	}
	contentLength, err := strconv.Atoi(contentLengthStr)
	if err != nil || contentLength < 0 {
		return "", errors.Errorf("content-length format error: %q", contentLengthStr)
	}
	if contentLength > MaxBodySize {
		return "", errors.Errorf("content-length %d exceeds %d", contentLength, MaxBodySize)
	}
	if contentLength == 0 {
		return "", nil
	}
	data := make([]byte, contentLength)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", errors.Wrap(err, "read body")
	}
	return string(data), nil
}
