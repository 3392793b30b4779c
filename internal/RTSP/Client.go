package RTSP

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"git.hub.com/wangyl/RtspRequest/pkg/Logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Version of the transport client, printed by the command on startup.
const Version = "1.0.0"

type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// RtspClient owns one control connection to one server. Requests are
// strictly sequential; the client is not safe for concurrent use.
type RtspClient struct {
	Url          *url.URL
	Agent        string
	DefaultPort  int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Dial         DialFunc

	// HeaderWriter receives the status line and headers of every response.
	HeaderWriter io.Writer
	// BodyWriter receives response bodies when Do is given no writer.
	BodyWriter io.Writer

	logger    *zap.Logger
	conn      *ConnRich
	connRW    *bufio.ReadWriter
	seq       int
	sessionID string
	closed    bool
}

type ClientOption func(c *RtspClient)

func WithUserAgent(agent string) ClientOption {
	return func(c *RtspClient) {
		c.Agent = agent
	}
}

func WithDefaultPort(port int) ClientOption {
	return func(c *RtspClient) {
		c.DefaultPort = port
	}
}

func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *RtspClient) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

func WithDialer(dial DialFunc) ClientOption {
	return func(c *RtspClient) {
		c.Dial = dial
	}
}

func WithHeaderWriter(w io.Writer) ClientOption {
	return func(c *RtspClient) {
		c.HeaderWriter = w
	}
}

func WithBodyWriter(w io.Writer) ClientOption {
	return func(c *RtspClient) {
		c.BodyWriter = w
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *RtspClient) {
		c.logger = l
	}
}

// NewRtspClient validates rawURL and prepares a client. No connection is made
// until the first request.
func NewRtspClient(rawURL string, opts ...ClientOption) (*RtspClient, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newError("init", CodeURLMalformat, err)
	}
	if !strings.EqualFold(u.Scheme, "rtsp") {
		return nil, newError("init", CodeUnsupportedProtocol, errors.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, newError("init", CodeURLMalformat, errors.Errorf("no host in %q", rawURL))
	}
	u.User = nil
	c := &RtspClient{
		Url:          u,
		DefaultPort:  DefaultPort,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		HeaderWriter: os.Stdout,
		BodyWriter:   os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Dial == nil {
		c.Dial = new(net.Dialer).DialContext
	}
	if c.logger == nil {
		c.logger = Logger.GetLogger()
	}
	c.logger = c.logger.With(zap.String("rtsp_addr", c.Url.String()))
	return c, nil
}

// Addr is the host:port the client dials.
func (c *RtspClient) Addr() string {
	port := c.Url.Port()
	if port == "" {
		port = strconv.Itoa(c.DefaultPort)
	}
	return net.JoinHostPort(c.Url.Hostname(), port)
}

// SessionID is the id announced by the server, "" before SETUP or after a
// successful TEARDOWN.
func (c *RtspClient) SessionID() string {
	return c.sessionID
}

// Do performs one round trip. The response headers go to HeaderWriter, the
// body to body or BodyWriter when body is nil. A non-2xx status is returned as
// an *Error with CodeStatusError after headers and body have been written.
func (c *RtspClient) Do(ctx context.Context, req *Request, body io.Writer) (resp Response, err error) {
	op := req.Method
	if c.closed {
		return resp, newError(op, CodeAborted, errors.New("client closed"))
	}
	if err := c.connect(ctx, op); err != nil {
		return resp, err
	}
	stop := context.AfterFunc(ctx, c.conn.Interrupt)
	defer stop()

	c.seq++
	req.SetHeader(CSeq, strconv.Itoa(c.seq))
	if _, ok := req.Header[UserAgent]; !ok && c.Agent != "" {
		req.SetHeader(UserAgent, c.Agent)
	}
	if c.sessionID != "" {
		req.SetHeader(SessionID, c.sessionID)
	}
	c.logger.Debug("send request", zap.String("method", req.Method), zap.String("uri", req.URL), zap.Int("cseq", c.seq))
	if _, err = req.WriteTo(c.connRW); err == nil {
		err = c.connRW.Flush()
	}
	if err != nil {
		c.drop()
		return resp, ioError(ctx, op, CodeSendError, err)
	}

	resp, err = c.readResponse()
	if err != nil {
		c.drop()
		return resp, ioError(ctx, op, CodeRecvError, err)
	}
	if resp.CloseRequested() {
		c.drop()
	}
	if c.HeaderWriter != nil {
		if _, err := c.HeaderWriter.Write(resp.RawHeader); err != nil {
			return resp, newError(op, CodeWriteError, errors.Wrap(err, "write response header"))
		}
	}
	if got := resp.Header[CSeq]; got != req.Header[CSeq] {
		// the stream is out of step with our requests
		c.drop()
		return resp, newError(op, CodeRtspCSeqError, errors.Errorf("sent cseq %s, got %q", req.Header[CSeq], got))
	}
	if s := resp.Session(); s != "" {
		if c.sessionID != "" && s != c.sessionID {
			return resp, newError(op, CodeRtspSessionError, errors.Errorf("session %q, server replied %q", c.sessionID, s))
		}
		c.sessionID = s
	}
	if body == nil {
		body = c.BodyWriter
	}
	if body != nil && len(resp.Body) > 0 {
		if _, err := io.WriteString(body, resp.Body); err != nil {
			return resp, newError(op, CodeWriteError, errors.Wrap(err, "write response body"))
		}
	}
	if !resp.IsSuccess() {
		e := newError(op, CodeStatusError, errors.New(resp.Status))
		e.StatusCode = resp.StatusCode
		return resp, e
	}
	if req.Method == TEARDOWN {
		c.sessionID = ""
	}
	return resp, nil
}

// Close releases the connection. Further requests fail with CodeAborted.
func (c *RtspClient) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.drop()
}

func (c *RtspClient) connect(ctx context.Context, op string) error {
	if c.conn != nil {
		return nil
	}
	dialCtx := ctx
	if c.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.DialTimeout)
		defer cancel()
	}
	conn, err := c.Dial(dialCtx, "tcp", c.Addr())
	if err != nil {
		return dialError(dialCtx, op, err)
	}
	c.logger.Debug("connected", zap.String("local_addr", conn.LocalAddr().String()))
	c.conn = NewConnRich(conn, c.ReadTimeout, c.WriteTimeout)
	c.connRW = bufio.NewReadWriter(bufio.NewReader(c.conn), bufio.NewWriter(c.conn))
	return nil
}

func (c *RtspClient) drop() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.connRW = nil
	return err
}

// readResponse skips interleaved binary frames until a response starts.
func (c *RtspClient) readResponse() (Response, error) {
	head := make([]byte, 4)
	for {
		b, err := c.connRW.Peek(1)
		if err != nil {
			return Response{}, err
		}
		if b[0] != MagicChar {
			return ReadResponse(c.connRW.Reader)
		}
		if _, err := io.ReadFull(c.connRW, head); err != nil {
			return Response{}, err
		}
		size := int(binary.BigEndian.Uint16(head[2:]))
		if _, err := c.connRW.Discard(size); err != nil {
			return Response{}, err
		}
		c.logger.Debug("skip interleaved frame", zap.Int("channel", int(head[1])), zap.Int("size", size))
	}
}
