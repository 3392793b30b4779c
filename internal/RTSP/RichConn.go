package RTSP

import (
	"net"
	"os"
	"sync/atomic"
	"time"
)

type ConnRich struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	conn         net.Conn
	interrupted  atomic.Bool
}

func NewConnRich(conn net.Conn, readTimeout, writeTimeout time.Duration) *ConnRich {
	return &ConnRich{
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		conn:         conn,
	}
}

func (c *ConnRich) Write(p []byte) (n int, err error) {
	if c.interrupted.Load() {
		return 0, os.ErrDeadlineExceeded
	}
	if c.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.WriteTimeout))
	} else {
		var t time.Time
		_ = c.conn.SetWriteDeadline(t)
	}
	return c.conn.Write(p)
}

func (c *ConnRich) Read(p []byte) (n int, err error) {
	if c.interrupted.Load() {
		return 0, os.ErrDeadlineExceeded
	}
	if c.ReadTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.ReadTimeout))
	} else {
		var t time.Time
		_ = c.conn.SetReadDeadline(t)
	}
	return c.conn.Read(p)
}

// Interrupt forces any blocked Read or Write to return and fails every later
// one; the connection is unusable afterwards.
func (c *ConnRich) Interrupt() {
	c.interrupted.Store(true)
	_ = c.conn.SetDeadline(time.Unix(1, 0))
}

func (c *ConnRich) Close() error {
	return c.conn.Close()
}
