package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.hub.com/wangyl/RtspRequest/internal/RTSP"
	"git.hub.com/wangyl/RtspRequest/internal/SDP"
	"git.hub.com/wangyl/RtspRequest/internal/Signal"
	"go.uber.org/zap"
)

const DefaultSdpName = "video.sdp"

// Requester is the transport the driver sends through. *RTSP.RtspClient
// implements it.
type Requester interface {
	Do(ctx context.Context, req *RTSP.Request, body io.Writer) (RTSP.Response, error)
	Close() error
}

type State int

const (
	StateInit State = iota
	StateOptionsSent
	StateDescribed
	StateSetupDone
	StatePlaying
	StateTornDown
	StateDone
)

var stateNames = [...]string{"INIT", "OPTIONS_SENT", "DESCRIBED", "SETUP_DONE", "PLAYING", "TORN_DOWN", "DONE"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RtspRequest drives one OPTIONS, DESCRIBE, SETUP, PLAY, TEARDOWN sequence.
// A failed step is logged and the next one runs anyway.
type RtspRequest struct {
	Url       string
	Transport string
	Range     string
	SdpDir    string

	Client Requester
	Stop   Signal.Waiter
	Out    io.Writer
	Logger *zap.Logger
	// CreateFile opens the SDP artifact, os.Create when nil.
	CreateFile func(name string) (io.WriteCloser, error)

	state State
}

func DescribeURI(base string) string {
	return base
}

func SetupURI(base string) string {
	return base + "/video"
}

func PlayURI(base string) string {
	return base + "/"
}

// SdpFileName names the DESCRIBE artifact after the text following the last
// '/' of uri, video.sdp when that text is empty or there is no '/'.
func SdpFileName(uri string) string {
	i := strings.LastIndexByte(uri, '/')
	if i < 0 || i == len(uri)-1 {
		return DefaultSdpName
	}
	return uri[i+1:] + ".sdp"
}

func (r *RtspRequest) State() State {
	return r.state
}

func (r *RtspRequest) Run(ctx context.Context) {
	_ = r.Options(ctx, DescribeURI(r.Url))
	_ = r.Describe(ctx, DescribeURI(r.Url))
	_ = r.Setup(ctx, SetupURI(r.Url), r.Transport)
	_ = r.Play(ctx, PlayURI(r.Url), r.Range)
	r.waitStop(ctx)
	_ = r.Teardown(ctx, PlayURI(r.Url))
	r.state = StateDone
}

func (r *RtspRequest) Options(ctx context.Context, uri string) error {
	r.printf("\nRTSP: OPTIONS %s\n", uri)
	resp, err := r.Client.Do(ctx, RTSP.NewRequest(RTSP.OPTIONS, uri), nil)
	r.report(RTSP.OPTIONS, uri, resp, err)
	r.state = StateOptionsSent
	return err
}

// Describe writes the response body to the SDP artifact, or to Out when the
// file cannot be created. The file is closed before Describe returns.
func (r *RtspRequest) Describe(ctx context.Context, uri string) (err error) {
	r.printf("\nRTSP: DESCRIBE %s\n", uri)
	defer func() { r.state = StateDescribed }()

	path := filepath.Join(r.SdpDir, SdpFileName(uri))
	var target io.Writer = r.out()
	f, ferr := r.createFile(path)
	if ferr != nil {
		r.logger().Error("could not open sdp file for writing", zap.String("file", path), zap.Error(ferr))
	} else {
		defer func() {
			if cerr := f.Close(); cerr != nil {
				r.logger().Error("close sdp file", zap.String("file", path), zap.Error(cerr))
			}
		}()
		r.printf("Writing SDP to '%s'\n", path)
		target = f
	}

	var sdpRaw bytes.Buffer
	req := RTSP.NewRequest(RTSP.DESCRIBE, uri).SetHeader(RTSP.Accept, "application/sdp")
	resp, err := r.Client.Do(ctx, req, io.MultiWriter(target, &sdpRaw))
	r.report(RTSP.DESCRIBE, uri, resp, err)
	if err == nil && sdpRaw.Len() > 0 {
		r.summarize(sdpRaw.Bytes())
	}
	return err
}

func (r *RtspRequest) Setup(ctx context.Context, uri, transport string) error {
	r.printf("\nRTSP: SETUP %s\n", uri)
	r.printf("      TRANSPORT %s\n", transport)
	req := RTSP.NewRequest(RTSP.SETUP, uri).SetHeader(RTSP.Transport, transport)
	resp, err := r.Client.Do(ctx, req, nil)
	r.report(RTSP.SETUP, uri, resp, err)
	r.state = StateSetupDone
	return err
}

func (r *RtspRequest) Play(ctx context.Context, uri, rng string) error {
	r.printf("\nRTSP: PLAY %s\n", uri)
	req := RTSP.NewRequest(RTSP.PLAY, uri).SetHeader(RTSP.Range, rng)
	resp, err := r.Client.Do(ctx, req, nil)
	r.report(RTSP.PLAY, uri, resp, err)
	r.state = StatePlaying
	return err
}

func (r *RtspRequest) Teardown(ctx context.Context, uri string) error {
	r.printf("\nRTSP: TEARDOWN %s\n", uri)
	resp, err := r.Client.Do(ctx, RTSP.NewRequest(RTSP.TEARDOWN, uri), nil)
	r.report(RTSP.TEARDOWN, uri, resp, err)
	r.state = StateTornDown
	return err
}

func (r *RtspRequest) waitStop(ctx context.Context) {
	if r.Stop == nil {
		return
	}
	r.printf("Playing video, press any key to stop ...")
	if err := r.Stop.Wait(ctx); err != nil {
		r.logger().Warn("stop wait ended early", zap.Error(err))
	}
	r.printf("\n")
}

func (r *RtspRequest) report(method, uri string, resp RTSP.Response, err error) {
	if err == nil {
		r.logger().Debug(method+" done", zap.String("uri", uri), zap.Int("status", resp.StatusCode))
		return
	}
	code := RTSP.CodeOf(err)
	fields := []zap.Field{
		zap.String("uri", uri),
		zap.Int("code", int(code)),
		zap.String("reason", code.String()),
		zap.Error(err),
	}
	if status := RTSP.StatusOf(err); status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	r.logger().Error(method+" failed", fields...)
}

func (r *RtspRequest) summarize(raw []byte) {
	summary, err := SDP.ParseSdp(raw)
	if err != nil {
		r.logger().Warn("sdp not understood", zap.Error(err))
		return
	}
	r.logger().Debug("sdp", summary.Fields()...)
}

func (r *RtspRequest) createFile(name string) (io.WriteCloser, error) {
	if r.CreateFile != nil {
		return r.CreateFile(name)
	}
	return os.Create(name)
}

func (r *RtspRequest) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out(), format, args...)
}

func (r *RtspRequest) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *RtspRequest) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
