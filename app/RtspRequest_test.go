package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"git.hub.com/wangyl/RtspRequest/internal/RTSP"
	"git.hub.com/wangyl/RtspRequest/internal/Signal"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeRequester struct {
	reqs   []*RTSP.Request
	fail   map[string]error
	bodies map[string]string
	closed bool
	// events records requests and stop waits in the order they happen
	events *[]string
}

func (f *fakeRequester) Do(ctx context.Context, req *RTSP.Request, body io.Writer) (RTSP.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.events != nil {
		*f.events = append(*f.events, req.Method)
	}
	if b, ok := f.bodies[req.Method]; ok && body != nil {
		_, _ = io.WriteString(body, b)
	}
	if err := f.fail[req.Method]; err != nil {
		return RTSP.Response{StatusCode: RTSP.StatusOf(err)}, err
	}
	return RTSP.Response{StatusCode: 200}, nil
}

func (f *fakeRequester) Close() error {
	f.closed = true
	return nil
}

type trackedFile struct {
	bytes.Buffer
	closed bool
}

func (f *trackedFile) Close() error {
	f.closed = true
	return nil
}

const testSdp = "v=0\r\no=- 1 1 IN IP4 127.0.0.1\r\ns=Test\r\nt=0 0\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\na=control:trackID=1\r\n"

func newDriver(client *fakeRequester) (*RtspRequest, *bytes.Buffer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	return &RtspRequest{
		Url:       "rtsp://192.168.0.2/media/video1",
		Transport: "RTP/AVP;unicast;client_port=1234-1235",
		Range:     "0.000-",
		Client:    client,
		Out:       &out,
		Logger:    zap.New(core),
	}, &out, logs
}

func TestDerivedURIs(t *testing.T) {
	for _, base := range []string{
		"rtsp://192.168.0.2/media/video1",
		"rtsp://host",
		"rtsp://host/",
		"rtsp://host:8554/live?token=abc",
	} {
		require.Equal(t, base, DescribeURI(base))
		require.Equal(t, base+"/video", SetupURI(base))
		require.Equal(t, base+"/", PlayURI(base))
	}
}

func TestSdpFileName(t *testing.T) {
	cases := map[string]string{
		"rtsp://host/media/video1": "video1.sdp",
		"rtsp://host/":             "video.sdp",
		"rtsp://host/media/":       "video.sdp",
		"rtsp://host":              "host.sdp",
		"no-slash-at-all":          "video.sdp",
		"rtsp://host/live?x=1":     "live?x=1.sdp",
	}
	for uri, want := range cases {
		require.Equal(t, want, SdpFileName(uri), uri)
	}
}

func TestRunOrder(t *testing.T) {
	var events []string
	client := &fakeRequester{events: &events}
	d, out, _ := newDriver(client)
	d.SdpDir = t.TempDir()
	d.Stop = Signal.WaiterFunc(func(ctx context.Context) error {
		events = append(events, "STOP")
		return nil
	})

	d.Run(context.Background())

	require.Equal(t, []string{RTSP.OPTIONS, RTSP.DESCRIBE, RTSP.SETUP, RTSP.PLAY, "STOP", RTSP.TEARDOWN}, events)
	require.Equal(t, StateDone, d.State())

	base := d.Url
	uris := []string{base, base, base + "/video", base + "/", base + "/"}
	for i, req := range client.reqs {
		require.Equal(t, uris[i], req.URL, req.Method)
	}
	require.Equal(t, "RTP/AVP;unicast;client_port=1234-1235", client.reqs[2].Header[RTSP.Transport])
	require.Equal(t, "0.000-", client.reqs[3].Header[RTSP.Range])
	require.Equal(t, "application/sdp", client.reqs[1].Header[RTSP.Accept])

	require.Contains(t, out.String(), "RTSP: OPTIONS "+base+"\n")
	require.Contains(t, out.String(), "      TRANSPORT RTP/AVP;unicast;client_port=1234-1235\n")
	require.Contains(t, out.String(), "Playing video, press any key to stop ...")
}

func TestRunContinuesAfterFailures(t *testing.T) {
	statusErr := &RTSP.Error{Op: RTSP.DESCRIBE, Code: RTSP.CodeStatusError, StatusCode: 404, Err: errors.New("Not Found")}
	client := &fakeRequester{fail: map[string]error{
		RTSP.OPTIONS:  &RTSP.Error{Op: RTSP.OPTIONS, Code: RTSP.CodeCouldntConnect, Err: errors.New("refused")},
		RTSP.DESCRIBE: statusErr,
		RTSP.SETUP:    &RTSP.Error{Op: RTSP.SETUP, Code: RTSP.CodeRecvError, Err: errors.New("eof")},
	}}
	d, _, logs := newDriver(client)
	d.SdpDir = t.TempDir()

	d.Run(context.Background())

	require.Len(t, client.reqs, 5)
	require.Equal(t, RTSP.TEARDOWN, client.reqs[4].Method)
	require.Equal(t, StateDone, d.State())

	failed := logs.FilterMessage(RTSP.DESCRIBE + " failed").All()
	require.Len(t, failed, 1)
	ctx := failed[0].ContextMap()
	require.Equal(t, int64(RTSP.CodeStatusError), ctx["code"])
	require.Equal(t, int64(404), ctx["status"])
	require.Len(t, logs.FilterMessage(RTSP.OPTIONS+" failed").All(), 1)
	require.Len(t, logs.FilterMessage(RTSP.SETUP+" failed").All(), 1)
}

func TestDescribeWritesSdpFile(t *testing.T) {
	client := &fakeRequester{bodies: map[string]string{RTSP.DESCRIBE: testSdp}}
	d, out, logs := newDriver(client)
	d.SdpDir = t.TempDir()

	require.NoError(t, d.Describe(context.Background(), d.Url))

	path := filepath.Join(d.SdpDir, "video1.sdp")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, testSdp, string(data))
	require.Contains(t, out.String(), "Writing SDP to '"+path+"'")
	require.NotContains(t, out.String(), "v=0")
	require.Len(t, logs.FilterMessage("sdp").All(), 1)
}

func TestDescribeClosesFile(t *testing.T) {
	for _, fail := range []bool{false, true} {
		client := &fakeRequester{bodies: map[string]string{RTSP.DESCRIBE: testSdp}}
		if fail {
			client.fail = map[string]error{RTSP.DESCRIBE: &RTSP.Error{Op: RTSP.DESCRIBE, Code: RTSP.CodeRecvError}}
		}
		d, _, _ := newDriver(client)
		file := new(trackedFile)
		var opened string
		d.CreateFile = func(name string) (io.WriteCloser, error) {
			opened = name
			return file, nil
		}

		err := d.Describe(context.Background(), "rtsp://host/")
		require.Equal(t, fail, err != nil)
		require.Equal(t, "video.sdp", opened)
		require.True(t, file.closed)
		require.Equal(t, testSdp, file.String())
		require.Equal(t, StateDescribed, d.State())
	}
}

func TestDescribeFallsBackToOut(t *testing.T) {
	client := &fakeRequester{bodies: map[string]string{RTSP.DESCRIBE: testSdp}}
	d, out, logs := newDriver(client)
	d.CreateFile = func(name string) (io.WriteCloser, error) {
		return nil, errors.New("read-only file system")
	}

	require.NoError(t, d.Describe(context.Background(), d.Url))
	require.Contains(t, out.String(), testSdp)
	require.Len(t, logs.FilterMessage("could not open sdp file for writing").All(), 1)
}

func TestDescribeUnparsableBodyOnlyWarns(t *testing.T) {
	client := &fakeRequester{bodies: map[string]string{RTSP.DESCRIBE: "not sdp"}}
	d, _, logs := newDriver(client)
	d.SdpDir = t.TempDir()

	require.NoError(t, d.Describe(context.Background(), d.Url))
	require.Len(t, logs.FilterMessage("sdp not understood").All(), 1)
	data, err := os.ReadFile(filepath.Join(d.SdpDir, "video1.sdp"))
	require.NoError(t, err)
	require.Equal(t, "not sdp", string(data))
}

func TestSetupUsesTransportVerbatim(t *testing.T) {
	client := &fakeRequester{}
	d, _, _ := newDriver(client)
	custom := "RTP/AVP/TCP;unicast;interleaved=0-1"

	require.NoError(t, d.Setup(context.Background(), SetupURI(d.Url), custom))
	require.Equal(t, custom, client.reqs[0].Header[RTSP.Transport])
	require.Equal(t, StateSetupDone, d.State())
}

func TestStopWaitErrorStillTearsDown(t *testing.T) {
	client := &fakeRequester{}
	d, _, logs := newDriver(client)
	d.SdpDir = t.TempDir()
	d.Stop = Signal.WaiterFunc(func(ctx context.Context) error {
		return errors.New("stdin closed")
	})

	d.Run(context.Background())
	require.Equal(t, RTSP.TEARDOWN, client.reqs[len(client.reqs)-1].Method)
	require.Len(t, logs.FilterMessage("stop wait ended early").All(), 1)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "INIT", StateInit.String())
	require.Equal(t, "TORN_DOWN", StateTornDown.String())
	require.Equal(t, "State(42)", State(42).String())
}
