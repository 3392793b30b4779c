package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.hub.com/wangyl/RtspRequest/Global"
	"git.hub.com/wangyl/RtspRequest/internal/RTSP"
	"git.hub.com/wangyl/RtspRequest/internal/Signal"
	"git.hub.com/wangyl/RtspRequest/pkg/Logger"
	"git.hub.com/wangyl/RtspRequest/pkg/Settings"
	"git.hub.com/wangyl/RtspRequest/pkg/Snowflake"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"
)

const VERSION_STR = "V1.0"

type Options struct {
	Url        string
	Transport  string
	ConfigPath string
	Verbose    bool
}

// ParseArgs accepts exactly one url and an optional transport after the
// flags.
func ParseArgs(name string, args []string, stderr io.Writer) (Options, error) {
	var o Options
	a := kingpin.New(name, "send an RTSP OPTIONS, DESCRIBE, SETUP, PLAY, TEARDOWN sequence")
	a.HelpFlag.Short('h')
	a.UsageWriter(stderr)
	a.ErrorWriter(stderr)
	a.Flag("config", "config path (toml or yaml)").Short('c').StringVar(&o.ConfigPath)
	a.Flag("verbose", "debug logging").Short('v').BoolVar(&o.Verbose)
	a.Arg("url", "url of video server").Required().StringVar(&o.Url)
	a.Arg("transport", "specifier for media stream protocol").StringVar(&o.Transport)
	if _, err := a.Parse(args); err != nil {
		return Options{}, err
	}
	return o, nil
}

func Usage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage:   %s url [transport]\n", name)
	fmt.Fprintf(w, "         url of video server\n")
	fmt.Fprintf(w, "         transport (optional) specifier for media stream protocol\n")
	fmt.Fprintf(w, "         default transport: %s\n", Settings.DefaultTransport)
	fmt.Fprintf(w, "Example: %s rtsp://192.168.0.2/media/video1\n\n", name)
}

type Env struct {
	Stdout io.Writer
	Stderr zapcore.WriteSyncer
	Stop   Signal.Waiter
	// NewClient builds the transport; RTSP.NewRtspClient when nil.
	NewClient func(url string, opts ...RTSP.ClientOption) (Requester, error)
}

func DefaultEnv() Env {
	return Env{
		Stdout: os.Stdout,
		Stderr: zapcore.Lock(os.Stderr),
		Stop:   Signal.Any(Signal.KeyPress{In: os.Stdin}, Signal.OsSignal{}),
	}
}

// Run executes the command and returns the process exit code. Only a usage
// problem yields a non-zero code; request failures are logged and ignored.
func Run(ctx context.Context, args []string, env Env) int {
	name := programName(args)
	stdout := env.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	fmt.Fprintf(stdout, "\nRTSP request %s\n\n", VERSION_STR)

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	var stderr io.Writer = os.Stderr
	if env.Stderr != nil {
		stderr = env.Stderr
	}
	opts, err := ParseArgs(name, rest, stderr)
	if err != nil {
		Usage(stdout, name)
		return 1
	}

	Global.ConfigPath = opts.ConfigPath
	if err := Global.GlobalInit(opts.Verbose, env.Stderr); err != nil {
		fmt.Fprintf(stdout, "init config fail: %s\n\n", err.Error())
		Usage(stdout, name)
		return 1
	}
	defer Logger.Sync()
	cfg := Settings.GetConfig().APP
	logger := Logger.Named("rtsprequest", zap.String("run_id", Snowflake.RunId()))

	transport := cfg.Transport
	if opts.Transport != "" {
		transport = opts.Transport
	}

	newClient := env.NewClient
	if newClient == nil {
		newClient = func(url string, o ...RTSP.ClientOption) (Requester, error) {
			return RTSP.NewRtspClient(url, o...)
		}
	}
	client, err := newClient(opts.Url,
		RTSP.WithUserAgent(cfg.UserAgent),
		RTSP.WithDefaultPort(cfg.RtspPort),
		RTSP.WithTimeouts(cfg.DialTimeoutDuration(), cfg.ReadTimeoutDuration(), cfg.WriteTimeoutDuration()),
		RTSP.WithHeaderWriter(stdout),
		RTSP.WithBodyWriter(stdout),
		RTSP.WithLogger(logger),
	)
	if err != nil {
		logger.Error("transport init failed", zap.String("url", opts.Url), zap.Int("code", int(RTSP.CodeOf(err))), zap.Error(err))
		return 0
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("close transport", zap.Error(err))
		}
	}()
	logger.Info("transport client loaded", zap.String("version", RTSP.Version))

	driver := &RtspRequest{
		Url:       opts.Url,
		Transport: transport,
		Range:     cfg.Range,
		SdpDir:    cfg.SdpDir,
		Client:    client,
		Stop:      env.Stop,
		Out:       stdout,
		Logger:    logger,
	}
	driver.Run(ctx)
	return 0
}

func programName(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "rtsprequest"
	}
	base := filepath.Base(args[0])
	if i := strings.LastIndexByte(base, '\\'); i >= 0 {
		base = base[i+1:]
	}
	return base
}
