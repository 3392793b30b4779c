package Logger

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger = new(Logger)
	mu     sync.Mutex
)

// GetLogger returns the process logger, building a development console logger
// on first use when Init was never called.
func GetLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !logger.inited {
		_ = logger.build(&Option{Development: true})
	}
	return logger.log
}

// Init builds the process logger. A second call replaces the first one so the
// level and sinks can follow a config file read after startup.
func Init(opts ...ModOptions) error {
	opt := new(Option)
	opt.Development = true
	for _, item := range opts {
		item(opt)
	}
	mu.Lock()
	defer mu.Unlock()
	return logger.build(opt)
}

// Sync flushes buffered entries.
func Sync() {
	mu.Lock()
	l := logger.log
	mu.Unlock()
	if l != nil {
		_ = l.Sync()
	}
}

type Logger struct {
	Opt    *Option
	inited bool
	log    *zap.Logger
	level  zap.AtomicLevel
}

func (l *Logger) build(opt *Option) error {
	opt.fixup()
	l.Opt = opt
	l.level = zap.NewAtomicLevelAt(opt.Level)
	var cores []zapcore.Core
	if opt.Development {
		cores = l.consoleCores()
	} else {
		cores = l.fileCores()
	}
	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if l.log != nil {
		_ = l.log.Sync()
	}
	l.log = log
	l.inited = true
	return nil
}

func (l *Logger) consoleCores() []zapcore.Core {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = timeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	return []zapcore.Core{
		zapcore.NewCore(consoleEncoder, l.Opt.Console, l.level),
	}
}

// fileCores writes one rotated JSON file per level. Errors also reach the
// console so a failed request is visible without opening the log directory.
func (l *Logger) fileCores() []zapcore.Core {
	f := func(level string) zapcore.WriteSyncer {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(l.Opt.LogDir, fmt.Sprintf("%s-%s.log", l.Opt.FiLeName, level)),
			MaxSize:    l.Opt.MaxSize,
			MaxAge:     l.Opt.MaxAge,
			MaxBackups: l.Opt.MaxBackups,
			LocalTime:  true,
			Compress:   false,
		})
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = timeEncoder
	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	only := func(want zapcore.Level) zap.LevelEnablerFunc {
		return func(lvl zapcore.Level) bool {
			return lvl == want && l.level.Enabled(lvl)
		}
	}
	errPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && l.level.Enabled(lvl)
	})
	return []zapcore.Core{
		zapcore.NewCore(fileEncoder, f("error"), errPriority),
		zapcore.NewCore(fileEncoder, f("warn"), only(zapcore.WarnLevel)),
		zapcore.NewCore(fileEncoder, f("info"), only(zapcore.InfoLevel)),
		zapcore.NewCore(fileEncoder, f("debug"), only(zapcore.DebugLevel)),
		zapcore.NewCore(consoleEncoder, l.Opt.Console, errPriority),
	}
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}
