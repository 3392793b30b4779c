package Logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Option struct {
	LogDir      string
	FiLeName    string
	Level       zapcore.Level
	MaxSize     int // 单位MB
	MaxBackups  int // 旧文件最大数量
	MaxAge      int // 旧文件最大保存时间 单位:天
	Development bool
	Console     zapcore.WriteSyncer
}

func (i *Option) fixup() {
	if i.LogDir == "" {
		i.LogDir, _ = filepath.Abs("logs")
	}
	if i.FiLeName == "" {
		i.FiLeName = filepath.Base(os.Args[0])
	}
	if i.MaxBackups == 0 {
		i.MaxBackups = 5
	}
	if i.MaxSize == 0 {
		i.MaxSize = 100
	}
	if i.MaxAge == 0 {
		i.MaxAge = 5
	}
	if i.Console == nil {
		i.Console = zapcore.Lock(os.Stderr)
	}
}

type ModOptions func(options *Option)

func SetMaxSize(MaxSize int) ModOptions {
	return func(option *Option) {
		option.MaxSize = MaxSize
	}
}

func SetMaxBackups(MaxBackups int) ModOptions {
	return func(option *Option) {
		option.MaxBackups = MaxBackups
	}
}

func SetMaxAge(MaxAge int) ModOptions {
	return func(option *Option) {
		option.MaxAge = MaxAge
	}
}

func SetLogFileDir(LogFileDir string) ModOptions {
	return func(option *Option) {
		option.LogDir = LogFileDir
	}
}

func SetFileName(FileName string) ModOptions {
	return func(option *Option) {
		option.FiLeName = FileName
	}
}

func SetLevel(Level zapcore.Level) ModOptions {
	return func(option *Option) {
		option.Level = Level
	}
}

// SetLevelString accepts debug, info, warn, error, dpanic, panic and fatal.
// Anything else selects info.
func SetLevelString(level string) ModOptions {
	return func(option *Option) {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			l = zapcore.InfoLevel
		}
		option.Level = l
	}
}

func SetDevelopment(Development bool) ModOptions {
	return func(option *Option) {
		option.Development = Development
	}
}

// SetConsole redirects console output, stderr by default.
func SetConsole(ws zapcore.WriteSyncer) ModOptions {
	return func(option *Option) {
		option.Console = ws
	}
}
