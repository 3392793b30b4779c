package Global

import (
	"git.hub.com/wangyl/RtspRequest/pkg/Logger"
	"git.hub.com/wangyl/RtspRequest/pkg/Settings"
	"go.uber.org/zap/zapcore"
)

var ConfigPath string

// GlobalInit reads the config at ConfigPath, then builds the logger from its
// Logger section. verbose forces the debug level.
func GlobalInit(verbose bool, console zapcore.WriteSyncer) (err error) {
	//init config
	if err = Settings.ReadConfig(ConfigPath); err != nil {
		return err
	}
	cfg := Settings.GetConfig().Logger
	level := cfg.Level
	if verbose {
		level = "debug"
	}
	//init Logger
	opts := []Logger.ModOptions{
		Logger.SetDevelopment(cfg.Development),
		Logger.SetLevelString(level),
		Logger.SetLogFileDir(cfg.LogDir),
		Logger.SetMaxAge(cfg.MaxAge),
		Logger.SetMaxBackups(cfg.MaxBackups),
		Logger.SetMaxSize(cfg.MaxSize),
	}
	if console != nil {
		opts = append(opts, Logger.SetConsole(console))
	}
	return Logger.Init(opts...)
}
