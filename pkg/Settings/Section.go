package Settings

import "time"

const (
	DefaultTransport = "RTP/AVP;unicast;client_port=1234-1235"
	DefaultRange     = "0.000-"
	DefaultUserAgent = "rtsprequest/V1.0"
	DefaultRtspPort  = 554
)

type Config struct {
	APP    APP    `toml:"APP" yaml:"APP"`
	Logger Logger `toml:"Logger" yaml:"Logger"`
}

func (c *Config) fixme() {
	if c.APP.Transport == "" {
		c.APP.Transport = DefaultTransport
	}
	if c.APP.Range == "" {
		c.APP.Range = DefaultRange
	}
	if c.APP.UserAgent == "" {
		c.APP.UserAgent = DefaultUserAgent
	}
	if c.APP.RtspPort == 0 {
		c.APP.RtspPort = DefaultRtspPort
	}
	if c.APP.DialTimeout == 0 {
		c.APP.DialTimeout = 10
	}
	if c.APP.ReadTimeout == 0 {
		c.APP.ReadTimeout = 10
	}
	if c.APP.WriteTimeout == 0 {
		c.APP.WriteTimeout = 10
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
}

type APP struct {
	Transport    string `toml:"Transport" yaml:"Transport"`
	Range        string `toml:"Range" yaml:"Range"`
	UserAgent    string `toml:"UserAgent" yaml:"UserAgent"`
	RtspPort     int    `toml:"RtspPort" yaml:"RtspPort"`
	SdpDir       string `toml:"SdpDir" yaml:"SdpDir"`
	DialTimeout  int    `toml:"DialTimeout" yaml:"DialTimeout"`   // 秒
	ReadTimeout  int    `toml:"ReadTimeout" yaml:"ReadTimeout"`   // 秒
	WriteTimeout int    `toml:"WriteTimeout" yaml:"WriteTimeout"` // 秒
}

func (a APP) DialTimeoutDuration() time.Duration {
	return time.Duration(a.DialTimeout) * time.Second
}

func (a APP) ReadTimeoutDuration() time.Duration {
	return time.Duration(a.ReadTimeout) * time.Second
}

func (a APP) WriteTimeoutDuration() time.Duration {
	return time.Duration(a.WriteTimeout) * time.Second
}

type Logger struct {
	Level       string `toml:"Level" yaml:"Level"`
	LogDir      string `toml:"LogDir" yaml:"LogDir"`
	MaxSize     int    `toml:"MaxSize" yaml:"MaxSize"`
	MaxBackups  int    `toml:"MaxBackups" yaml:"MaxBackups"`
	MaxAge      int    `toml:"MaxAge" yaml:"MaxAge"`
	Development bool   `toml:"Development" yaml:"Development"`
}
