package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode" yaml:"mode"`

	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	EventBuffer        int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	AckTimeout         time.Duration `mapstructure:"ack_timeout" yaml:"ack_timeout"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	RoomIDBytes            int  `mapstructure:"room_id_bytes" yaml:"room_id_bytes"`
	AnnounceUsersOnConnect bool `mapstructure:"announce_users_on_connect" yaml:"announce_users_on_connect"`

	AdminAPI        bool `mapstructure:"admin_api" yaml:"admin_api"`
	SocketIOEnabled bool `mapstructure:"socketio_enabled" yaml:"socketio_enabled"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                   ":3000",
		ReadHeaderTimeout:      5 * time.Second,
		ShutdownTimeout:        5 * time.Second,
		LogLevel:               "info",
		LogFormat:              "console",
		Mode:                   "release",
		MaxMessageBytes:        1 << 16,
		RateLimitPerMinute:     600,
		EventBuffer:            64,
		AckTimeout:             5 * time.Second,
		RoomIDBytes:            3,
		AnnounceUsersOnConnect: true,
		SocketIOEnabled:        true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Mode != "" {
		c.Mode = other.Mode
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
	if other.AckTimeout != 0 {
		c.AckTimeout = other.AckTimeout
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.RoomIDBytes != 0 {
		c.RoomIDBytes = other.RoomIDBytes
	}
}
