// Package config provides the configuration schema and loader for the
// yaudiocord music bot.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity for the bot.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration is a time.Duration that unmarshals from YAML strings like "20s"
// or "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration structure for yaudiocord.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Server   ServerConfig   `yaml:"server"`
	Player   PlayerConfig   `yaml:"player"`
	Resolver ResolverConfig `yaml:"resolver"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
}

// DiscordConfig holds gateway credentials.
type DiscordConfig struct {
	// Token is the Discord bot token. The DISCORD_TOKEN environment
	// variable overrides this value when set.
	Token string `yaml:"token"`
}

// ServerConfig holds network and logging settings for the diagnostics server.
type ServerConfig struct {
	// ListenAddr is the TCP address the metrics and health endpoints listen
	// on (e.g., ":8080"). Empty disables the diagnostics server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// PlayerConfig tunes the per-guild playback scheduler.
type PlayerConfig struct {
	// JoinTimeout bounds a single voice channel join attempt. Zero selects 20s.
	JoinTimeout Duration `yaml:"join_timeout"`

	// SettleDelay is the pause between consecutive tracks. Zero selects 250ms.
	SettleDelay Duration `yaml:"settle_delay"`

	// RetryDelay is the pause before retrying playback after a dropped voice
	// connection. Zero selects 1s.
	RetryDelay Duration `yaml:"retry_delay"`
}

// ResolverConfig tunes the yt-dlp media resolver.
type ResolverConfig struct {
	// Proxy routes extractor traffic through the given proxy URL.
	Proxy string `yaml:"proxy"`

	// SocketTimeout is the per-connection timeout in seconds. Zero selects 30.
	SocketTimeout int `yaml:"socket_timeout"`

	// Retries is the extractor retry count. Zero selects 3.
	Retries int `yaml:"retries"`

	// AutoInstall downloads a pinned yt-dlp binary at startup when none is
	// found on PATH.
	AutoInstall bool `yaml:"auto_install"`
}

// FFmpegConfig overrides ffmpeg discovery.
type FFmpegConfig struct {
	// Path is the ffmpeg executable. Empty falls back to the FFMPEG_*
	// environment variables and then PATH lookup.
	Path string `yaml:"path"`
}
