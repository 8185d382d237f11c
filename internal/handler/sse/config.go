package sse

import "time"

const (
	defaultKeepAlive = 10 * time.Second
	defaultBuffer    = 64
)

// Config tunes a change stream.
type Config struct {
	// KeepAliveInterval is the gap between ping comments on an idle stream.
	// Proxies commonly cut idle responses after 30-60s.
	KeepAliveInterval time.Duration

	// Buffer is how many change events may queue for a slow client before
	// newer ones are dropped
	Buffer int
}

// DefaultConfig returns the stream settings used by the server.
func DefaultConfig() *Config {
	return &Config{KeepAliveInterval: defaultKeepAlive, Buffer: defaultBuffer}
}

// WithDefaults returns a copy with zero fields filled in. A nil config
// yields DefaultConfig.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if out.KeepAliveInterval <= 0 {
		out.KeepAliveInterval = defaultKeepAlive
	}
	if out.Buffer <= 0 {
		out.Buffer = defaultBuffer
	}
	return &out
}
