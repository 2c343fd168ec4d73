package fona

import (
	"io"
	"log/slog"
	"time"
)

// Config holds the settings for a Device.
type Config struct {
	// Dialer opens the transport to the module. Required.
	Dialer Dialer
	// ResetPin drives the module's hardware reset line. Optional; without
	// it Reset skips the power-cycle phase.
	ResetPin ResetPin
	// RingPin is the hardware ring-indicator line. Optional; without it
	// incoming calls are detected from unsolicited RING lines.
	RingPin RingPin
	// Logger receives wire traffic at debug level. Optional.
	Logger *slog.Logger
	// ATTimeout bounds each command exchange when the caller's context
	// carries no deadline.
	ATTimeout time.Duration
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.ATTimeout == 0 {
		c.ATTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns an empty builder.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the transport dialer.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

// WithResetPin sets the hardware reset line.
func (b *ConfigBuilder) WithResetPin(p ResetPin) *ConfigBuilder {
	b.config.ResetPin = p
	return b
}

// WithRingPin sets the hardware ring-indicator line.
func (b *ConfigBuilder) WithRingPin(p RingPin) *ConfigBuilder {
	b.config.RingPin = p
	return b
}

// WithLogger sets the logger.
func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

// WithATTimeout sets the default per-command timeout.
func (b *ConfigBuilder) WithATTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.ATTimeout = timeout
	return b
}

// Build validates the configuration and returns it.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	return b.config, nil
}
