package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Channel names. Each one maps to its own file under <dir>/<client>/.
const (
	ChannelApplication = "application"
	ChannelError       = "application-error"
	ChannelDatabase    = "database-error"
)

// Channels groups the loggers used while syncing one client.
type Channels struct {
	// App receives progress and summaries.
	App *zap.Logger
	// Error receives dropped records, rolled back batches and truncated streams.
	Error *zap.Logger
	// Database receives failed statements with the offending record set.
	Database *zap.Logger

	closers []func()
}

// NewChannels derives the three channel loggers for client from base.
// When cfg.Dir is set every channel is also appended to its own JSON file.
func NewChannels(base *zap.Logger, cfg Config, client string) (*Channels, error) {
	c := &Channels{}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	build := func(name string) (*zap.Logger, error) {
		l := base
		if cfg.Dir != "" {
			dir := filepath.Join(cfg.Dir, client)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log dir: %w", err)
			}
			sink, closeFn, err := zap.Open(filepath.Join(dir, name+".log"))
			if err != nil {
				return nil, fmt.Errorf("failed to open %s log: %w", name, err)
			}
			c.closers = append(c.closers, closeFn)

			fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig()), sink, level)
			l = l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
				return zapcore.NewTee(core, fileCore)
			}))
		}
		return l.With(zap.String("client", client), zap.String("channel", name)), nil
	}

	var err error
	if c.App, err = build(ChannelApplication); err != nil {
		c.Close()
		return nil, err
	}
	if c.Error, err = build(ChannelError); err != nil {
		c.Close()
		return nil, err
	}
	if c.Database, err = build(ChannelDatabase); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NopChannels returns channels that discard everything.
func NopChannels() *Channels {
	nop := zap.NewNop()
	return &Channels{App: nop, Error: nop, Database: nop}
}

// Close flushes and closes the channel files.
func (c *Channels) Close() {
	for _, l := range []*zap.Logger{c.App, c.Error, c.Database} {
		if l != nil {
			_ = l.Sync()
		}
	}
	for _, fn := range c.closers {
		fn()
	}
	c.closers = nil
}

func fileEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.LevelKey = "level"
	enc.TimeKey = "time"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}
