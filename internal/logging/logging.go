// Package logging builds the program logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Levels accepted by Config.Level.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// Config selects what is logged and where.
type Config struct {
	Level string // none, normal or debug
	// File, when set, receives a debug-level copy of the log.
	File string
}

// Validate checks the level name.
func (c Config) Validate() error {
	switch c.Level {
	case "", LevelNone, LevelNormal, LevelDebug:
		return nil
	default:
		return fmt.Errorf("invalid log level %q (want none, normal or debug)", c.Level)
	}
}

// New builds a logger writing human-readable entries to console (stderr when
// nil) and, optionally, to a file. The returned func flushes and closes the
// file.
func New(cfg Config, console io.Writer) (*zap.Logger, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if console == nil {
		console = os.Stderr
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	var consoleCore zapcore.Core
	switch cfg.Level {
	case LevelDebug:
		consoleCore = zapcore.NewCore(newEncoder(ec), zapcore.AddSync(console), zap.DebugLevel)
	case LevelNone:
		consoleCore = zapcore.NewNopCore()
	default:
		consoleCore = zapcore.NewCore(newEncoder(ec), zapcore.AddSync(console), zap.InfoLevel)
	}

	cores := []zapcore.Core{consoleCore}
	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("unable to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file (%s): %w", cfg.File, err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(f),
			zap.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named("feishu2html")
	cleanup := func() error {
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, cleanup, nil
}

// consoleEnc prints only the message of error fields, without stack details.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
