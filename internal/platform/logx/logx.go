// internal/platform/logx/logx.go
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// Format selects the pterm formatter used for log lines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type ptermLogger struct {
	mu    *sync.Mutex // shared by clones, one writer
	lvl   Level
	scope []any // pares key/value fijos
	pl    *pterm.Logger
}

// New creates a logger on stderr whose level comes from WEBNMAP_LOG_LEVEL.
func New() Logger {
	return NewWithWriter(os.Stderr, ParseLevel(os.Getenv("WEBNMAP_LOG_LEVEL")), FormatText)
}

// NewWithLevel creates a logger with a specific log level
func NewWithLevel(lvl Level) Logger {
	return NewWithWriter(os.Stderr, lvl, FormatText)
}

// NewWithWriter creates a logger writing to w with the given level and format.
func NewWithWriter(w io.Writer, lvl Level, format Format) Logger {
	pl := pterm.DefaultLogger.
		WithWriter(w).
		WithLevel(pterm.LogLevelTrace).
		WithTime(true).
		WithTimeFormat("15:04:05")
	if format == FormatJSON {
		pl = pl.WithFormatter(pterm.LogFormatterJSON)
	}
	return &ptermLogger{
		mu:  &sync.Mutex{},
		lvl: lvl,
		pl:  pl,
	}
}

// NewSilent creates a logger that only outputs errors (quiet mode and tests)
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewDiscard creates a logger that drops everything.
func NewDiscard() Logger {
	return NewWithWriter(io.Discard, LevelError+1, FormatText)
}

func (s *ptermLogger) With(kv ...any) Logger {
	clone := *s
	clone.scope = append(append([]any{}, s.scope...), normalizeKV(kv)...)
	return &clone
}

func (s *ptermLogger) SetLevel(lvl Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lvl = lvl
}

func (s *ptermLogger) Debug(msg string, kv ...any) { s.log(LevelDebug, msg, kv...) }
func (s *ptermLogger) Info(msg string, kv ...any)  { s.log(LevelInfo, msg, kv...) }
func (s *ptermLogger) Warn(msg string, kv ...any)  { s.log(LevelWarn, msg, kv...) }
func (s *ptermLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	s.log(LevelError, err.Error(), kv...)
}

func (s *ptermLogger) log(l Level, msg string, kv ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l < s.lvl {
		return
	}
	fields := append(append([]any{}, s.scope...), normalizeKV(kv)...)
	args := s.pl.Args(fields...)
	switch l {
	case LevelDebug:
		s.pl.Debug(msg, args)
	case LevelInfo:
		s.pl.Info(msg, args)
	case LevelWarn:
		s.pl.Warn(msg, args)
	default:
		s.pl.Error(msg, args)
	}
}

// normalizeKV stringifies keys and pads a dangling key.
func normalizeKV(kv []any) []any {
	out := make([]any, 0, len(kv)+1)
	for i := 0; i < len(kv); i += 2 {
		out = append(out, fmt.Sprint(kv[i]))
		if i+1 < len(kv) {
			out = append(out, kv[i+1])
		} else {
			out = append(out, "(missing)")
		}
	}
	return out
}

// ParseLevel maps a level name to a Level; unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}
