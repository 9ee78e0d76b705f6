package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/carousel/pkg/ports"
)

// ZerologLogger writes one JSON object per message. Messages are formatted
// but not translated so log collectors see stable text.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewZerolog creates a JSON logger writing to w.
func NewZerolog(level ports.LogLevel, w io.Writer) *ZerologLogger {
	zerolog.TimeFieldFormat = time.RFC3339
	zl := zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}

func zerologLevel(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LevelDebug:
		return zerolog.DebugLevel
	case ports.LevelInfo:
		return zerolog.InfoLevel
	case ports.LevelWarn:
		return zerolog.WarnLevel
	case ports.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) {
	l.zl.Debug().Msg(format(msg, args))
}

func (l *ZerologLogger) Info(msg string, args ...interface{}) {
	l.zl.Info().Msg(format(msg, args))
}

func (l *ZerologLogger) Warn(msg string, args ...interface{}) {
	l.zl.Warn().Msg(format(msg, args))
}

func (l *ZerologLogger) Error(msg string, args ...interface{}) {
	l.zl.Error().Msg(format(msg, args))
}

// WithComponent returns a logger carrying a component field.
func (l *ZerologLogger) WithComponent(component string) ports.Logger {
	return &ZerologLogger{zl: l.zl.With().Str("component", component).Logger()}
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

var _ ports.Logger = (*ZerologLogger)(nil)
