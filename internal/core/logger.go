package core

import "github.com/rs/zerolog"

// Logger is the minimal structured logging surface the engine and its
// collaborators emit through. Args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	l zerolog.Logger
}

// NewZerologLogger wraps the given zerolog logger.
func NewZerologLogger(l zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{l: l}
}

func (z *ZerologLogger) Debug(msg string, args ...any) { z.l.Debug().Fields(pairs(args)).Msg(msg) }
func (z *ZerologLogger) Info(msg string, args ...any)  { z.l.Info().Fields(pairs(args)).Msg(msg) }
func (z *ZerologLogger) Warn(msg string, args ...any)  { z.l.Warn().Fields(pairs(args)).Msg(msg) }
func (z *ZerologLogger) Error(msg string, args ...any) { z.l.Error().Fields(pairs(args)).Msg(msg) }

// pairs folds alternating key/value args into a field map. A trailing
// valueless key is kept with a nil value rather than dropped.
func pairs(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]any, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		if i+1 < len(args) {
			fields[key] = args[i+1]
		} else {
			fields[key] = nil
		}
	}
	return fields
}
