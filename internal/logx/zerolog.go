package logx

import "github.com/rs/zerolog"

// ZerologAdapter adapts a zerolog.Logger to the logx.Logger interface.
type ZerologAdapter struct {
	l zerolog.Logger
}

// NewZerologAdapter returns a Logger implementation backed by the provided zerolog.Logger.
func NewZerologAdapter(l zerolog.Logger) Logger {
	return &ZerologAdapter{l: l}
}

// Debug logs a debug-level message with optional structured fields.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) { withFields(z.l.Debug(), fields).Msg(msg) }

// Info logs an info-level message with optional structured fields.
func (z *ZerologAdapter) Info(msg string, fields ...Field) { withFields(z.l.Info(), fields).Msg(msg) }

// Warn logs a warning-level message with optional structured fields.
func (z *ZerologAdapter) Warn(msg string, fields ...Field) { withFields(z.l.Warn(), fields).Msg(msg) }

// Error logs an error-level message with optional structured fields.
func (z *ZerologAdapter) Error(msg string, fields ...Field) { withFields(z.l.Error(), fields).Msg(msg) }

// With returns a new logger with the provided fields attached to every subsequent log entry.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	ctx := z.l.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologAdapter{l: ctx.Logger()}
}

// Sync is a no-op; zerolog writes synchronously.
func (z *ZerologAdapter) Sync() error { return nil }

func withFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			e = e.AnErr(f.Key, err)
			continue
		}
		e = e.Interface(f.Key, f.Value)
	}
	return e
}
