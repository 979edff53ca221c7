package logx

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFields_Constructors(t *testing.T) {
	now := time.Now()
	boom := errors.New("boom")

	require.Equal(t, Field{Key: "k", Value: "v"}, String("k", "v"))
	require.Equal(t, Field{Key: "k", Value: 1}, Int("k", 1))
	require.Equal(t, Field{Key: "k", Value: int64(2)}, Int64("k", int64(2)))
	require.Equal(t, Field{Key: "k", Value: now}, Time("k", now))
	require.Equal(t, Field{Key: "k", Value: time.Second}, Duration("k", time.Second))
	require.Equal(t, Field{Key: "k", Value: true}, Bool("k", true))
	require.Equal(t, Field{Key: "err", Value: boom}, Err(boom))
}

func TestNopLogger_NoPanic(t *testing.T) {
	l := Nop()
	l.Debug("d", String("k", "v"))
	l.Info("i", Int("n", 1))
	l.Warn("w")
	l.Error("e")

	l2 := l.With(String("x", "y"))
	require.NotNil(t, l2)
	require.NoError(t, l2.Sync())
}

func TestSlogAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l.With(String("service", "inventory")).Info("saga confirmed", String("order_id", "o-1"))

	out := buf.String()
	require.Contains(t, out, `"service":"inventory"`)
	require.Contains(t, out, `"order_id":"o-1"`)
	require.Contains(t, out, `"msg":"saga confirmed"`)
}

func TestSlogAdapter_Levels(t *testing.T) {
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})))
	l.Debug("d")
	l.Warn("w", String("k", "v"))
	l.Error("e", Err(errors.New("boom")))
	require.NoError(t, l.Sync())
}

func TestZerologAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf))

	l.With(String("service", "delivery")).Warn("notify failed",
		Int64("delivery_id", 7),
		Err(errors.New("boom")),
	)

	out := buf.String()
	require.Contains(t, out, `"level":"warn"`)
	require.Contains(t, out, `"service":"delivery"`)
	require.Contains(t, out, `"delivery_id":7`)
	require.Contains(t, out, `"err":"boom"`)
	require.Contains(t, out, `"message":"notify failed"`)
	require.NoError(t, l.Sync())
}
