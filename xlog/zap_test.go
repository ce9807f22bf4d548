package xlog

import (
	"bytes"
	"context"
	"errors"
	randv2 "math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xsearch/lib/infra"
)

type testMemOutWriter struct {
	lock sync.Mutex
	data bytes.Buffer
}

func (w *testMemOutWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.Write(p)
}

func (w *testMemOutWriter) String() string {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.data.String()
}

func (w *testMemOutWriter) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.data.Reset()
}

func newTestMemLogger(t *testing.T, opts ...XLoggerOption) (XLogger, *testMemOutWriter) {
	t.Helper()
	w := &testMemOutWriter{}
	setOutWriterByType(testMemAsOut, zapcore.AddSync(w))
	opts = append([]XLoggerOption{WithXLoggerWriter(testMemAsOut)}, opts...)
	return NewXLogger(opts...), w
}

func TestLogLevelString(t *testing.T) {
	require.Equal(t, "DEBUG", LogLevelDebug.String())
	require.Equal(t, "INFO", LogLevelInfo.String())
	require.Equal(t, "WARN", LogLevelWarn.String())
	require.Equal(t, "ERROR", LogLevelError.String())
	require.Equal(t, zapcore.DebugLevel, LogLevelDebug.zapLevel())
	require.Equal(t, zapcore.InfoLevel, LogLevelInfo.zapLevel())
	require.Equal(t, zapcore.WarnLevel, LogLevelWarn.zapLevel())
	require.Equal(t, zapcore.ErrorLevel, LogLevelError.zapLevel())

	testcases := []struct {
		level    string
		expected zapcore.Level
	}{
		{"", zapcore.DebugLevel},
		{"unknown", zapcore.DebugLevel},
		{" info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"Error", zapcore.ErrorLevel},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, ParseLogLevel(tc.level))
	}

	enc, ok := ParseLogEncoder("console")
	require.True(t, ok)
	require.Equal(t, PlainText, enc)
	enc, ok = ParseLogEncoder("")
	require.True(t, ok)
	require.Equal(t, JSON, enc)
	_, ok = ParseLogEncoder("yaml")
	require.False(t, ok)
}

type testBanner struct{}

func (b *testBanner) JSON() string {
	return "{\"app\":\"xsearch\"}"
}

func (b *testBanner) PlainText() string {
	return "xsearch"
}

func TestLoggerPrintBanner(t *testing.T) {
	logger, w := newTestMemLogger(t, WithXLoggerEncoder(JSON))
	printBanner = sync.Once{}
	logger.Banner(&testBanner{})
	require.Equal(t, "{\"banner\":\"{\\\"app\\\":\\\"xsearch\\\"}\"}\n", w.String())

	// Printed once.
	logger.Banner(&testBanner{})
	require.Equal(t, 1, strings.Count(w.String(), "banner"))

	logger, w = newTestMemLogger(t, WithXLoggerEncoder(PlainText))
	printBanner = sync.Once{}
	logger.Banner(&testBanner{})
	require.Equal(t, "xsearch\n", w.String())
}

func TestXLogger_AllAPIs(t *testing.T) {
	testcases := []struct {
		name    string
		encoder logEncoderType
		ctxM    map[string]string
		ctxOut  []string
	}{
		{
			name:    "json",
			encoder: JSON,
			ctxM: map[string]string{
				"traceId": "TraceID",
				"service": "Svc",
			},
			ctxOut: []string{`"TraceID":"1234567890"`, `"Svc":"xsearch"`},
		},
		{
			name:    "plaintext",
			encoder: PlainText,
			ctxM: map[string]string{
				"traceId": "",
				"abc":     ContextKeyMapToOmitempty,
				"def":     "",
			},
			ctxOut: []string{`"traceId": "1234567890"`, `"def": "nil"`},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			opts := []XLoggerOption{
				WithXLoggerLevel(LogLevelDebug),
				WithXLoggerEncoder(tc.encoder),
				WithXLoggerConsoleCore(),
			}
			for k, v := range tc.ctxM {
				opts = append(opts, WithXLoggerContextFieldExtract(k, v))
			}
			logger, w := newTestMemLogger(tt, opts...)

			ctx := context.TODO()
			ctx = ContextWithField(ctx, "traceId", "1234567890")
			ctx = ContextWithField(ctx, "service", "xsearch")

			logger.Debug("debug message 1")
			logger.DebugContext(ctx, "debug message 2")
			logger.Info("info message 1")
			logger.InfoContext(ctx, "info message 2")
			logger.Warn("warn message 1")
			logger.WarnContext(ctx, "warn message 2")
			err1 := infra.WrapErrorStack(errors.New("error 1"))
			logger.Error(err1, "error message 1")
			logger.ErrorContext(ctx, err1, "error message 2")
			logger.ErrorStack(err1, "error message 3")
			logger.ErrorStackContext(ctx, err1, "error message 4")
			logger.ErrorStack(errors.New("plain"), "error message 5")
			require.NoError(tt, logger.Sync())

			out := w.String()
			for _, msg := range []string{"debug message 2", "warn message 2", "error message 4", "errorStack"} {
				require.Contains(tt, out, msg)
			}
			for _, field := range tc.ctxOut {
				require.Contains(tt, out, field)
			}
			require.NotContains(tt, out, "abc")

			w.Reset()
			logger.IncreaseLogLevel(zapcore.WarnLevel)
			require.Equal(tt, zapcore.WarnLevel.String(), logger.Level())
			logger.Logf(ParseLogLevel(""), "unprintable debug message")
			logger.Logf(ParseLogLevel(LogLevelInfo.String()), "unprintable info message")
			logger.Logf(ParseLogLevel(LogLevelWarn.String()), "printable warn message")
			logger.ErrorStackf(err1, "printable error %d", 6)
			require.NotContains(tt, w.String(), "unprintable")
			require.Contains(tt, w.String(), "printable warn message")
			require.Contains(tt, w.String(), "printable error 6")

			w.Reset()
			child := logger.Named("collection")
			child.Info("unprintable child info")
			logger.IncreaseLogLevel(zapcore.DebugLevel)
			require.Equal(tt, zapcore.DebugLevel.String(), child.Level())
			child.Info("printable child info")
			require.NotContains(tt, w.String(), "unprintable")
			require.Contains(tt, w.String(), "collection")
		})
	}
}

func TestXLogger_InvalidOption(t *testing.T) {
	require.Panics(t, func() {
		NewXLogger(WithXLoggerEncoder(_encMax))
	})
	require.Panics(t, func() {
		NewXLogger(WithXLoggerWriter(_writerMax))
	})
	require.NotPanics(t, func() {
		NewXLogger(nil, WithXLoggerLevelEncoder(nil), WithXLoggerTimeEncoder(nil), WithXLoggerContextFieldExtract(""))
	})
}

func TestXLogger_Zap_DataRace(t *testing.T) {
	logger, _ := newTestMemLogger(t)
	lvls := []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
	}
	n := int32(len(lvls))
	var wg sync.WaitGroup
	total := 10
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rng := randv2.Int32N(n)
				if i*total+j == 666 {
					logger.IncreaseLogLevel(lvls[rng])
				}
				logger.Logf(lvls[rng], "message i: %d; j: %d", i, j)
			}
		}(i)
	}
	wg.Wait()
	_ = logger.Sync()
}

func BenchmarkXLogger_Zap(b *testing.B) {
	logger := NewXLogger(WithXLoggerLevel(LogLevelInfo))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("message", zap.Int("i", i))
	}
	b.ReportAllocs()
}
