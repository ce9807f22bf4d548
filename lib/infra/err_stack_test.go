package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC + 1)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.want, fmt.Sprintf(tc.format, tc.Frame))
	}

	require.True(t, strings.HasPrefix(fmt.Sprintf("%v", initPC), "err_stack_test.go:"))
	text, err := Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

func TestErrorStack(t *testing.T) {
	base := errors.New("base")
	testcases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "new", err: NewErrorStack("boom"), wantMsg: "boom"},
		{name: "wrap", err: WrapErrorStack(base), wantMsg: "base"},
		{name: "wrap with message", err: WrapErrorStackWithMessage(base, "ctx"), wantMsg: "ctx: base"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.EqualError(tt, tc.err, tc.wantMsg)
			var es ErrorStack
			require.True(tt, errors.As(tc.err, &es))
			require.NotEmpty(tt, es.Frames())
			found := false
			for _, frame := range es.Frames() {
				if fmt.Sprintf("%s", frame) == "err_stack_test.go" {
					found = true
					break
				}
			}
			require.True(tt, found)

			enc := zapcore.NewMapObjectEncoder()
			require.NoError(tt, es.MarshalLogObject(enc))
			require.Equal(tt, tc.wantMsg, enc.Fields["error"])
			require.NotEmpty(tt, enc.Fields["errorStack"])
		})
	}

	require.ErrorIs(t, WrapErrorStackWithMessage(base, "ctx"), base)
	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "ctx"))

	es := NewErrorStack("keep")
	require.Same(t, es, WrapErrorStack(es))
}
