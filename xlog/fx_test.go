package xlog

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxevent"
)

func TestFxXLogger_LogEvent(t *testing.T) {
	logger, w := newTestMemLogger(t, WithXLoggerLevel(LogLevelDebug))
	fxLogger := NewFxXLogger(logger)

	errBoom := errors.New("boom")
	testcases := []struct {
		name     string
		event    fxevent.Event
		contains string
	}{
		{name: "on start", event: &fxevent.OnStartExecuting{FunctionName: "start", CallerName: "main"}, contains: "HOOK OnStart"},
		{name: "on start failed", event: &fxevent.OnStartExecuted{FunctionName: "start", Runtime: time.Second, Err: errBoom}, contains: "HOOK OnStart executed failed"},
		{name: "on stop", event: &fxevent.OnStopExecuted{FunctionName: "stop", Runtime: time.Millisecond}, contains: "HOOK OnStop executed"},
		{name: "supplied", event: &fxevent.Supplied{TypeName: "*config.Config"}, contains: "SUPPLY"},
		{name: "provided", event: &fxevent.Provided{OutputTypeNames: []string{"xlog.XLogger"}, ConstructorName: "NewXLogger"}, contains: "xlog.XLogger"},
		{name: "decorated failed", event: &fxevent.Decorated{Err: errBoom}, contains: "DECORATE failed"},
		{name: "invoking", event: &fxevent.Invoking{FunctionName: "run"}, contains: "INVOKING"},
		{name: "stopping", event: &fxevent.Stopping{Signal: os.Interrupt}, contains: "STOPPING"},
		{name: "rolling back", event: &fxevent.RollingBack{StartErr: errBoom}, contains: "rolling back"},
		{name: "started", event: &fxevent.Started{}, contains: "RUNNING"},
		{name: "logger initialized", event: &fxevent.LoggerInitialized{ConstructorName: "NewFxXLogger"}, contains: "LOGGER initialized"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			w.Reset()
			fxLogger.LogEvent(tc.event)
			require.Contains(tt, w.String(), tc.contains)
			require.Contains(tt, w.String(), `"component":"Fx"`)
			require.NotContains(tt, w.String(), "callAt")
		})
	}

	var nilLogger *FxXLogger
	require.NotPanics(t, func() {
		nilLogger.LogEvent(&fxevent.Started{})
	})
}
