package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

// FxXLogger prints the fx lifecycle events as the "Fx" component.
type FxXLogger struct {
	logger XLogger
}

func (l *FxXLogger) hook(kind, function, caller string, runtime int64, err error) {
	fields := []zap.Field{
		zap.String("function", function),
		zap.String("caller", caller),
	}
	if runtime >= 0 {
		fields = append(fields, zap.Int64("in", runtime))
	}
	if err != nil {
		l.logger.Error(err, "HOOK "+kind+" failed", fields...)
		return
	}
	l.logger.Debug("HOOK "+kind, fields...)
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.hook("OnStart", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStartExecuted:
		l.hook("OnStart executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.OnStopExecuting:
		l.hook("OnStop", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStopExecuted:
		l.hook("OnStop executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error(e.Err, "SUPPLY failed",
				zap.String("type", e.TypeName),
				zap.Strings("stacktrace", e.StackTrace),
			)
			return
		}
		l.logger.Debug("SUPPLY",
			zap.String("type", e.TypeName),
			zap.String("module", e.ModuleName),
		)
	case *fxevent.Provided:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("PROVIDE",
				zap.Bool("private", e.Private),
				zap.String("rtype", rtype),
				zap.String("constructor", e.ConstructorName),
				zap.String("module", e.ModuleName),
			)
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "PROVIDE failed",
				zap.Strings("stacktrace", e.StackTrace),
			)
		}
	case *fxevent.Decorated:
		for _, rtype := range e.OutputTypeNames {
			l.logger.Debug("DECORATE",
				zap.String("rtype", rtype),
				zap.String("decorator", e.DecoratorName),
				zap.String("module", e.ModuleName),
			)
		}
		if e.Err != nil {
			l.logger.Error(e.Err, "DECORATE failed",
				zap.Strings("stacktrace", e.StackTrace),
			)
		}
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING",
			zap.String("function", e.FunctionName),
			zap.String("module", e.ModuleName),
		)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Error(e.StartErr, "START failed, rolling back")
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
			return
		}
		l.logger.Debug("RUNNING")
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
			return
		}
		l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
	default:
	}
}

// NewFxXLogger shares the writer and the dynamic level with the logger.
func NewFxXLogger(logger XLogger) *FxXLogger {
	l := &xLogger{}
	if xl, ok := logger.(*xLogger); ok {
		l.ctxFields = xl.ctxFields
		l.dynamicLevelEnabler = xl.dynamicLevelEnabler
		l.writer, l.encoder = xl.writer, xl.encoder
	}
	l.logger.Store(logger.
		zap().
		Named("Fx").
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			switch c := core.(type) {
			case xLogMultiCore:
				return WrapCores(c, componentCoreEncoderCfg())
			case XLogCore:
				return WrapCore(c, componentCoreEncoderCfg())
			default:
			}
			return core
		})),
	)
	return &FxXLogger{logger: l}
}
