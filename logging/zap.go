package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of zap. Selected when JSON log
// output is configured; the default console logger stays on the
// stdlib implementation.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	atom  zap.AtomicLevel
}

// NewZapLogger builds a production (JSON) zap logger adapted to the
// Logger interface.
func NewZapLogger() (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: base.Sugar(), atom: cfg.Level}, nil
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	z.sugar.Debugw(msg, kvPairs(fields)...)
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	z.sugar.Infow(msg, kvPairs(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	z.sugar.Warnw(msg, kvPairs(fields)...)
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	args := kvPairs(fields)
	if err != nil {
		args = append(args, "error", err.Error())
	}
	z.sugar.Errorw(msg, args...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{
		sugar: z.sugar.With(kvPairs([]Fields{fields})...),
		atom:  z.atom,
	}
}

func (z *ZapLogger) SetLevel(level Level) {
	switch level {
	case DebugLevel:
		z.atom.SetLevel(zapcore.DebugLevel)
	case InfoLevel:
		z.atom.SetLevel(zapcore.InfoLevel)
	case WarnLevel:
		z.atom.SetLevel(zapcore.WarnLevel)
	default:
		z.atom.SetLevel(zapcore.ErrorLevel)
	}
}

// kvPairs flattens Fields maps into zap's alternating key/value form.
func kvPairs(fields []Fields) []any {
	var args []any
	for _, f := range fields {
		for k, v := range f {
			args = append(args, k, v)
		}
	}
	return args
}
