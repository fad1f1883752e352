package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Interface interface {
	Debug(message interface{}, args ...interface{})
	Info(message string, args ...interface{})
	Warn(message string, args ...interface{})
	Error(message interface{}, args ...interface{})
	Fatal(message interface{}, args ...interface{})
	With(keysAndValues ...interface{}) Interface
}

type Logger struct {
	sugar *zap.SugaredLogger
}

var _ Interface = (*Logger)(nil)

func New(level string, opts ...Option) *Logger {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := parseLevel(level)

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stdout), lvl),
	}

	if o.file != "" {
		rotator := &lumberjack.Logger{
			Filename:   o.file,
			MaxSize:    o.maxSizeMB,
			MaxBackups: o.maxBackups,
			MaxAge:     o.maxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotator), lvl))
	}

	return newWithCore(zapcore.NewTee(cores...))
}

func newWithCore(core zapcore.Core) *Logger {
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))

	return &Logger{sugar: z.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(message interface{}, args ...interface{}) {
	l.msg(zapcore.DebugLevel, message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.log(zapcore.InfoLevel, message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.log(zapcore.WarnLevel, message, args...)
}

func (l *Logger) Error(message interface{}, args ...interface{}) {
	l.msg(zapcore.ErrorLevel, message, args...)
}

func (l *Logger) Fatal(message interface{}, args ...interface{}) {
	l.msg(zapcore.FatalLevel, message, args...)

	os.Exit(1)
}

func (l *Logger) With(keysAndValues ...interface{}) Interface {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

// msg accepts either a format string or an error. For an error the first
// string argument, if any, becomes the log message and the error is attached
// as a field: l.Error(err, "Component - Method - callee").
func (l *Logger) msg(level zapcore.Level, message interface{}, args ...interface{}) {
	switch m := message.(type) {
	case error:
		text := m.Error()
		if len(args) > 0 {
			if format, ok := args[0].(string); ok {
				text = format
				if len(args) > 1 {
					text = fmt.Sprintf(format, args[1:]...)
				}
			}
		}
		if ce := l.sugar.Desugar().Check(level, text); ce != nil {
			ce.Write(zap.Error(m))
		}
	case string:
		l.log(level, m, args...)
	default:
		l.log(level, fmt.Sprintf("%s message %v has unknown type %T", level, message, m))
	}
}

func (l *Logger) log(level zapcore.Level, message string, args ...interface{}) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	if ce := l.sugar.Desugar().Check(level, message); ce != nil {
		ce.Write()
	}
}
