package logger

import (
	"log/slog"
	"time"

	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultSampleInitial    = 100
	defaultSampleThereafter = 10
)

func zapEncoder(cfg Config) zapcore.Encoder {
	ec := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if cfg.AddSource {
		ec.CallerKey = "caller"
		ec.EncodeCaller = zapcore.ShortCallerEncoder
	}
	if cfg.Env == EnvDev {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func newZapHandler(cfg Config) slog.Handler {
	lvl := cfg.level()
	core := zapcore.NewCore(zapEncoder(cfg), zapcore.AddSync(cfg.Output), zapLevel(lvl))

	// рассылки по треду пишут много одинаковых строк; отрицательное значение выключает sampling
	if cfg.SampleInitial >= 0 {
		initial, thereafter := cfg.SampleInitial, cfg.SampleThereafter
		if initial == 0 {
			initial = defaultSampleInitial
		}
		if thereafter <= 0 {
			thereafter = defaultSampleThereafter
		}
		core = zapcore.NewSamplerWithOptions(core, time.Second, initial, thereafter)
	}

	z := zap.New(core, zap.WithCaller(cfg.AddSource), zap.AddCallerSkip(1))
	return slogzap.Option{Level: lvl, Logger: z}.NewZapHandler()
}

// zapLevel: шаг уровней slog - 4, zap - 1.
func zapLevel(lvl slog.Level) zapcore.Level {
	l := zapcore.Level(lvl / 4)
	if l < zapcore.DebugLevel {
		return zapcore.DebugLevel
	}
	if l > zapcore.ErrorLevel {
		return zapcore.ErrorLevel
	}
	return l
}
