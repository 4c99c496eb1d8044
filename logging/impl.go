package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	name    string
	level   zap.AtomicLevel
	sugared *zap.SugaredLogger
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	zapcore.ISO8601TimeEncoder(t.UTC(), enc)
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	return &impl{
		name:    newName,
		level:   imp.level,
		sugared: imp.sugared.Named(subname),
	}
}

func (imp *impl) SetLevel(level zapcore.Level) {
	imp.level.SetLevel(level)
}

func (imp *impl) Level() zapcore.Level {
	return imp.level.Level()
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.sugared
}

func (imp *impl) Sync() error {
	return imp.sugared.Sync()
}

func (imp *impl) Debug(args ...interface{}) {
	imp.sugared.Debug(args...)
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	imp.sugared.Debugf(template, args...)
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Debugw(msg, keysAndValues...)
}

func (imp *impl) Info(args ...interface{}) {
	imp.sugared.Info(args...)
}

func (imp *impl) Infof(template string, args ...interface{}) {
	imp.sugared.Infof(template, args...)
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.sugared.Infow(msg, keysAndValues...)
}

func (imp *impl) Warn(args ...interface{}) {
	imp.sugared.Warn(args...)
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	imp.sugared.Warnf(template, args...)
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Warnw(msg, keysAndValues...)
}

func (imp *impl) Error(args ...interface{}) {
	imp.sugared.Error(args...)
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	imp.sugared.Errorf(template, args...)
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.sugared.Errorw(msg, keysAndValues...)
}
