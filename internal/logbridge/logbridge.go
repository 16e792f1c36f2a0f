// Package logbridge routes pion/logging output of the dsrtp packages into logrus.
package logbridge

import (
	"github.com/pion/logging"
	log "github.com/sirupsen/logrus"
)

// Factory is a logging.LoggerFactory backed by a logrus logger. Each scope
// becomes a "scope" field on every entry.
type Factory struct {
	Logger *log.Logger
}

var _ logging.LoggerFactory = Factory{}

// New returns a Factory for l, or for the logrus standard logger when l is nil.
func New(l *log.Logger) Factory {
	if l == nil {
		l = log.StandardLogger()
	}
	return Factory{Logger: l}
}

func (f Factory) NewLogger(scope string) logging.LeveledLogger {
	return leveled{entry: f.Logger.WithField("scope", scope)}
}

type leveled struct {
	entry *log.Entry
}

func (l leveled) Trace(msg string)                          { l.entry.Trace(msg) }
func (l leveled) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }
func (l leveled) Debug(msg string)                          { l.entry.Debug(msg) }
func (l leveled) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l leveled) Info(msg string)                           { l.entry.Info(msg) }
func (l leveled) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l leveled) Warn(msg string)                           { l.entry.Warn(msg) }
func (l leveled) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l leveled) Error(msg string)                          { l.entry.Error(msg) }
func (l leveled) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
