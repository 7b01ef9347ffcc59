package main

import "log/slog"

// slogLogger adapts *slog.Logger to the Logger interfaces the library
// packages accept.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.l.Debug(msg, keysAndValues...)
}

func (s slogLogger) Info(msg string, keysAndValues ...interface{}) {
	s.l.Info(msg, keysAndValues...)
}

func (s slogLogger) Error(msg string, keysAndValues ...interface{}) {
	s.l.Error(msg, keysAndValues...)
}
