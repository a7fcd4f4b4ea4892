package wsocket

// Logger is the logging surface the socket and its connections write lifecycle notices to.
// Its shape matches logrus' FieldLogger closely enough that most structured loggers can be
// adapted with a thin wrapper, see NewZerologLogger.
type Logger interface {
	WithField(key string, value any) Logger
	Debug(args ...any)
	Debugf(format string, args ...any)
	Debugln(args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Infoln(args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Warnln(args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	Errorln(args ...any)
}
