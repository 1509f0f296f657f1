package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// LogrusLogger é a implementação concreta da interface Logger sobre o logrus.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger cria e retorna uma nova instância do Logger.
// Em "development" usa saída texto; nos demais ambientes, JSON estruturado.
func NewLogger(level, env string) Logger {
	return newLogger(os.Stdout, level, env)
}

// NewNopLogger descarta toda saída. Usado em testes.
func NewNopLogger() Logger {
	return newLogger(io.Discard, "debug", "test")
}

func newLogger(out io.Writer, level, env string) Logger {
	l := logrus.New()
	l.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel // Default to info
	}
	l.SetLevel(lvl)

	if env == "development" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &LogrusLogger{entry: logrus.NewEntry(l).WithField("app", "gousers")}
}

// Implementações da Interface Logger

func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

// Fatal registra a mensagem e encerra o processo.
func (l *LogrusLogger) Fatal(msg string, err error) {
	l.entry.WithError(err).Fatal(msg)
}
