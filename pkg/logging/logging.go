package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Module tags, one per layer.
const (
	HAL = "HAL"
	SYS = "SYS"
	APP = "APP"
	MAI = "MAI"
)

var base = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// For returns a logger tagged with the given module name.
func For(module string) *logrus.Entry {
	return base.WithField("module", module)
}

// SetLevel parses and applies a level name such as "debug" or "warn".
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lvl)
	return nil
}

// SetOutput redirects all module loggers.
func SetOutput(out io.Writer) {
	base.SetOutput(out)
}
