package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// ConsoleHook mirrors every entry to stdout. The async file writer is the
// primary output and may drop lines under pressure; the console copy keeps
// container logs usable regardless.
type ConsoleHook struct{}

func NewConsoleHook() *ConsoleHook {
	return &ConsoleHook{}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(line)
	return err
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
