package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// fileHook mirrors every entry into the run log file as JSON, independent of
// the text formatter used on the console.
type fileHook struct {
	file      *os.File
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.file.Write(line)
	return err
}

// New builds the run logger: text on stderr, JSON in logs/run-<ts>.log.
// The returned closer flushes and closes the log file.
func New(logsDir string, debug bool) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create logs dir: %w", err)
	}

	name := fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405"))
	file, err := os.OpenFile(filepath.Join(logsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log: %w", err)
	}

	logger.AddHook(&fileHook{
		file:      file,
		formatter: &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
	})

	return logger, file.Close, nil
}
