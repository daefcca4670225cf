package utils

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures the shared JSON logger. In production the output goes
// to LOG_DIR/app.log, everywhere else to stdout.
func InitLogger() {
	Logger.SetReportCaller(true)
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
		},
	})

	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.SetOutput(logOutput(os.Getenv("APP_ENV"), GetEnv("LOG_DIR", "logs")))
}

func logOutput(env, dir string) io.Writer {
	if env != "production" {
		return os.Stdout
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		Logger.WithError(err).Warn("Failed to create logs directory, using stdout instead")
		return os.Stdout
	}

	file, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Logger.WithError(err).Warn("Failed to log to file, using stdout instead")
		return os.Stdout
	}
	return file
}
