package utils

import (
	"os" // Standard output

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// InitLogger configures the global logrus logger
func InitLogger(level string, prod bool) {
	logrus.SetOutput(os.Stdout)
	if prod {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"}) // Machine readable in production
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
