package rangecal

import (
	"fmt"
	"strings"

	"github.com/hhkbp2/go-logging"
)

// LoggerName is the go-logging logger used by this package.
const LoggerName = "rangecal"

// SetLogLevel sets the package log level: DEBUG, INFO, WARN, ERROR or CRITICAL.
func SetLogLevel(level string) error {
	logger := logging.GetLogger(LoggerName)
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		logger.SetLevel(logging.LevelDebug)
	case "INFO":
		logger.SetLevel(logging.LevelInfo)
	case "WARN":
		logger.SetLevel(logging.LevelWarn)
	case "ERROR":
		logger.SetLevel(logging.LevelError)
	case "CRITICAL":
		logger.SetLevel(logging.LevelCritical)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
