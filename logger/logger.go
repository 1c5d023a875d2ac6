package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger. It is usable before Init is called.
var Log = logrus.New()

// Init configures the global logger. Production gets JSON lines, everything else text.
func Init(level string, environment string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if environment == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// SetOutput redirects log output, mostly for tests
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// Security logs security-related events under a dedicated field
func Security(event, userID, details string) {
	Log.WithFields(logrus.Fields{
		"security": event,
		"user_id":  userID,
	}).Warn(details)
}
