package common

import (
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/text"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupLogging configures the process-wide apex logger. With an empty file
// the colored cli handler writes to stderr, otherwise the text handler
// writes to a size-rotated file. The returned closer releases the file.
func SetupLogging(level, file string) io.Closer {
	var closer io.Closer = nopCloser{}
	if file == "" {
		log.SetHandler(cli.New(os.Stderr))
	} else {
		w := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		log.SetHandler(text.New(w))
		closer = w
	}

	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		log.Warnf("Unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	return closer
}
