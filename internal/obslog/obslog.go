// Package obslog wires the process-wide zerolog logger: a colorized
// console writer when attached to a TTY, structured JSON otherwise, and
// an optional rotating file sink for long-running `serve`/`backfill`
// runs.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. verbose raises the level to
// Debug; logFile, when non-empty, additionally routes output through a
// lumberjack rotating writer.
func Init(verbose bool, logFile string) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	var consoleOut io.Writer = os.Stderr
	if isTerminal {
		consoleOut = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	writers := []io.Writer{consoleOut}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    16,
			MaxBackups: 10,
			MaxAge:     90,
			Compress:   true,
		})
	}

	var out io.Writer
	if len(writers) == 1 {
		out = writers[0]
	} else {
		out = zerolog.MultiLevelWriter(writers...)
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
