package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// levelRouter is a zerolog.LevelWriter that routes debug through warn to
// stdout and error+ to stderr.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr levelRouter) Write(p []byte) (int, error) {
	return lr.stdout.Write(p)
}

func (lr levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel && level != zerolog.NoLevel {
		return lr.stderr.Write(p)
	}
	return lr.stdout.Write(p)
}

// newLevelRouter builds the router for the given format. Console output is
// the human-readable zerolog.ConsoleWriter.
func newLevelRouter(stdout, stderr io.Writer, format string) levelRouter {
	if format == "console" {
		return levelRouter{
			stdout: zerolog.ConsoleWriter{Out: stdout, TimeFormat: "2006-01-02T15:04:05Z07:00"},
			stderr: zerolog.ConsoleWriter{Out: stderr, TimeFormat: "2006-01-02T15:04:05Z07:00"},
		}
	}
	return levelRouter{stdout: stdout, stderr: stderr}
}

// setupLogger configures the global logger. If logPath is non-empty, all
// levels are also written to that file. Returns a cleanup function that
// closes the log file (if opened).
func setupLogger(level, format, logPath string) (func(), error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var cleanup func()
	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(newLevelRouter(stdoutW, stderrW, format)).With().Timestamp().Logger()
	return cleanup, nil
}
