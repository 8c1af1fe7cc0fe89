// Package logging builds the console logger used by the s3-utils binary.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Quiet suppresses everything below error level
	Quiet bool

	// Verbose enables debug level, ignored when Quiet is set
	Verbose bool

	// Level is the default level name, "info" when empty
	Level string

	// Stdout receives entries below error level, os.Stdout when nil
	Stdout io.Writer

	// Stderr receives error entries and above, os.Stderr when nil
	Stderr io.Writer

	// NoColor disables ANSI colors
	NoColor bool
}

// New creates a console logger. Errors go to Stderr and everything else to
// Stdout.
func New(opts Options) zerolog.Logger {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	writer := SplitWriter{
		Out: console(stdout, opts.NoColor),
		Err: console(stderr, opts.NoColor),
	}

	return zerolog.New(writer).
		Level(level(opts)).
		With().
		Timestamp().
		Logger()
}

func console(w io.Writer, noColor bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

func level(opts Options) zerolog.Level {
	switch {
	case opts.Quiet:
		return zerolog.ErrorLevel
	case opts.Verbose:
		return zerolog.DebugLevel
	}

	if opts.Level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SplitWriter routes entries by level: error and above to Err, the rest
// to Out.
type SplitWriter struct {
	Out io.Writer
	Err io.Writer
}

var _ zerolog.LevelWriter = SplitWriter{}

// Write implements io.Writer for entries without a level.
func (s SplitWriter) Write(p []byte) (int, error) {
	return s.Out.Write(p)
}

// WriteLevel implements zerolog.LevelWriter.
func (s SplitWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l >= zerolog.ErrorLevel && l != zerolog.NoLevel {
		return s.Err.Write(p)
	}
	return s.Out.Write(p)
}

// Elapsed rounds a duration for display.
func Elapsed(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(10 * time.Millisecond)
}
