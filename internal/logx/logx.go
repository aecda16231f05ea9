// Package logx builds the launcher's diagnostic logger. Everything goes to
// stderr: stdout belongs to the launched tool and may carry a structured
// wire protocol.
package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger. Verbose mode lowers the level to debug so
// background refresh activity becomes visible; the default only surfaces
// warnings.
func New(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "pkgrun").Logger()
}

// Nop returns a logger that discards everything.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
