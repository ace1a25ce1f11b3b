package gridloader

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

func newLogger(pretty bool, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), xerrors.Errorf("failed to parse log level %q: %w", level, err)
	}

	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
