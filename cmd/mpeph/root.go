package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/catalog"
	"github.com/ephemeralab/mpeph/format"
)

var logLevel string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mpeph",
		Short:         "Multi-precision ephemeris file tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace|debug|info|warn|error)")

	root.AddCommand(
		newGenerateCmd(),
		newInfoCmd(),
		newEvalCmd(),
		newRetrogradeCmd(),
		newAspectsCmd(),
		newServeCmd(),
	)

	return root
}

// newLogger builds a console logger at the requested level.
func newLogger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// seriesFlags resolves the --body and --quantity flags every series-scoped
// command shares.
func seriesFlags(bodyName, quantityName string) (format.Body, format.Quantity, error) {
	body, err := catalog.BodyByName(bodyName)
	if err != nil {
		return 0, 0, err
	}

	quantity, err := catalog.QuantityByName(quantityName)
	if err != nil {
		return 0, 0, err
	}

	return body, quantity, nil
}

func parseTimeFlag(name, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}

	return t, nil
}
