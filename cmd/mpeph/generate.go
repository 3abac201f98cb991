package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/horizons"
	"github.com/ephemeralab/mpeph/mpfile"
	"github.com/ephemeralab/mpeph/samplecache"
)

func newGenerateCmd() *cobra.Command {
	var (
		sourceURL string
		cacheDir  string
		bodyName  string
		quantName string
		startStr  string
		endStr    string
		outPath   string
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fit and write a multi-precision file from a remote sample source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			body, quantity, err := seriesFlags(bodyName, quantName)
			if err != nil {
				return err
			}

			start, err := parseTimeFlag("start", startStr)
			if err != nil {
				return err
			}
			end, err := parseTimeFlag("end", endStr)
			if err != nil {
				return err
			}

			var src mpfile.SampleSource
			client, err := horizons.NewClient(sourceURL)
			if err != nil {
				return err
			}
			src = client

			if cacheDir != "" {
				src, err = samplecache.New(client, samplecache.WithDiskDir(cacheDir))
				if err != nil {
					return err
				}
			}

			opts := []mpfile.GeneratorOption{mpfile.WithLogger(logger)}
			if workers > 0 {
				opts = append(opts, mpfile.WithFitWorkers(workers))
			}

			gen, err := mpfile.NewGenerator(src, opts...)
			if err != nil {
				return err
			}

			if err := gen.GenerateFile(cmd.Context(), body, quantity, start, end, outPath); err != nil {
				return err
			}

			logger.Info().Str("path", outPath).Msg("file written")

			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURL, "source", "", "sample service base URL")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "optional on-disk raw-sample cache directory")
	cmd.Flags().StringVar(&bodyName, "body", "", "body name, e.g. mars")
	cmd.Flags().StringVar(&quantName, "quantity", "ecliptic-longitude", "quantity name")
	cmd.Flags().StringVar(&startStr, "start", "", "coverage start (RFC 3339)")
	cmd.Flags().StringVar(&endStr, "end", "", "coverage end, exclusive (RFC 3339)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path")
	cmd.Flags().IntVar(&workers, "fit-workers", 0, "fit worker count (default GOMAXPROCS)")

	for _, f := range []string{"source", "body", "start", "end", "out"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(fmt.Sprintf("mark flag required: %v", err))
		}
	}

	return cmd
}
