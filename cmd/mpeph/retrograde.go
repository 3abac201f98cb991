package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/ephem"
	"github.com/ephemeralab/mpeph/finder"
	"github.com/ephemeralab/mpeph/mpfile"
)

func newRetrogradeCmd() *cobra.Command {
	var (
		startStr  string
		endStr    string
		stride    time.Duration
		tolerance time.Duration
	)

	cmd := &cobra.Command{
		Use:   "retrograde FILE",
		Short: "Find retrograde stations in a longitude file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag("start", startStr)
			if err != nil {
				return err
			}
			end, err := parseTimeFlag("end", endStr)
			if err != nil {
				return err
			}

			f, err := mpfile.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			producer, err := ephem.FromFile(f)
			if err != nil {
				return err
			}

			stations, err := finder.Retrogrades(cmd.Context(), producer, start, end,
				finder.WithStride(stride), finder.WithTolerance(tolerance))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, st := range stations {
				dir := "direct"
				if st.Retrograde {
					dir = "retrograde"
				}
				fmt.Fprintf(out, "%s  %s turns %s\n",
					st.Time.UTC().Format(time.RFC3339), f.Body(), dir)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "search start (RFC 3339)")
	cmd.Flags().StringVar(&endStr, "end", "", "search end (RFC 3339)")
	cmd.Flags().DurationVar(&stride, "stride", 24*time.Hour, "coarse scan stride")
	cmd.Flags().DurationVar(&tolerance, "tolerance", time.Minute, "station time tolerance")

	for _, f := range []string{"start", "end"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}

	return cmd
}
