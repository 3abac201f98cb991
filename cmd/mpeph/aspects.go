package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/ephem"
	"github.com/ephemeralab/mpeph/finder"
	"github.com/ephemeralab/mpeph/mpfile"
)

func newAspectsCmd() *cobra.Command {
	var (
		startStr  string
		endStr    string
		stride    time.Duration
		tolerance time.Duration
	)

	cmd := &cobra.Command{
		Use:   "aspects FILE_A FILE_B",
		Short: "Find exact aspects between two longitude files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag("start", startStr)
			if err != nil {
				return err
			}
			end, err := parseTimeFlag("end", endStr)
			if err != nil {
				return err
			}

			fa, err := mpfile.Open(args[0])
			if err != nil {
				return err
			}
			defer fa.Close()

			fb, err := mpfile.Open(args[1])
			if err != nil {
				return err
			}
			defer fb.Close()

			pa, err := ephem.FromFile(fa)
			if err != nil {
				return err
			}
			pb, err := ephem.FromFile(fb)
			if err != nil {
				return err
			}

			events, err := finder.Aspects(cmd.Context(), pa, pb, finder.MajorAspects(), start, end,
				finder.WithStride(stride), finder.WithTolerance(tolerance))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ev := range events {
				fmt.Fprintf(out, "%s  %s %s %s\n",
					ev.Time.UTC().Format(time.RFC3339), fa.Body(), ev.Aspect, fb.Body())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "search start (RFC 3339)")
	cmd.Flags().StringVar(&endStr, "end", "", "search end (RFC 3339)")
	cmd.Flags().DurationVar(&stride, "stride", 24*time.Hour, "coarse scan stride")
	cmd.Flags().DurationVar(&tolerance, "tolerance", time.Minute, "event time tolerance")

	for _, f := range []string{"start", "end"} {
		if err := cmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}

	return cmd
}
