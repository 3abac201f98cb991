package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/mpfile"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print a file's header and tier summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := mpfile.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			start, end := f.Coverage()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "body:      %s\n", f.Body())
			fmt.Fprintf(out, "quantity:  %s\n", f.Quantity())
			fmt.Fprintf(out, "coverage:  [%s, %s)\n",
				start.Format(time.RFC3339), end.Format(time.RFC3339))
			fmt.Fprintf(out, "generated: %s\n", f.Generated().Format(time.RFC3339))
			fmt.Fprintf(out, "blocks:    %d\n", f.BlockCount())
			for _, ts := range f.TierStats() {
				fmt.Fprintf(out, "tier %-8s %4d-day windows, %d blocks\n",
					ts.Tier, ts.Tier.WindowDays(), ts.Blocks)
			}

			return nil
		},
	}
}
