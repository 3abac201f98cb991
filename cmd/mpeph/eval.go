package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ephemeralab/mpeph/mpfile"
)

func newEvalCmd() *cobra.Command {
	var atStr string

	cmd := &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a file's quantity at a point in time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseTimeFlag("at", atStr)
			if err != nil {
				return err
			}

			f, err := mpfile.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			v, err := f.Evaluate(at)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%.12g\n", v)

			return nil
		},
	}

	cmd.Flags().StringVar(&atStr, "at", "", "evaluation time (RFC 3339)")
	if err := cmd.MarkFlagRequired("at"); err != nil {
		panic(err)
	}

	return cmd
}
