package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cogfusion/pkg/nifti"
	"cogfusion/pkg/visualization"
)

func newSlicesCmd(a *app) *cobra.Command {
	var (
		axis string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "slices IMAGE",
		Short: "Render an image as JPEG slices for visual inspection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := nifti.Load(args[0])
			if err != nil {
				return err
			}
			viewer, err := visualization.NewViewer(v)
			if err != nil {
				return err
			}

			axes := []string{axis}
			if axis == "all" {
				axes = []string{"x", "y", "z"}
			}
			for _, ax := range axes {
				dir := filepath.Join(out, ax)
				n, err := viewer.SaveSliceSequence(ax, dir)
				if err != nil {
					return fmt.Errorf("save %s-axis slices: %w", ax, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d %s-axis slices to %s\n", n, ax, dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&axis, "axis", "all", "slice axis: x, y, z or all")
	cmd.Flags().StringVar(&out, "out", "slices", "output directory")
	return cmd
}
