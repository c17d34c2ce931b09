package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cogfusion/pkg/nifti"
	"cogfusion/pkg/volume"
)

func newMeanCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "mean IMAGE...",
		Short: "Write the voxel-wise mean of the given images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vols, err := nifti.LoadVolumes(args)
			if err != nil {
				return err
			}
			mean, err := volume.Mean(vols)
			if err != nil {
				return err
			}
			if err := nifti.Write(output, mean); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote mean of %d images %v to %s\n", len(vols), mean.Shape, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "mean.nii.gz", "output image (.nii, .nii.gz, .hdr or .img)")
	return cmd
}
