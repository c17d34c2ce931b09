package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cogfusion/internal/report"
	"cogfusion/pkg/nifti"
	"cogfusion/pkg/similarity"
	"cogfusion/pkg/smoothing"
)

// Inputs of the reference validation run.
var (
	harnessImages = []string{"original/3153.nii.gz", "original/3154.nii.gz", "original/3155.nii.gz"}
	harnessMasks  = []string{"EPI_MASK_NOEYES.img"}
)

// Labels printed before each result, as in the reference run's output.
const (
	harnessAverageLabel  = "contrastDocProductAvg"
	harnessPairwiseLabel = "contrastAvgDocProduct"
)

func newHarnessCmd(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "harness",
		Short: "Run the reference comparison on the bundled validation images",
		Long: `Run the reference comparison on the validation images.

The directory must hold original/3153.nii.gz, original/3154.nii.gz,
original/3155.nii.gz and the EPI_MASK_NOEYES.hdr/img pair. Expected output:
a self-similarity of 1 and the pairwise sequence
[1, 0.964, 0.470, 0.964, 1, 0.477, 0.470, 0.477, 1].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			join := func(names []string) []string {
				out := make([]string, len(names))
				for i, n := range names {
					out[i] = filepath.Join(dir, n)
				}
				return out
			}

			fmt.Fprintln(w, report.PyList(harnessImages))
			fmt.Fprintln(w, report.PyList(harnessMasks))

			images, err := nifti.LoadVolumes(join(harnessImages))
			if err != nil {
				return err
			}
			masks, err := nifti.LoadVolumes(join(harnessMasks))
			if err != nil {
				return err
			}
			mask, err := similarity.FirstMask(masks)
			if err != nil {
				return err
			}

			e := a.engine()
			fmt.Fprintf(w, "testing %s\n", harnessAverageLabel)
			score, err := e.AverageThenCompare(cmd.Context(), images, images, mask, smoothing.Sigma{}, smoothing.Sigma{})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, score)

			fmt.Fprintf(w, "testing %s\n", harnessPairwiseLabel)
			scores, err := e.CompareThenAverage(cmd.Context(), images, images, mask, smoothing.Sigma{}, smoothing.Sigma{})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, report.FloatList(scores))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory holding the validation images")
	return cmd
}
