package main

import (
	"fmt"

	"github.com/rgehrsitz/payrate/internal/calculation"
	"github.com/rgehrsitz/payrate/internal/config"
	"github.com/rgehrsitz/payrate/internal/output"
	"github.com/spf13/cobra"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [batch-file]",
		Short: "Compute deductions for every line of a payroll batch file",
		Long: `Evaluate every compensation line of a YAML batch file against one rate
table snapshot. Lines are evaluated concurrently and reported in file order.
The first line that fails aborts the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.LoadBasisFile(args[0])
			if err != nil {
				return err
			}
			workers, _ := cmd.Flags().GetInt("workers")
			codes := file.Components
			if raw, _ := cmd.Flags().GetStringSlice("components"); len(raw) > 0 {
				codes = parseCodes(raw)
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			evals, err := calculation.NewBatchEvaluator(s.engine, workers).EvaluateAll(cmd.Context(), file.Bases(), codes)
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Payroll deductions: %s", args[0])
			return render(cmd, output.NewTableReport(title, evals, s.store.Current()))
		},
	}
	cmd.Flags().IntP("workers", "w", 0, "Concurrent evaluations (default: GOMAXPROCS)")
	cmd.Flags().StringSliceP("components", "c", nil, "Component codes to evaluate (overrides the file)")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}
