package main

import (
	"fmt"
	"io"

	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [amount]",
		Short: "Compute deductions for one compensation amount",
		Long: `Compute employee and employer amounts for each statutory component in force
on the given date. Without --components every configured component is
evaluated; optional components with no applicable bracket are skipped with a
warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			asOf, err := parseDateFlag(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetStringSlice("components")
			reference, _ := cmd.Flags().GetString("reference")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			basis := domain.CompensationBasis{Reference: reference, Amount: amount, AsOf: asOf}
			eval, err := s.engine.EvaluateComponents(basis, parseCodes(raw))
			if err != nil {
				return err
			}

			report := output.NewTableReport("Statutory deductions", []domain.Evaluation{*eval}, s.store.Current())
			return render(cmd, report)
		},
	}
	cmd.Flags().StringP("date", "d", "", "Pay date YYYY-MM-DD (default: today)")
	cmd.Flags().StringSliceP("components", "c", nil, "Component codes to evaluate (default: all)")
	cmd.Flags().StringP("reference", "r", "", "Reference printed with the result")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

// render writes the report in the --format format. Binary formats, and any
// format when --output is set, go to a file.
func render(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("output")

	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unknown format %q (available: %v)", format, output.FormatterNames())
	}
	if path != "" || output.IsBinary(format) {
		written, err := output.WriteFormatted(f, report, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", written)
		return nil
	}

	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	return write(cmd.OutOrStdout(), data)
}

func write(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}
