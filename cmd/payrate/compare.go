package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/payrate/internal/compare"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [amount]",
		Short: "Compare deductions for one amount across pay dates",
		Long: `Evaluate one compensation amount on a base date and on each --against date,
and show how every component changed. Useful for previewing a new
contribution schedule or withholding table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			baseDate, err := parseDateFlag(cmd)
			if err != nil {
				return err
			}
			rawDates, _ := cmd.Flags().GetStringSlice("against")
			dates := make([]time.Time, 0, len(rawDates))
			for _, raw := range rawDates {
				asOf, err := domain.ParseDate(strings.TrimSpace(raw))
				if err != nil {
					return err
				}
				dates = append(dates, asOf)
			}
			rawCodes, _ := cmd.Flags().GetStringSlice("components")
			reference, _ := cmd.Flags().GetString("reference")

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			compSet, err := compare.NewCompareEngine(s.engine).Compare(cmd.Context(), compare.CompareOptions{
				Reference:  reference,
				Amount:     amount,
				BaseDate:   baseDate,
				Dates:      dates,
				Components: parseCodes(rawCodes),
			})
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			var out string
			switch strings.ToLower(format) {
			case "table", "console", "text":
				out = (&compare.TableFormatter{}).Format(compSet)
			case "compact":
				out = (&compare.TableFormatter{}).FormatCompact(compSet) + "\n"
			case "csv":
				out, err = (&compare.CSVFormatter{}).Format(compSet)
			case "json":
				out, err = (&compare.JSONFormatter{Indent: "  "}).Format(compSet)
			default:
				return fmt.Errorf("unsupported comparison format %q (table, compact, csv, json)", format)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringP("date", "d", "", "Base pay date YYYY-MM-DD (default: today)")
	cmd.Flags().StringSliceP("against", "a", nil, "Dates to compare against the base date")
	cmd.Flags().StringSliceP("components", "c", nil, "Component codes to evaluate (default: all)")
	cmd.Flags().StringP("reference", "r", "", "Reference printed with the result")
	_ = cmd.MarkFlagRequired("against")
	return cmd
}
