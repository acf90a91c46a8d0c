package main

import (
	"github.com/rgehrsitz/payrate/internal/output"
	"github.com/spf13/cobra"
)

func bracketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brackets [component...]",
		Short: "List the rate brackets in force on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := parseDateFlag(cmd)
			if err != nil {
				return err
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			table := s.store.Current()

			codes := parseCodes(args)
			if len(codes) == 0 {
				codes = table.ComponentCodes()
			}
			listings := make([]output.BracketListing, 0, len(codes))
			for _, code := range codes {
				brackets, err := table.Effective(code, asOf)
				if err != nil {
					return err
				}
				for i, b := range brackets {
					if until, ok := table.InForceUntil(code, b.ID); ok {
						brackets[i].EffectiveEnd = until
					}
				}
				listings = append(listings, output.BracketListing{
					Component: table.Component(code),
					AsOf:      asOf,
					Brackets:  brackets,
				})
			}

			format, _ := cmd.Flags().GetString("format")
			data, err := output.FormatBrackets(format, listings)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringP("date", "d", "", "Date YYYY-MM-DD (default: today)")
	return cmd
}
