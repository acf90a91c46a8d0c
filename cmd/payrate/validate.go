package main

import (
	"fmt"

	"github.com/rgehrsitz/payrate/internal/config"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [seed-path]",
		Short: "Check a seed file or directory without evaluating anything",
		Long: `Load a seed and build a rate table from it. Overlapping ranges, missing or
duplicated top brackets and progressive discontinuities are reported. Without
an argument the --seed path (or the built-in tables) is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("seed")
			if len(args) == 1 {
				path = args[0]
			}
			table, err := config.NewSeedParser().LoadTable(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rate table OK: %d components, %d brackets\n", len(table.ComponentCodes()), table.BracketCount())
			currency := table.Currency()
			if currency == "" {
				currency = "unspecified"
			}
			fmt.Fprintf(out, "  currency %s, built %s\n", currency, table.LoadedAt().Format("2006-01-02 15:04:05 MST"))
			for _, code := range table.ComponentCodes() {
				c := table.Component(code)
				starts := table.Generations(code)
				dates := make([]string, 0, len(starts))
				for _, s := range starts {
					dates = append(dates, domain.FormatDate(s))
				}
				kind := "mandatory"
				if c.Optional {
					kind = "optional"
				}
				fmt.Fprintf(out, "  %-12s %-10s generations from %v\n", code, kind, dates)
			}
			return nil
		},
	}
}
