package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/payrate/internal/calculation"
	"github.com/rgehrsitz/payrate/internal/config"
	"github.com/rgehrsitz/payrate/internal/domain"
	"github.com/rgehrsitz/payrate/internal/ratetable"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var logLevels = map[string]logrus.Level{
	"trace": logrus.TraceLevel,
	"debug": logrus.DebugLevel,
	"info":  logrus.InfoLevel,
	"warn":  logrus.WarnLevel,
	"error": logrus.ErrorLevel,
	"off":   logrus.PanicLevel,
}

// newLogger returns the engine logger. *logrus.Entry already satisfies
// calculation.Logger.
func newLogger(w io.Writer, level string) (*logrus.Entry, error) {
	lvl, ok := logLevels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		names := lo.Keys(logLevels)
		sort.Strings(names)
		return nil, fmt.Errorf("log level must be one of %v", names)
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l.WithField("module", "payrate"), nil
}

// session is the rate table and engine shared by one command invocation.
type session struct {
	store  *ratetable.Store
	engine *calculation.Engine
	log    *logrus.Entry
}

func openSession(cmd *cobra.Command) (*session, error) {
	seedPath, _ := cmd.Flags().GetString("seed")
	level, _ := cmd.Flags().GetString("log-level")

	log, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, err
	}

	store := ratetable.NewStore(nil)
	parser := config.NewSeedParser()
	table, err := store.Refresh(func() (*ratetable.Table, error) { return parser.LoadTable(seedPath) })
	if err != nil {
		return nil, err
	}
	source := seedPath
	if source == "" {
		source = "built-in tables"
	}
	log.Debugf("loaded rate table v%d from %s at %s: %d components, %d brackets",
		table.Version(), source, table.LoadedAt().Format(time.RFC3339), len(table.ComponentCodes()), table.BracketCount())

	engine := calculation.NewEngine(store)
	engine.SetLogger(log)
	return &session{store: store, engine: engine, log: log}, nil
}

func parseDateFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return domain.DateOf(time.Now()), nil
	}
	return domain.ParseDate(s)
}

func parseCodes(raw []string) []domain.ComponentCode {
	codes := make([]domain.ComponentCode, 0, len(raw))
	for _, r := range raw {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			codes = append(codes, domain.ComponentCode(r))
		}
	}
	return codes
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "payrate %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "payrate",
		Short:         "Statutory payroll deduction calculator",
		Long:          "Resolve effective-dated rate brackets and compute employee and employer statutory deductions and withholding tax for a compensation amount.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("seed", "", "Seed file or directory of seed files (default: built-in tables)")
	root.PersistentFlags().String("log-level", "warn", "Log level: trace, debug, info, warn, error, off")
	root.PersistentFlags().StringP("format", "f", "table", "Output format: table, csv, json, xlsx, pdf")

	root.AddCommand(evaluateCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(bracketsCmd())
	root.AddCommand(compareCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
