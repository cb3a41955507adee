// Package cli holds the cobra commands of the tripindex binary.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/gostonefire/tripindex"
	"github.com/gostonefire/tripindex/aggregate"
	"github.com/gostonefire/tripindex/config"
	"github.com/gostonefire/tripindex/filter"
	"github.com/gostonefire/tripindex/internal/logging"
)

type app struct {
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
	closeLog   func() error
}

// NewRootCommand - Builds the tripindex command tree
func NewRootCommand() *cobra.Command {
	a := &app{closeLog: func() error { return nil }}

	root := &cobra.Command{
		Use:           "tripindex",
		Short:         "Out-of-core index and query engine for trip CSV datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			a.cfg, err = config.Load(a.configFile)
			if err != nil {
				return
			}
			a.logger, a.closeLog, err = logging.New(a.cfg.Log, cmd.ErrOrStderr())
			return
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config.yaml if present)")

	root.AddCommand(
		a.buildCommand(),
		a.filterCommand(),
		a.statsCommand(),
		a.topCommand(),
		a.reportCommand(),
		a.lookupCommand(),
	)

	return root
}

func (a *app) options() []tripindex.Option {
	return []tripindex.Option{
		tripindex.WithTableConf(a.cfg.TableConf("", a.logger)),
		tripindex.WithReaderOptions(a.cfg.ReaderOptions(a.logger)...),
		tripindex.WithLogger(a.logger),
	}
}

func (a *app) buildCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "build <source.csv>",
		Short: "Build the on-disk index from a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Index.Dir
			}
			count, err := tripindex.BuildIndex(args[0], dir, a.options()...)
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records into %s\n", count, dir)
			return err
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "index directory (default index.dir)")
	return cmd
}

func (a *app) filterCommand() *cobra.Command {
	var where string
	var maxResults int
	cmd := &cobra.Command{
		Use:   "filter <source.csv> <dest.csv>",
		Short: "Write the records matching a filter to a new CSV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := filter.Parse(where)
			if err != nil {
				return err
			}
			written, err := tripindex.FilterToFile(args[0], args[1], expr, maxResults, a.options()...)
			if err != nil {
				return fmt.Errorf("filter: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", written, args[1])
			return err
		},
	}
	cmd.Flags().StringVar(&where, "where", "", `filter expression, e.g. 'total >= 10 && dest == "132"'`)
	cmd.Flags().IntVar(&maxResults, "max", 0, "max number of records written, 0 for no limit")
	return cmd
}

func (a *app) statsCommand() *cobra.Command {
	var where string
	cmd := &cobra.Command{
		Use:   "stats <source.csv>",
		Short: "Print summary statistics of the records matching a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := filter.Parse(where)
			if err != nil {
				return err
			}
			metrics, err := tripindex.GetFilterStats(args[0], expr, a.options()...)
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), metrics)
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	return cmd
}

func (a *app) topCommand() *cobra.Command {
	var where string
	var limit int
	cmd := &cobra.Command{
		Use:   "top <source.csv>",
		Short: "Print the most frequent drop-off locations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := filter.Parse(where)
			if err != nil {
				return err
			}
			ranking, err := tripindex.GetPopularDestinations(args[0], limit, expr, a.options()...)
			if err != nil {
				return fmt.Errorf("top: %w", err)
			}
			out := cmd.OutOrStdout()
			for i, d := range ranking {
				if _, err = fmt.Fprintf(out, "%d\t%s\t%d\n", i+1, d.ID, d.Count); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of destinations, 0 for all")
	return cmd
}

func (a *app) reportCommand() *cobra.Command {
	var where string
	var limit int
	cmd := &cobra.Command{
		Use:   "report <source.csv>",
		Short: "Print statistics and the destination ranking, computed concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := filter.Parse(where)
			if err != nil {
				return err
			}
			result, err := aggregate.Report(args[0], expr, limit, a.cfg.ReaderOptions(a.logger)...)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "filter expression")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of destinations, 0 for all")
	return cmd
}

func (a *app) lookupCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "lookup <key>",
		Short: "Print the record stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Index.Dir
			}
			trip, found, err := tripindex.Lookup(dir, args[0], a.options()...)
			if err != nil {
				return fmt.Errorf("lookup: %w", err)
			}
			if !found {
				return fmt.Errorf("no record with key %q", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), trip)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "index directory (default index.dir)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
