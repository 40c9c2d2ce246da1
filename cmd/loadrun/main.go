// Package main is the one-shot CLI for running a date-range load from a
// terminal, without the HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"loadrun_srv/internal/config"
	"loadrun_srv/internal/domain/daterange"
	"loadrun_srv/internal/domain/template"
	"loadrun_srv/internal/runner"
	"loadrun_srv/internal/warehouse"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		startDate string
		endDate   string
		query     string
		queryFile string
		dsn       string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "loadrun",
		Short: "Replay a date-parameterized query once per day over a date range",
		Long: "loadrun substitutes every date of an inclusive range into a query\n" +
			"template (placeholder {date}) and executes the statements against the\n" +
			"warehouse one by one, in ascending order, printing elapsed time per date.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(startDate, endDate, query, queryFile, dsn, verbose)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First date of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last date of the range, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&query, "query", "", "Query template containing one {date} placeholder")
	cmd.Flags().StringVar(&queryFile, "query-file", "", "Read the query template from a file instead")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Warehouse DSN (overrides configuration)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

func runLoad(startDate, endDate, query, queryFile, dsn string, verbose bool) error {
	rng, err := daterange.ParseRange(startDate, endDate)
	if err != nil {
		return err
	}

	if query == "" && queryFile == "" {
		return fmt.Errorf("either --query or --query-file is required")
	}
	if query != "" && queryFile != "" {
		return fmt.Errorf("--query and --query-file are mutually exclusive")
	}
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		query = string(data)
	}

	tmpl, err := template.New(query)
	if err != nil {
		return err
	}

	whCfg, err := warehouseConfig(dsn)
	if err != nil {
		return err
	}

	factory, err := warehouse.NewFactory(whCfg)
	if err != nil {
		return err
	}
	defer factory.Close()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	// Ctrl-C stops the run between dates, never mid-statement.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.New(factory, logger)
	_, err = r.Run(ctx, rng, tmpl, runner.ConsoleProgress{W: os.Stdout})
	return err
}

// warehouseConfig resolves the target DSN: an explicit flag wins over the
// service configuration.
func warehouseConfig(dsn string) (config.Warehouse, error) {
	if dsn != "" {
		return config.Warehouse{Driver: "postgres", DSN: dsn}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Warehouse{}, err
	}
	return cfg.Warehouse, nil
}
