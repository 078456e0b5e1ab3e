package main

import (
	"fmt"
	"os"

	"ecommerce-kpi/pkg/config"
	"ecommerce-kpi/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:               "kpi",
		Short:             "Revenue, product, geography, customer-experience and cohort KPIs over e-commerce sales",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	cfgFile     string
	format      string
	allStatuses bool
	params      models.ReportParams
	cfg         *config.Config
)

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	cfg = c
	level := cfg.Logger.Level
	if params.Verbose {
		level = "debug"
	}
	config.InitLogger(level, nil)

	switch format {
	case formatJSON, formatPretty, formatText:
	default:
		return fmt.Errorf("unknown --format %q (json, pretty or text)", format)
	}
	if !cmd.Flags().Changed("top_n") {
		params.TopN = cfg.Report.TopN
	}
	if params.PeriodLabel == "" {
		params.PeriodLabel = cfg.Report.PeriodLabel
	}
	params.DeliveredOnly = cfg.Report.DeliveredOnly && !allStatuses
	log.Debug().Str("source", cfg.Data.Source).Str("command", cmd.Name()).Msg("config loaded")
	return nil
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	pf.StringVar(&params.StartMonthInclusive, "start_month", "", "first month of the analysed period (MMYYYY)")
	pf.StringVar(&params.EndMonthInclusive, "end_month", "", "last month of the analysed period (MMYYYY)")
	pf.StringVar(&params.CompareStart, "compare_start", "", "first month of the comparison period (MMYYYY, defaults to the period just before start_month..end_month)")
	pf.StringVar(&params.CompareEnd, "compare_end", "", "last month of the comparison period (MMYYYY, defaults to compare_start)")
	pf.StringVar(&format, "format", formatPretty, "output format: json, pretty or text")
	pf.StringVar(&params.PeriodLabel, "label", "", "period label of the summary")
	pf.IntVar(&params.TopN, "top_n", 0, "rows kept in rankings (0 = all)")
	pf.BoolVar(&allStatuses, "all_statuses", false, "keep orders of every status, not only delivered ones")
	pf.BoolVarP(&params.Verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		summaryCmd(),
		revenueCmd(),
		trendsCmd(),
		productsCmd(),
		geographyCmd(),
		experienceCmd(),
		cohortsCmd(),
		healthCmd(),
		compareCmd(),
		aggregateCmd(),
		describeCmd(),
		exportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("kpi failed")
		os.Exit(1)
	}
}
