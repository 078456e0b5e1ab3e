package main

import (
	"context"
	"fmt"
	"strings"

	"ecommerce-kpi/pkg/calculator"
	"ecommerce-kpi/pkg/config"
	"ecommerce-kpi/pkg/database"
	"ecommerce-kpi/pkg/export"
	"ecommerce-kpi/pkg/ingest"
	"ecommerce-kpi/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// loadRecords reads every line item from the configured source.
func loadRecords(ctx context.Context, c *config.Config) (models.RecordSet, error) {
	switch c.Data.Source {
	case config.SourceDB:
		db, dsnUsed, err := database.Open(c.Data.DSN)
		if err != nil {
			return models.RecordSet{}, fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		log.Debug().Str("dsn", dsnUsed).Msg("connected")
		return database.LoadLineItems(ctx, db, c.Data.Table)
	default:
		return ingest.Load(c.Data.Dir, ingest.Options{Progress: c.Logger.Progress})
	}
}

// periodSets loads the data and cuts the analysed period of p and, when one
// applies, the comparison period.
func periodSets(ctx context.Context, p models.ReportParams) (models.RecordSet, *models.RecordSet, error) {
	base, err := loadRecords(ctx, cfg)
	if err != nil {
		return models.RecordSet{}, nil, err
	}
	if p.DeliveredOnly && !base.Capabilities().OrderStatus {
		log.Warn().Msg("no order_status column, delivered-only filter skipped")
		p.DeliveredOnly = false
	}

	window, cmpWindow, err := ingest.Windows(p)
	if err != nil {
		return models.RecordSet{}, nil, err
	}
	current := window.Apply(base)
	if cmpWindow == nil {
		return current, nil, nil
	}
	previous := cmpWindow.Apply(base)
	return current, &previous, nil
}

// reportCmd wraps a computation over the analysed (and comparison) period.
func reportCmd(use, short string, compute func(cmd *cobra.Command, cur models.RecordSet, cmp *models.RecordSet) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, cmp, err := periodSets(cmd.Context(), params)
			if err != nil {
				return err
			}
			v, err := compute(cmd, cur, cmp)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), v, format)
		},
	}
}

func summaryCmd() *cobra.Command {
	return reportCmd("summary", "Executive summary of the period", func(_ *cobra.Command, cur models.RecordSet, cmp *models.RecordSet) (any, error) {
		return calculator.ExecutiveSummary(cur, cmp, params.PeriodLabel), nil
	})
}

func revenueCmd() *cobra.Command {
	return reportCmd("revenue", "Revenue, order and growth metrics", func(_ *cobra.Command, cur models.RecordSet, cmp *models.RecordSet) (any, error) {
		return calculator.RevenueMetrics(cur, cmp), nil
	})
}

func trendsCmd() *cobra.Command {
	return reportCmd("trends", "Monthly revenue trend with month-over-month growth", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		return calculator.MonthlyTrends(cur), nil
	})
}

func productsCmd() *cobra.Command {
	return reportCmd("products", "Category ranking, market share and items per order", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		return calculator.ProductPerformance(cur, params.TopN), nil
	})
}

func geographyCmd() *cobra.Command {
	return reportCmd("geography", "State ranking by revenue and by customers", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		return calculator.GeographicPerformance(cur, params.TopN), nil
	})
}

func experienceCmd() *cobra.Command {
	return reportCmd("experience", "Review and delivery statistics", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		return calculator.CustomerExperience(cur), nil
	})
}

func cohortsCmd() *cobra.Command {
	return reportCmd("cohorts", "Monthly acquisition cohorts and retention", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		return newCohortView(calculator.Cohorts(cur)), nil
	})
}

func healthCmd() *cobra.Command {
	return reportCmd("health", "Business health score and its components", func(_ *cobra.Command, cur models.RecordSet, cmp *models.RecordSet) (any, error) {
		return calculator.HealthScore(cur, cmp), nil
	})
}

func compareCmd() *cobra.Command {
	var metrics string
	cmd := reportCmd("compare", "Compare revenue metrics with the comparison period", func(_ *cobra.Command, cur models.RecordSet, cmp *models.RecordSet) (any, error) {
		if cmp == nil {
			return nil, fmt.Errorf("compare needs --compare_start, or both --start_month and --end_month")
		}
		return calculator.ComparePeriods(cur, *cmp, splitList(metrics))
	})
	cmd.Flags().StringVar(&metrics, "metrics", strings.Join(calculator.DefaultComparisonMetrics, ","), "comma separated metric names")
	return cmd
}

func aggregateCmd() *cobra.Command {
	var by, metrics string
	cmd := reportCmd("aggregate", "Aggregate fields by day, week, month, quarter or year", func(_ *cobra.Command, cur models.RecordSet, _ *models.RecordSet) (any, error) {
		g, err := calculator.ParseGranularity(by)
		if err != nil {
			return nil, err
		}
		var fields []models.Field
		for _, m := range splitList(metrics) {
			fields = append(fields, models.Field(m))
		}
		return calculator.AggregateByPeriod(cur, g, fields)
	})
	var defaults []string
	for _, f := range calculator.DefaultPeriodMetrics {
		defaults = append(defaults, string(f))
	}
	cmd.Flags().StringVar(&by, "by", string(calculator.Month), "granularity: day, week, month, quarter or year")
	cmd.Flags().StringVar(&metrics, "metrics", strings.Join(defaults, ","), "comma separated fields")
	return cmd
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Record counts, purchase range and order status mix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := params
			p.DeliveredOnly = false
			cur, _, err := periodSets(cmd.Context(), p)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), calculator.Describe(cur), format)
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every report view to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, cmp, err := periodSets(cmd.Context(), params)
			if err != nil {
				return err
			}
			report := export.Build(cur, cmp, params.PeriodLabel, params.TopN)
			return export.WriteWorkbook(out, report, cfg.Logger.Progress)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "kpi_report.xlsx", "workbook path")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
