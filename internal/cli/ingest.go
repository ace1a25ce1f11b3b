package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/enerflux/gridloader"
)

var (
	ingestConfig      string
	ingestStart       string
	ingestEnd         string
	ingestConcurrency int
	ingestRateLimit   float64
	ingestPretty      bool
	ingestLogLevel    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion batch over the configured countries and document types",
	Long: `Ingest fetches every configured country × document type combination for
the given window and appends the results to BigQuery. Failed combinations
are reported, not fatal; the command exits non-zero only when the
configuration is invalid or the platform is unreachable for every task.

Dates are interpreted in the Europe/Brussels market timezone. Without
--start and --end the window defaults to the configured number of days
ending today.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestConfig, "config", "c", "config.yaml", "path to the YAML configuration")
	ingestCmd.Flags().StringVar(&ingestStart, "start", "", "window start (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestEnd, "end", "", "window end (YYYY-MM-DD)")
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "how many tasks run at once")
	ingestCmd.Flags().Float64Var(&ingestRateLimit, "rate", 2, "API requests per second")
	ingestCmd.Flags().BoolVar(&ingestPretty, "pretty", false, "human friendly log output")
	ingestCmd.Flags().StringVar(&ingestLogLevel, "log-level", "info", "log level")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := gridloader.LoadConfig(ingestConfig)
	if err != nil {
		return err
	}

	start, end, err := window(cfg.WindowDays)
	if err != nil {
		return err
	}

	opts := []gridloader.Option{
		gridloader.WithConcurrency(ingestConcurrency),
		gridloader.WithRateLimit(ingestRateLimit),
		gridloader.WithLogLevel(ingestLogLevel),
	}
	if ingestPretty {
		opts = append(opts, gridloader.WithPrettyLogging())
	}

	ctx := cmd.Context()

	p, err := gridloader.New(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, start, end)
	if report != nil {
		fmt.Fprint(cmd.OutOrStdout(), report.Summary())
	}

	return err
}

// window resolves the ingestion window in the market timezone, defaulting
// to the last windowDays days.
func window(windowDays int) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		return time.Time{}, time.Time{}, xerrors.Errorf("failed to load market timezone: %w", err)
	}

	if ingestStart == "" || ingestEnd == "" {
		now := time.Now().In(loc)
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		return end.AddDate(0, 0, -windowDays), end, nil
	}

	start, err := time.ParseInLocation("2006-01-02", ingestStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, xerrors.Errorf("invalid --start: %w", err)
	}

	end, err := time.ParseInLocation("2006-01-02", ingestEnd, loc)
	if err != nil {
		return time.Time{}, time.Time{}, xerrors.Errorf("invalid --end: %w", err)
	}

	if !start.Before(end) {
		return time.Time{}, time.Time{}, xerrors.New("--start must be before --end")
	}

	return start, end, nil
}
