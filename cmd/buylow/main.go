// Command buylow buys the worst performing equity of a watchlist on a Charles Schwab account.
//
// Usage:
//
//	buylow                       # dry run, reports what would be bought
//	buylow --live                # places the market order
//	buylow setup                 # writes buy_low.yaml interactively
//	buylow orders                # lists orders from the local journal
//
// Required environment variables (may be set in .env):
//
//	SCHWAB_APP_KEY, SCHWAB_APP_SECRET, SCHWAB_REFRESH_TOKEN
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vadiminshakov/buylow/config"
	"github.com/vadiminshakov/buylow/internal"
	"github.com/vadiminshakov/buylow/internal/clients"
	"github.com/vadiminshakov/buylow/internal/report"
	"github.com/vadiminshakov/buylow/internal/services/pricer"
	"github.com/vadiminshakov/buylow/internal/services/trader"
	"github.com/vadiminshakov/buylow/internal/setup"
	"github.com/vadiminshakov/buylow/internal/storage/orders"
)

var (
	live       bool
	configPath string
	envFile    string
	logLevel   string
	walDir     string
	afterIndex uint64
)

var rootCmd = &cobra.Command{
	Use:   "buylow",
	Short: "Buy the worst performing equity of your watchlist",
	Long: `buylow compares the current price of every equity in the watchlist with its
price at the start of the lookback window and buys as many whole shares of the
worst performer as the configured maximum amount allows.

Without --live the run only reports the decision.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRebalance,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the config file interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setup.RunTUI(configPath)
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders recorded in the local order journal",
	RunE:  runOrders,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to yaml config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&live, "live", false, "Place the order instead of reporting it")
	rootCmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Dotenv file with Schwab credentials")

	ordersCmd.Flags().StringVar(&walDir, "wal-dir", "", "Order journal directory (defaults to order_log.wal_dir)")
	ordersCmd.Flags().Uint64Var(&afterIndex, "after", 0, "Only list orders journaled after this index")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(ordersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(internal.ExitCode(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func runRebalance(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(envFile)
	if err != nil {
		return err
	}

	client := clients.NewSchwabClient(clients.SchwabCredentials{
		AppKey:       creds.AppKey,
		AppSecret:    creds.AppSecret,
		RefreshToken: creds.RefreshToken,
	}, clients.WithLogger(logger))

	lookback := pricer.DefaultLookback
	if cfg.Lookback.PeriodType != "" {
		lookback = pricer.Lookback{
			PeriodType:    cfg.Lookback.PeriodType,
			Period:        cfg.Lookback.Period,
			FrequencyType: cfg.Lookback.FrequencyType,
		}
		if lookback.FrequencyType == "" {
			lookback.FrequencyType = pricer.DefaultLookback.FrequencyType
		}
	}
	market := pricer.NewSchwabPricer(client, lookback, logger)

	var sink trader.OrderSink
	if live {
		logs, err := orders.Open(ctx, orders.Options{
			WALDir:      cfg.OrderLog.WALDir,
			Postgres:    cfg.OrderLog.Postgres,
			PostgresDSN: creds.PostgresDSN,
		}, logger)
		if err != nil {
			return err
		}
		defer logs.Close()
		sink = logs.Sink()
	}

	printer := report.NewPrinter(os.Stdout)
	rebalancer := internal.NewRebalancer(client, market, trader.NewSchwabTrader(client, sink, logger),
		internal.WithReporter(printer),
		internal.WithLogger(logger),
		internal.WithFetchConcurrency(cfg.FetchConcurrency),
	)

	_, err = rebalancer.Run(ctx, internal.Params{
		Watchlist: cfg.Equities,
		Budget:    cfg.MaximumAmount,
		Live:      live,
	})
	if err != nil {
		logger.Error("rebalance failed", zap.Error(err))
		return err
	}

	printer.Done()
	return nil
}

func runOrders(_ *cobra.Command, _ []string) error {
	dir := walDir
	if dir == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dir = cfg.OrderLog.WALDir
	}
	if dir == "" {
		return errors.New("no order journal configured, set order_log.wal_dir or pass --wal-dir")
	}

	store, err := orders.NewWALStore(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Orders(afterIndex)
	if err != nil {
		return err
	}
	report.NewPrinter(os.Stdout).OrderHistory(records)
	return nil
}
