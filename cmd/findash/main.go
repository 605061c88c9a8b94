package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"findash/internal/analytics"
	"findash/internal/api"
	"findash/internal/config"
	"findash/internal/events"
	applog "findash/internal/log"
	"findash/internal/session"
	"findash/internal/store"
	"findash/internal/token"
)

func main() {
	// .env is for local development; absence is fine.
	_ = godotenv.Load()

	username := flag.String("username", os.Getenv("FINDASH_USERNAME"), "API username (credentials are reused from the token store when omitted)")
	password := flag.String("password", os.Getenv("FINDASH_PASSWORD"), "API password")
	period := flag.String("period", "monthly", "aggregation period: all, daily, weekly, monthly, yearly")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := applog.New(logLevel(cfg.LogLevel), "findash")
	applog.SetDefault(logger)

	tokens, cleanup, err := openTokenStore(cfg)
	if err != nil {
		logger.Error("failed to open the token store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Navigation boundaries are log lines in a CLI.
	nav := api.NavigatorFunc(func(path string) {
		logger.Info("navigation", "path", path)
	})

	gw := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, tokens, nav, logger)
	sessions := session.NewManager(gw, tokens, nav, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sessions.Init(ctx)
	if sessions.State() != session.StateAuthenticated {
		if *username == "" || *password == "" {
			logger.Error("no valid session and no credentials given; pass -username and -password")
			os.Exit(1)
		}
		if err := sessions.Login(ctx, session.Credentials{Username: *username, Password: *password}); err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
	}

	var publisher store.Publisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
		if err != nil {
			logger.Warn("mutation events disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	stores := store.NewStores(gw, publisher, logger)
	stores.PrefetchSupporting(ctx)
	if _, err := stores.Transactions.FetchAll(ctx, nil); err != nil {
		logger.Error("failed to load transactions", "error", err)
		os.Exit(1)
	}

	printDashboard(stores, analytics.Period(*period))
}

func printDashboard(stores *store.Stores, period analytics.Period) {
	accounts := stores.Accounts.Items()
	categories := stores.Categories.Items()
	transactions := stores.Transactions.Items()

	metrics := analytics.Metrics(accounts, transactions, categories)
	fmt.Printf("Assets:       %s\n", metrics.TotalAssets.StringFixed(2))
	fmt.Printf("Liabilities:  %s\n", metrics.TotalLiabilities.StringFixed(2))
	fmt.Printf("Net worth:    %s\n", metrics.NetWorth.StringFixed(2))
	fmt.Printf("Month income: %s  expenses: %s  cash flow: %s\n",
		metrics.MonthlyIncome.StringFixed(2),
		metrics.MonthlyExpenses.StringFixed(2),
		metrics.MonthlyCashFlow.StringFixed(2))

	filtered := analytics.FilterByPeriod(transactions, period, time.Time{}, time.Time{})
	fmt.Printf("\nTop categories (%s, %d transactions):\n", period, len(filtered))
	for _, total := range analytics.AggregateByCategory(filtered, categories) {
		fmt.Printf("  %-24s %10s  (%d)\n", total.Name, total.Total.StringFixed(2), total.Count)
	}
}

func openTokenStore(cfg *config.Config) (token.Store, func(), error) {
	if cfg.TokenBackend == "memory" {
		return token.NewMemory(), func() {}, nil
	}
	sqlite, err := token.NewSQLiteStore(cfg.TokenDBPath)
	if err != nil {
		return nil, nil, err
	}
	return sqlite, func() { sqlite.Close() }, nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
