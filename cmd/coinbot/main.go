package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/7finger0x/Coinbot-project/internal/config"
	"github.com/7finger0x/Coinbot-project/internal/dispatch"
	"github.com/7finger0x/Coinbot-project/internal/domain"
	"github.com/7finger0x/Coinbot-project/internal/enrich"
	"github.com/7finger0x/Coinbot-project/internal/evaluator"
	"github.com/7finger0x/Coinbot-project/internal/feed"
	"github.com/7finger0x/Coinbot-project/internal/ledger"
	"github.com/7finger0x/Coinbot-project/internal/observability"
	"github.com/7finger0x/Coinbot-project/internal/screen"
	"github.com/7finger0x/Coinbot-project/internal/storage"
	chstore "github.com/7finger0x/Coinbot-project/internal/storage/clickhouse"
	"github.com/7finger0x/Coinbot-project/internal/storage/memory"
	"github.com/7finger0x/Coinbot-project/internal/storage/migrations"
	pgstore "github.com/7finger0x/Coinbot-project/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config file")
	envFile := flag.String("env-file", ".env", "Path to .env file with secrets (optional)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for the event log (empty to disable)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	feedURL := flag.String("feed-url", "", "Market-data feed endpoint (default Dexscreener)")
	pumpfunURL := flag.String("pumpfun-url", "", "Pump.fun stream endpoint (default pumpportal)")
	noPumpfun := flag.Bool("no-pumpfun", false, "Disable the Pump.fun stream source")
	goplusURL := flag.String("goplus-url", "", "GoPlus token security API base")
	solscanURL := flag.String("solscan-url", "", "Solscan API base for enrichment")
	dryRun := flag.Bool("dry-run", false, "Log buys instead of executing them")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[coinbot] ", log.LstdFlags)

	// Secrets come from the environment, optionally seeded from a file.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		logger.Printf("Warning: could not load %s: %v", *envFile, err)
	}

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, logger, cfg, options{
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		feedURL:       *feedURL,
		pumpfunURL:    *pumpfunURL,
		noPumpfun:     *noPumpfun,
		goplusURL:     *goplusURL,
		solscanURL:    *solscanURL,
		dryRun:        *dryRun,
	})

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type options struct {
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	feedURL       string
	pumpfunURL    string
	noPumpfun     bool
	goplusURL     string
	solscanURL    string
	dryRun        bool
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, opts options) error {
	if !opts.useMemory && opts.postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	var coinStore storage.CoinStore = memory.NewCoinStore()
	var devStore storage.DeveloperStatsStore = memory.NewDeveloperStatsStore()
	var eventStore storage.EventLogStore = memory.NewEventLogStore()

	if !opts.useMemory {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}

		coinStore = pgstore.NewCoinStore(pool)
		devStore = pgstore.NewDeveloperStatsStore(pool)
	}

	if opts.clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}

		eventStore = chstore.NewEventLogStore(conn)
	}

	notifier, err := buildNotifier(logger)
	if err != nil {
		return err
	}

	trader, err := buildTrader(logger, opts.dryRun)
	if err != nil {
		return err
	}

	// Feed sources.
	sources := []feed.Source{
		feed.NewDexscreener(opts.feedURL, cfg.DefaultChain()),
	}
	if !opts.noPumpfun {
		pumpfun, err := feed.NewPumpfun(ctx, opts.pumpfunURL, nil)
		if err != nil {
			return fmt.Errorf("connect pump.fun stream: %w", err)
		}
		defer pumpfun.Close()
		sources = append(sources, pumpfun)
	}

	eval := evaluator.New(
		cfg,
		screen.NewRiskScreen(cfg, screen.NewGoPlusChecker(opts.goplusURL)),
		enrich.NewGate(cfg, enrich.NewSolscanFetcher(opts.solscanURL)),
		ledger.New(coinStore, devStore),
		notifier,
		trader,
		eventStore,
	)

	interval := cfg.PollInterval()
	logger.Printf("Starting evaluation loop, poll interval %s", interval)

	// First cycle immediately, then on the ticker.
	runCycle(ctx, logger, sources, eval, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runCycle(ctx, logger, sources, eval, interval)
		}
	}
}

// runCycle fetches one batch from every source and evaluates it. A
// source failure skips that source for this cycle; evaluation failures
// are handled per token inside the evaluator.
func runCycle(ctx context.Context, logger *log.Logger, sources []feed.Source, eval *evaluator.Evaluator, timeout time.Duration) {
	start := time.Now()
	cycleCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var batch []domain.Token
	for _, src := range sources {
		tokens, err := src.Fetch(cycleCtx)
		if err != nil {
			observability.RecordFeedError(src.Name())
			logger.Printf("Fetch from %s failed: %v", src.Name(), err)
			continue
		}
		observability.RecordTokensFetched(src.Name(), len(tokens))
		logger.Printf("Got %d tokens from %s", len(tokens), src.Name())
		batch = append(batch, tokens...)
	}

	status := "ok"
	if err := eval.EvaluateBatch(cycleCtx, batch); err != nil {
		status = "aborted"
		logger.Printf("Cycle aborted: %v", err)
	} else {
		observability.DefaultMetrics.LastSuccessfulCycle.SetToCurrentTime()
	}
	observability.RecordCycle(status, time.Since(start).Seconds())
}

// buildNotifier wires Telegram when TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID are set, else falls back to log output.
func buildNotifier(logger *log.Logger) (dispatch.Notifier, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatIDStr == "" {
		logger.Println("Telegram not configured, notifications go to the log")
		return dispatch.LogNotifier{}, nil
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
	}

	notifier, err := dispatch.NewTelegramNotifier(token, chatID)
	if err != nil {
		return nil, err
	}
	return notifier, nil
}

// buildTrader wires Jupiter when WALLET_PUBLIC_KEY is set and dry-run
// is off, else uses the dry-run executor.
func buildTrader(logger *log.Logger, dryRun bool) (dispatch.TradeExecutor, error) {
	pubkey := os.Getenv("WALLET_PUBLIC_KEY")
	if dryRun || pubkey == "" {
		if !dryRun {
			logger.Println("WALLET_PUBLIC_KEY not set, buys run in dry-run mode")
		}
		return dispatch.DryRunExecutor{}, nil
	}

	trader, err := dispatch.NewJupiterExecutor(os.Getenv("JUPITER_API_URL"), pubkey)
	if err != nil {
		return nil, err
	}
	return trader, nil
}
