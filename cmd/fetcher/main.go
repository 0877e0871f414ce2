package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/config"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/repository"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/service"
	"github.com/ClementStand/chmsa-intel-fetcher/internal/fetcher/status"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/cache"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/logger"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/postgres"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/redis"
	"github.com/ClementStand/chmsa-intel-fetcher/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	configPath     string
	flagDays       int
	flagCompetitor string
	flagRegions    []string
	flagClean      bool
	flagLimit      int
)

var rootCmd = &cobra.Command{
	Use:   "intel-fetcher",
	Short: "Competitor intelligence fetcher for CIMHSA",
	Long:  `Aggregates competitor news from keyword and grounded search, extracts structured intelligence items with an LLM, and persists them for the dashboard.`,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one intelligence refresh and exit",
	Run:   runFetch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run refreshes on a cron schedule",
	Run:   runServe,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	fetchCmd.Flags().IntVar(&flagDays, "days", 0, "Only search the last N days (0 = adaptive window)")
	fetchCmd.Flags().StringVar(&flagCompetitor, "competitor", "", "Filter to competitors whose name contains this string")
	fetchCmd.Flags().StringSliceVar(&flagRegions, "regions", nil, "Override search regions (comma-separated, e.g. brazil,argentina,europe)")
	fetchCmd.Flags().BoolVar(&flagClean, "clean", false, "Clear all existing news before fetching")
	fetchCmd.Flags().IntVar(&flagLimit, "limit", 0, "Limit the number of competitors processed")

	rootCmd.AddCommand(fetchCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing intel-fetcher CLI: %s\n", err)
		os.Exit(1)
	}
}

func runFetch(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, appLogger, svc, cleanup := mustBuild(ctx)
	defer cleanup()

	opts := service.RunOptions{
		Days:           flagDays,
		CompetitorName: flagCompetitor,
		Regions:        flagRegions,
		CleanStart:     flagClean,
		Limit:          flagLimit,
	}
	saved, err := svc.Run(ctx, opts)
	if err != nil {
		appLogger.Fatal("Refresh failed", zap.Error(err))
	}
	appLogger.Info("Refresh finished", logger.IntField("saved", saved))
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, appLogger, svc, cleanup := mustBuild(ctx)
	defer cleanup()

	schedule := cfg.Fetcher.CronSchedule
	if schedule == "" {
		schedule = "0 6 * * *"
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		saved, err := svc.Run(ctx, service.RunOptions{})
		if err != nil {
			appLogger.Error("Scheduled refresh failed", zap.Error(err))
			return
		}
		appLogger.Info("Scheduled refresh finished", logger.IntField("saved", saved))
	})
	if err != nil {
		appLogger.Fatal("Invalid cron schedule", zap.Error(err), logger.StringField("schedule", schedule))
	}
	c.Start()
	defer c.Stop()

	appLogger.Info("Fetcher service started", logger.StringField("schedule", schedule))
	<-ctx.Done()
	appLogger.Info("Shutting down fetcher service")
}

// mustBuild wires the full pipeline from configuration. Any failure is fatal:
// there is no degraded mode for a missing database or extraction provider.
func mustBuild(ctx context.Context) (*config.Config, *logger.Logger, *service.FetcherService, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Intel Fetcher", zap.String("name", cfg.App.Name))

	// The reporter comes up before anything that can fail so the dashboard
	// never shows a stale "running" state after a wiring failure.
	reporter := status.NewReporter(cfg.Fetcher.StatusPath)
	fatal := func(msg string, err error) {
		if reportErr := reporter.Report(status.StateError, "", 0, 0, fmt.Errorf("%s: %w", msg, err)); reportErr != nil {
			appLogger.Error("Failed to write error status", zap.Error(reportErr))
		}
		appLogger.Fatal(msg, zap.Error(err))
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		fatal("Failed to initialize database", err)
	}

	cleanups := []func(){func() { _ = appLogger.Sync() }}
	if sqlDB, err := db.DB.DB(); err == nil {
		cleanups = append(cleanups, func() { sqlDB.Close() })
	}

	searchStore, groundedStore, storeCleanup := buildStores(cfg, fatal)
	if storeCleanup != nil {
		cleanups = append(cleanups, storeCleanup)
	}

	if cfg.Serper.APIKey == "" {
		appLogger.Warn("SERPER_API_KEY not set, keyword search will return nothing")
	}
	searchRepo := repository.NewSerperRepository(cfg, appLogger, searchStore)

	var groundedRepo repository.GroundedSearchRepository
	if cfg.Gemini.APIKey != "" {
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			fatal("Failed to initialize Gemini client", err)
		}
		groundedRepo = repository.NewGeminiSearchRepository(cfg, appLogger, groundedStore, genAiClient)
	} else {
		appLogger.Warn("GEMINI_API_KEY not set, grounded search disabled")
	}

	extractionRepo, err := repository.NewExtractionRepository(cfg, appLogger)
	if err != nil {
		fatal("Failed to initialize extraction provider", err)
	}

	var contentRepo repository.ArticleContentRepository
	if cfg.Fetcher.ContentFetch {
		contentRepo = repository.NewArticleContentRepository(cfg, appLogger)
	}

	notifier := telegram.NewNoopNotifier()
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			fatal("Failed to initialize Telegram notifier", err)
		}
	}

	competitorRepo := repository.NewCompetitorRepository(db.DB)
	newsRepo := repository.NewCompetitorNewsRepository(db.DB)

	aggregator := service.NewAggregator(searchRepo, groundedRepo, appLogger)
	extractor := service.NewExtractor(extractionRepo, appLogger)
	gate := service.NewGate(newsRepo, appLogger)

	svc := service.NewFetcherService(cfg, appLogger, aggregator, extractor, gate, contentRepo, competitorRepo, newsRepo, reporter, notifier)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return cfg, appLogger, svc, cleanup
}

// buildStores creates the search and grounded response caches on the
// configured backend.
func buildStores(cfg *config.Config, fatal func(string, error)) (cache.Store, cache.Store, func()) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			fatal("Failed to initialize Redis cache", err)
		}
		search := cache.NewRedisStore(client.Client, "serper", cfg.Cache.SearchTTL)
		grounded := cache.NewRedisStore(client.Client, "gemini", cfg.Cache.GroundedTTL)
		return search, grounded, func() { client.Close() }
	default:
		search := cache.NewDiskStore(filepath.Join(cfg.Cache.Dir, "serper"), cfg.Cache.SearchTTL)
		grounded := cache.NewDiskStore(filepath.Join(cfg.Cache.Dir, "gemini"), cfg.Cache.GroundedTTL)
		return search, grounded, nil
	}
}
