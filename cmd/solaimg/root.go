package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bokangsibolla/sola-images/internal/config"
	"github.com/bokangsibolla/sola-images/internal/database"
	"github.com/bokangsibolla/sola-images/internal/domain"
	"github.com/bokangsibolla/sola-images/internal/jobs"
	"github.com/bokangsibolla/sola-images/internal/log"
	"github.com/bokangsibolla/sola-images/internal/media"
	"github.com/bokangsibolla/sola-images/internal/pipeline"
	"github.com/bokangsibolla/sola-images/internal/repository"
	"github.com/bokangsibolla/sola-images/internal/resultcache"
	"github.com/bokangsibolla/sola-images/internal/scoring"
	"github.com/bokangsibolla/sola-images/internal/sources"
	"github.com/bokangsibolla/sola-images/internal/storage"
	"github.com/bokangsibolla/sola-images/internal/strategy"
)

type rootFlags struct {
	destType   string
	limit      int
	offset     int
	country    string
	city       string
	dryRun     bool
	refresh    bool
	reviewCSV  bool
	skipSearch bool
	threshold  int
	delay      time.Duration
	verbose    bool
	schedule   string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "solaimg",
		Short: "Acquire and rank destination imagery",
		Long: `solaimg enriches travel destinations with a hero image and a diverse
gallery, sourced from curated place photos and licensed-biased web search,
scored for quality and re-hosted in object storage.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.destType, "type", "all", "destination type to process: country, city, neighborhood, or all")
	f.IntVar(&flags.limit, "limit", 0, "max destinations to process (0 = no limit)")
	f.IntVar(&flags.offset, "offset", 0, "destinations to skip before processing")
	f.StringVar(&flags.country, "country", "", "only destinations in this country (name match)")
	f.StringVar(&flags.city, "city", "", "only destinations in this city (name match)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "enumerate destinations without making any API calls")
	f.BoolVar(&flags.refresh, "refresh", false, "re-process destinations that already have images")
	f.BoolVar(&flags.reviewCSV, "review-csv", false, "export a per-destination review CSV after the run")
	f.BoolVar(&flags.skipSearch, "skip-search", false, "curated photos only, no web search")
	f.IntVar(&flags.threshold, "threshold", 0, "hero quality score below which cities escalate to web search")
	f.DurationVar(&flags.delay, "delay", 0, "pause between destinations (default from config)")
	f.BoolVar(&flags.verbose, "verbose", false, "debug logging")
	f.StringVar(&flags.schedule, "schedule", "", "cron expression; keep running and enrich on this schedule")

	return cmd
}

func run(flags *rootFlags) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(cfg.Environment)
	if flags.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	if flags.destType != "all" {
		switch domain.DestinationType(flags.destType) {
		case domain.TypeCountry, domain.TypeCity, domain.TypeNeighborhood:
		default:
			return fmt.Errorf("unknown destination type %q", flags.destType)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	repo := repository.NewDestinationRepository(pool)

	store, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect object storage: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	cache, err := newResultCache(ctx, cfg)
	if err != nil {
		return err
	}

	usage := &domain.Usage{}
	httpClient := &http.Client{Timeout: cfg.Pipeline.CallTimeout}

	curated := &sources.PlacesClient{
		APIKey:     cfg.Google.PlacesAPIKey,
		HTTPClient: httpClient,
		Usage:      usage,
		Log:        logger,
	}

	var web strategy.WebSource
	if !flags.skipSearch && cfg.Google.SearchAPIKey != "" && cfg.Google.SearchEngineID != "" {
		web = &sources.WebSearchClient{
			APIKey:     cfg.Google.SearchAPIKey,
			EngineID:   cfg.Google.SearchEngineID,
			HTTPClient: httpClient,
			Usage:      usage,
			Log:        logger,
			Delay:      cfg.Pipeline.Delay,
		}
	} else if !flags.skipSearch {
		logger.Warn().Msg("web search credentials missing, running curated-only")
	}

	var entities strategy.EntitySource
	if cfg.Google.EntityAPIKey != "" {
		entities = &sources.KnowledgeClient{
			APIKey:     cfg.Google.EntityAPIKey,
			HTTPClient: httpClient,
			Usage:      usage,
			Log:        logger,
		}
	}

	threshold := cfg.Pipeline.QualityThreshold
	if flags.threshold > 0 {
		threshold = flags.threshold
	}
	dispatcher := strategy.NewDispatcher(curated, web, entities, scoring.DefaultConfig(), strategy.Options{
		QualityThreshold: threshold,
		GallerySize:      cfg.Pipeline.GallerySize,
		SkipWebSearch:    flags.skipSearch,
	}, logger)

	fetcher := &media.Fetcher{
		Photos:     curated,
		HTTPClient: httpClient,
		UserAgent:  cfg.Pipeline.UserAgent,
		Usage:      usage,
		Log:        logger,
	}

	delay := cfg.Pipeline.Delay
	if flags.delay > 0 {
		delay = flags.delay
	}
	pipe := pipeline.New(repo, dispatcher, cache, store, fetcher, usage, pipeline.Options{
		Filter: repository.Filter{
			Type:    flags.destType,
			Country: flags.country,
			City:    flags.city,
			Limit:   flags.limit,
			Offset:  flags.offset,
		},
		DryRun:      flags.dryRun,
		Refresh:     flags.refresh,
		ReviewCSV:   flags.reviewCSV,
		Delay:       delay,
		CacheMaxAge: cfg.Cache.MaxAge,
	}, logger)

	if flags.schedule != "" {
		scheduler := jobs.NewScheduler(func(ctx context.Context) error {
			_, err := pipe.Run(ctx)
			return err
		}, logger)
		if err := scheduler.Start(flags.schedule); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		scheduler.Stop()
		return nil
	}

	report, err := pipe.Run(ctx)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d destinations failed", report.Failed, len(report.Results))
	}
	return nil
}

func newResultCache(ctx context.Context, cfg *config.AppConfig) (resultcache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		return resultcache.NewRedisStore(ctx, client, cfg.Cache.MaxAge)
	case "file", "":
		return resultcache.NewFileStore(cfg.Cache.Dir)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
