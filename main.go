package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/arbor-research/arbor/internal/activities"
	"github.com/arbor-research/arbor/internal/config"
	"github.com/arbor-research/arbor/internal/llm"
	"github.com/arbor-research/arbor/internal/report"
	"github.com/arbor-research/arbor/internal/research"
	"github.com/arbor-research/arbor/internal/search"
	"github.com/arbor-research/arbor/internal/tracing"
	"github.com/arbor-research/arbor/internal/workflows"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tracing.Initialize(cfg.Tracing, logger); err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	var cache search.Cache
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Invalid Redis URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, search caching disabled", zap.Error(err))
		} else {
			cache = search.NewRedisCache(rdb, logger)
			logger.Info("Search cache enabled", zap.Duration("ttl", cfg.Search.CacheTTL))
		}
		defer rdb.Close()
	}

	searchClient := search.NewClient(cfg.Search, cache, logger)
	llmClient := llm.NewClient(cfg.LLM, logger)

	engine := research.NewEngine(
		searchAdapter{searchClient},
		research.NewRelevanceScorer(llmClient, logger),
		research.NewInsightSynthesizer(llmClient, logger),
		research.NewFollowUpGenerator(llmClient, logger),
		logger,
	)
	reports := report.NewGenerator(llmClient, logger)

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: cfg.Research.ConcurrencyLimit * 4,
	})
	w.RegisterWorkflow(workflows.DeepResearchWorkflow)
	acts := activities.NewActivities(engine, reports)
	w.RegisterActivity(acts.ExecuteResearchTree)
	w.RegisterActivity(acts.GenerateReport)

	logger.Info("Research worker starting",
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.String("temporal", cfg.Temporal.HostPort),
		zap.Int("max_depth", cfg.Research.MaxDepth),
		zap.Int("concurrency_limit", cfg.Research.ConcurrencyLimit),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(worker.InterruptCh()) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		w.Stop()
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Worker exited", zap.Error(err))
		}
	}
}

// searchAdapter bridges the HTTP search client to the engine's provider
// interface.
type searchAdapter struct {
	client *search.Client
}

func (a searchAdapter) Search(ctx context.Context, query string, count int) ([]research.RawResult, error) {
	results, err := a.client.Search(ctx, query, count)
	if err != nil {
		return nil, err
	}
	out := make([]research.RawResult, len(results))
	for i, r := range results {
		out[i] = research.RawResult{
			Title: r.Title,
			URL:   r.URL,
			Text:  r.Text,
			Score: r.Score,
		}
	}
	return out, nil
}
