package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/spendlens/spendlens/internal/aggregator"
	"github.com/spendlens/spendlens/internal/api/handlers"
	"github.com/spendlens/spendlens/internal/api/middleware"
	"github.com/spendlens/spendlens/internal/archive"
	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/insight"
	"github.com/spendlens/spendlens/internal/linktoken"
	"github.com/spendlens/spendlens/internal/llm"
	"github.com/spendlens/spendlens/internal/logger"
	"github.com/spendlens/spendlens/internal/store"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	// Database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	accountRepo := store.NewAccountRepository(db)
	transactionRepo := store.NewTransactionRepository(db)
	insightRepo := store.NewInsightRepository(db)

	// Model client
	modelClient, err := llm.NewGeminiClient(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create model client")
	}

	generator := insight.NewGenerator(modelClient,
		insight.WithRetryPolicy(cfg.MaxRetries, cfg.RetryBaseDelay),
		insight.WithCallTimeout(cfg.ModelTimeout),
		insight.WithDropObserver(func(flow string, dropped int) {
			log.Warn().Str("flow", flow).Int("dropped", dropped).Msg("Dropped invalid model records")
		}),
	)

	// Raw response archival is optional; without a bucket the pipeline
	// still runs, it just keeps no audit trail.
	var archiver insight.RawArchiver
	if cfg.ArchiveBucket != "" {
		gcsArchiver, err := archive.NewGCSArchiver(ctx, cfg.ArchiveBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archiver")
		}
		defer gcsArchiver.Close()
		archiver = gcsArchiver
	} else {
		log.Warn().Msg("No archive bucket configured - raw model responses will not be stored")
	}

	insightService := insight.NewService(accountRepo, transactionRepo, insightRepo, generator, archiver, log)

	insightsHandler := handlers.NewInsightsHandler(insightService, log)
	transactionsHandler := handlers.NewTransactionsHandler(transactionRepo, log)

	// Bank linking is optional; the insight endpoints work without it.
	var linkHandler *handlers.LinkHandler
	if cfg.AggregatorURL != "" {
		source := aggregator.NewCachedSource(
			aggregator.NewClient(cfg.AggregatorURL, cfg.AggregatorClientID, cfg.AggregatorSecret),
			linktoken.New(),
		)
		linkHandler = handlers.NewLinkHandler(source, log)
	} else {
		log.Warn().Msg("No aggregator configured - bank linking will be disabled")
	}

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			insightsHandler.GetInsights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			insightsHandler.RefreshInsights(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/insights/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			insightID := strings.TrimPrefix(r.URL.Path, "/api/insights/")
			if insightID == "" || insightID == "refresh" {
				middleware.WriteError(w, http.StatusBadRequest, "Insight ID is required")
				return
			}
			insightsHandler.DeleteInsight(w, r, insightID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	if linkHandler != nil {
		mux.HandleFunc("/api/link/token", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				linkHandler.CreateLinkToken(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
