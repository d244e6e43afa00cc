// Package main is the entry point for the student risk hub service.
//
// The service assesses a student's academic risk from a profile of
// demographic, family, and behavioral attributes: validation, feature
// engineering, a frozen gradient-boosted classifier, path attribution,
// and a mentoring narrative, bundled into one response.
//
// The architecture follows Clean Architecture conventions:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: model artifacts, persistence, external clients
// - Interface: HTTP handlers and middleware
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application layer
	"github.com/edurisk/student-risk-hub/internal/application/command"
	"github.com/edurisk/student-risk-hub/internal/application/eventhandler"
	"github.com/edurisk/student-risk-hub/internal/application/query"

	// Domain layer
	"github.com/edurisk/student-risk-hub/internal/domain/prediction"

	// Infrastructure layer
	adviceclient "github.com/edurisk/student-risk-hub/internal/infrastructure/external/advice"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/external/telegram"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/messaging"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/model"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/persistence/postgres"
	"github.com/edurisk/student-risk-hub/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/edurisk/student-risk-hub/internal/interface/http"

	// Packages
	"github.com/edurisk/student-risk-hub/config"
	"github.com/edurisk/student-risk-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ═════════════════════════════════════════════════════════════════════════
	// 1. CONFIGURATION
	// ═════════════════════════════════════════════════════════════════════════
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 2. LOGGING
	// ═════════════════════════════════════════════════════════════════════════
	log := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// Infrastructure packages log through slog.
	slogLevel := slog.LevelInfo
	if cfg.App.Debug {
		slogLevel = slog.LevelDebug
	}
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))

	log.Info("starting student-risk-hub",
		logger.String("version", cfg.App.Version),
		logger.String("environment", string(cfg.App.Environment)),
	)

	// ═════════════════════════════════════════════════════════════════════════
	// 3. MODEL ARTIFACTS
	// The process stays alive without artifacts: health checks answer
	// honestly and assessments return 503 until a redeploy fixes it.
	// ═════════════════════════════════════════════════════════════════════════
	var modelService *model.Service
	modelCtx, err := model.LoadContext(cfg.Model.ArtifactDir)
	if err != nil {
		log.Error("model artifacts failed to load; serving degraded",
			logger.String("artifact_dir", cfg.Model.ArtifactDir),
			logger.Err(err),
		)
	}
	modelService = model.NewService(modelCtx, model.AttributionConfig{
		Enabled: cfg.Model.ExplanationsEnabled,
		Limit:   cfg.Model.AttributionLimit,
	}, slogger)

	// ═════════════════════════════════════════════════════════════════════════
	// 4. POSTGRESQL (assessment history, optional)
	// ═════════════════════════════════════════════════════════════════════════
	var assessmentRepo *postgres.AssessmentRepository
	var pgConn *postgres.Connection
	if !cfg.Database.Disabled && cfg.Database.URL != "" {
		settings := postgres.DefaultPoolSettings()
		settings.MaxConns = int32(cfg.Database.MaxOpenConns)
		settings.MinConns = int32(cfg.Database.MaxIdleConns)
		settings.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		settings.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		pgConn, err = postgres.NewConnection(ctx, cfg.Database.URL, settings)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgConn.Close()

		// ─────────────────────────────────────────────────────────────────────
		// 5. MIGRATIONS
		// ─────────────────────────────────────────────────────────────────────
		migrator := postgres.NewMigrator(pgConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		assessmentRepo = postgres.NewAssessmentRepository(pgConn)
		log.Info("postgres connected, assessment history enabled")
	} else {
		log.Warn("postgres disabled; assessments will not be persisted")
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 6. REDIS (grade averages cache, optional)
	// ═════════════════════════════════════════════════════════════════════════
	var averagesCache query.GradeAveragesCache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable; grade averages will hit postgres directly", logger.Err(err))
		} else {
			defer cache.Close()
			averagesCache = redis.NewAveragesCache(cache, cfg.Redis.AveragesTTL)
			log.Info("redis connected, aggregate caching enabled")
		}
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 7. EVENT BUS
	// ═════════════════════════════════════════════════════════════════════════
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		WorkerPoolSize: 4,
		Logger:         slogger,
	})
	defer eventBus.Close()

	// ═════════════════════════════════════════════════════════════════════════
	// 8. EXTERNAL CLIENTS
	// ═════════════════════════════════════════════════════════════════════════
	var adviceGen command.AdviceGenerator
	if cfg.AdviceEnabled() {
		client, err := adviceclient.NewClient(adviceclient.ClientConfig{
			APIKey:           cfg.Advice.APIKey,
			BaseURL:          cfg.Advice.BaseURL,
			Model:            cfg.Advice.Model,
			MaxTokens:        cfg.Advice.MaxTokens,
			Temperature:      cfg.Advice.Temperature,
			BreakerThreshold: cfg.Advice.CircuitBreakerThreshold,
			BreakerTimeout:   cfg.Advice.CircuitBreakerTimeout,
			Logger:           log,
		})
		if err != nil {
			return fmt.Errorf("create advice client: %w", err)
		}
		adviceGen = client
		log.Info("advice generation enabled", logger.String("model", cfg.Advice.Model))
	} else {
		log.Warn("advice generation disabled; every assessment gets fallback advice")
	}

	var alerter eventhandler.Alerter
	if cfg.AlertsEnabled() {
		client, err := telegram.NewClient(telegram.ClientConfig{
			Token:         cfg.Alert.TelegramToken,
			ChatID:        cfg.Alert.TelegramChatID,
			Timeout:       cfg.Alert.RequestTimeout,
			RetryAttempts: cfg.Alert.MaxRetries,
			RetryDelay:    cfg.Alert.RetryBaseDelay,
			Logger:        log,
		})
		if err != nil {
			return fmt.Errorf("create telegram alerter: %w", err)
		}
		alerter = client
		log.Info("faculty alerts enabled")
	} else {
		log.Warn("faculty alerts disabled; high risk detections are log-only")
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 9. APPLICATION LAYER (Commands, Queries)
	// ═════════════════════════════════════════════════════════════════════════
	var repo = assessmentRepoOrNil(assessmentRepo)

	assessHandler := command.NewAssessStudentHandler(
		model.NewCommandAdapter(modelService),
		adviceGen,
		repo,
		eventBus,
		log,
		command.AssessStudentHandlerConfig{AdviceTimeout: cfg.Advice.RequestTimeout},
	)

	var historyHandler *query.GetAssessmentHistoryHandler
	var averagesHandler *query.GetGradeAveragesHandler
	if repo != nil {
		historyHandler = query.NewGetAssessmentHistoryHandler(repo)
		averagesHandler = query.NewGetGradeAveragesHandler(repo, averagesCache, log)
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 10. EVENT HANDLERS
	// ═════════════════════════════════════════════════════════════════════════
	highRiskHandler := eventhandler.NewOnHighRiskHandler(alerter, slogger, eventhandler.DefaultHighRiskConfig())
	if err := highRiskHandler.Register(eventBus); err != nil {
		return fmt.Errorf("register high risk handler: %w", err)
	}

	// ═════════════════════════════════════════════════════════════════════════
	// 11. HTTP SERVER
	// ═════════════════════════════════════════════════════════════════════════
	server := httpserver.NewServer(httpserver.Config{
		Host:               cfg.HTTP.Host,
		Port:               cfg.HTTP.Port,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:     1 << 20,
		EnableCORS:         cfg.HTTP.EnableCORS,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		APIKeyHashes:       cfg.HTTP.APIKeyHashes,
	}, httpserver.Dependencies{
		AssessHandler:   assessHandler,
		HistoryHandler:  historyHandler,
		AveragesHandler: averagesHandler,
		ModelReady:      modelService.Ready,
		HealthChecker:   &dependencyHealth{pg: pgConn},
		Logger:          log,
	})

	// ═════════════════════════════════════════════════════════════════════════
	// 12. START & GRACEFUL SHUTDOWN
	// ═════════════════════════════════════════════════════════════════════════
	serverErr := server.StartAsync()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

// assessmentRepoOrNil avoids a typed-nil interface when postgres is disabled.
func assessmentRepoOrNil(repo *postgres.AssessmentRepository) prediction.Repository {
	if repo == nil {
		return nil
	}
	return repo
}

// dependencyHealth probes optional infrastructure for the health endpoint.
type dependencyHealth struct {
	pg *postgres.Connection
}

func (d *dependencyHealth) Check(ctx context.Context) []httpserver.ComponentHealth {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var components []httpserver.ComponentHealth

	if d.pg == nil {
		components = append(components, httpserver.ComponentHealth{Name: "postgres", Status: "disabled"})
	} else if err := d.pg.Ping(probeCtx); err != nil {
		components = append(components, httpserver.ComponentHealth{Name: "postgres", Status: "down", Detail: err.Error()})
	} else {
		components = append(components, httpserver.ComponentHealth{Name: "postgres", Status: "up"})
	}

	return components
}
