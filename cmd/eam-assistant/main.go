// cmd/eam-assistant/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"eam-assistant/internal/api"
	"eam-assistant/internal/assets"
	"eam-assistant/internal/audit"
	"eam-assistant/internal/common/auth"
	"eam-assistant/internal/common/aws"
	"eam-assistant/internal/common/camunda"
	"eam-assistant/internal/common/config"
	"eam-assistant/internal/common/database"
	"eam-assistant/internal/common/logger"
	"eam-assistant/internal/common/observability"
	"eam-assistant/internal/documents"
	"eam-assistant/internal/eam"
	"eam-assistant/internal/llm"
	"eam-assistant/internal/notify"
	"eam-assistant/internal/workers/equipment"

	pa "eam-assistant/internal/workers/equipment/predict-attribute"
	pab "eam-assistant/internal/workers/equipment/predict-attributes-bulk"
	ems "eam-assistant/internal/workers/maintenance/extract-maintenance-schedule"
	etp "eam-assistant/internal/workers/maintenance/extract-task-plans"
	air "eam-assistant/internal/workers/safety/analyze-incident-report"
	eq "eam-assistant/internal/workers/training/extract-qualifications"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting EAM assistant...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	}, log)

	ctx := context.Background()

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return esClient.Ping(pingCtx)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("Failed to connect to Elasticsearch", zap.Error(err))
	}
	zapLog.Info("Connected to Elasticsearch", zap.String("index", esClient.Index))

	checks := []api.Check{{Name: "elasticsearch", Ping: esClient.Ping}}

	// --- Redis (optional) ---
	var (
		historyCache assets.HistoryCache
		lovCache     eam.LOVCache
	)
	if cfg.Database.Redis.Enabled() {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			historyCache = redisClient
			lovCache = redisClient
			checks = append(checks, api.Check{Name: "redis", Ping: redisClient.Ping})
			zapLog.Info("Connected to Redis")
		}
	}

	// --- PostgreSQL audit log (optional) ---
	var recorder audit.Recorder = audit.Nop{}
	if cfg.Database.Postgres.Host != "" {
		var pgClient *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pgClient, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pgClient.Ping(ctx)
		}, 3, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Warn("PostgreSQL unavailable, audit log disabled", zap.Error(err))
		} else {
			defer pgClient.Close()
			store := audit.NewStore(pgClient.DB)
			if err := store.EnsureSchema(ctx); err != nil {
				zapLog.Warn("Failed to prepare audit tables, audit log disabled", zap.Error(err))
			} else {
				recorder = store
				checks = append(checks, api.Check{Name: "postgres", Ping: pgClient.Ping})
				zapLog.Info("Connected to PostgreSQL")
			}
		}
	}

	// --- Language model ---
	var completer llm.Completer
	if c, err := llm.New(cfg.LLM, log); err != nil {
		zapLog.Error("Language model is not available, predictions will fail", zap.Error(err))
		completer = llm.Unavailable{Err: err}
	} else {
		completer = c
		zapLog.Info("Language model configured", zap.String("model", cfg.LLM.Name))
	}

	// --- EAM ---
	eamClient := eam.NewClient(cfg.EAM, log)
	var classes eam.ClassLister
	if lov := eam.NewLOVFetcher(cfg.EAM, lovCache, log); lov != nil {
		classes = lov
	}
	catalog := eam.NewCatalog(cfg.Safety, eamClient, classes, log)
	extractor := documents.NewExtractor(cfg.Documents, log)

	// --- Notifications ---
	var (
		email  notify.EmailSender
		events notify.EventPublisher
	)
	if cfg.Integrations.AWS.SES.Enabled {
		if c, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region); err != nil {
			zapLog.Warn("Failed to create SES client", zap.Error(err))
		} else {
			email = c
		}
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		if c, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region); err != nil {
			zapLog.Warn("Failed to create SNS client", zap.Error(err))
		} else {
			events = c
		}
	}
	notifier := notify.New(cfg.Integrations, email, events, log)

	// --- Handlers ---
	searcher := assets.NewSearcher(esClient.Client, assets.SearchConfig{
		Index:            esClient.Index,
		DescriptionField: cfg.Database.Elasticsearch.DescriptionField,
		Size:             cfg.Database.Elasticsearch.SearchSize,
		CacheTTL:         time.Duration(cfg.Database.Elasticsearch.HistoryCacheTTL) * time.Second,
	}, historyCache, log)
	predictor := equipment.NewPredictor(searcher, completer, log)

	handlers := api.Handlers{
		PredictAttribute: pa.NewHandler(pa.FromWorker(config.GetWorkerConfig(cfg, pa.TaskType)), predictor, recorder, log),
		PredictBulk:      pab.NewHandler(pab.FromWorker(config.GetWorkerConfig(cfg, pab.TaskType)), predictor, recorder, obs, log),
		MaintenanceSchedule: ems.NewHandler(ems.FromWorker(config.GetWorkerConfig(cfg, ems.TaskType)),
			extractor, eamClient, completer, eamClient, log),
		TaskPlans: etp.NewHandler(etp.FromWorker(config.GetWorkerConfig(cfg, etp.TaskType)),
			extractor, eamClient, completer, eamClient, log),
		Qualifications: eq.NewHandler(eq.FromWorker(config.GetWorkerConfig(cfg, eq.TaskType)),
			extractor, eamClient, completer, eamClient, log),
		IncidentReport: air.NewHandler(air.FromWorker(config.GetWorkerConfig(cfg, air.TaskType)), air.Deps{
			Extractor: extractor,
			Fetcher:   eamClient,
			LLM:       completer,
			EAM:       eamClient,
			Options:   catalog,
			Notifier:  notifier,
			Audit:     recorder,
		}, log),
	}

	// --- Zeebe workers (optional) ---
	var (
		zeebeClient *camunda.Client
		jobWorkers  []worker.JobWorker
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
			return err
		}, 5, 2*time.Second, zapLog, "Zeebe connection")
		if err != nil {
			zapLog.Fatal("Failed to connect to Zeebe", zap.Error(err))
		}
		zapLog.Info("Connected to Zeebe", zap.String("address", cfg.Camunda.BrokerAddress))
		checks = append(checks, api.Check{Name: "zeebe", Ping: zeebeClient.HealthCheck})

		zc := zeebeClient.Zeebe()
		registrations := []struct {
			taskType string
			handler  camunda.JobHandler
		}{
			{pa.TaskType, handlers.PredictAttribute},
			{pab.TaskType, handlers.PredictBulk},
			{ems.TaskType, handlers.MaintenanceSchedule},
			{etp.TaskType, handlers.TaskPlans},
			{eq.TaskType, handlers.Qualifications},
			{air.TaskType, handlers.IncidentReport},
		}
		for _, r := range registrations {
			if jw := camunda.StartWorker(zc, r.taskType, config.GetWorkerConfig(cfg, r.taskType), r.handler, log); jw != nil {
				jobWorkers = append(jobWorkers, jw)
			}
		}
		zapLog.Info("Zeebe workers registered", zap.Int("count", len(jobWorkers)))
	}

	// --- Auth ---
	var validator auth.TokenValidator
	if cfg.Auth.Keycloak.Enabled {
		kc := cfg.Auth.Keycloak
		validator = auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
		zapLog.Info("Bearer token validation enabled", zap.String("realm", kc.Realm))
	}

	// --- HTTP API ---
	server := api.NewServer(api.Options{
		Server:        cfg.Server,
		Auth:          validator,
		Checks:        checks,
		Observability: obs,
	}, handlers, log)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.Run(); err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	for _, jw := range jobWorkers {
		jw.Close()
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	obs.Shutdown(shutdownCtx)

	zapLog.Info("EAM assistant stopped gracefully")
}
