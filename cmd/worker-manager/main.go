// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crs-workers/internal/common/camunda"
	"crs-workers/internal/common/config"
	"crs-workers/internal/common/database"
	"crs-workers/internal/common/logger"
	"crs-workers/internal/common/metrics"
	"crs-workers/internal/common/observability"
	"crs-workers/internal/crs/engine"
	"crs-workers/internal/crs/rules"

	// Assessment Workers (3)
	ccs "crs-workers/internal/workers/assessment/calculate-crs-score"
	car "crs-workers/internal/workers/assessment/create-assessment-record"
	vad "crs-workers/internal/workers/assessment/validate-assessment-data"

	// Data Access Workers (1)
	ish "crs-workers/internal/workers/data-access/index-score-history"

	// Recommendation Workers (1)
	brc "crs-workers/internal/workers/recommendation/build-recommendation"

	// Communication Workers (1)
	srn "crs-workers/internal/workers/communication/send-result-notification"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// loadRuleTable parses and validates the rule table before any worker
// starts. A document path in config overrides the embedded default. The
// version pin, when set, refuses a table whose version does not match,
// so a deployment cannot score against the wrong year's rules.
func loadRuleTable(cfg config.RulesConfig, log *zap.Logger) (*rules.Table, error) {
	doc := rules.DefaultDocument
	source := "embedded"
	if cfg.DocumentPath != "" {
		data, err := os.ReadFile(cfg.DocumentPath)
		if err != nil {
			return nil, fmt.Errorf("rule document read failed: %w", err)
		}
		doc = data
		source = cfg.DocumentPath
	}

	table, err := rules.Load(doc)
	if err != nil {
		return nil, fmt.Errorf("rule document invalid: %w", err)
	}

	if cfg.VersionPin != "" && table.Version() != cfg.VersionPin {
		return nil, fmt.Errorf("rule table version %q does not match pinned version %q",
			table.Version(), cfg.VersionPin)
	}

	log.Info("Rule table loaded",
		zap.String("version", table.Version()),
		zap.String("source", source),
	)
	return table, nil
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Load Rule Table ---
	table, err := loadRuleTable(cfg.Rules, zapLog)
	if err != nil {
		zapLog.Fatal("rule table load failed", zap.Error(err))
	}
	metrics.RuleTableVersion.WithLabelValues(table.Version()).Set(1)
	scoreEngine := engine.New(table)

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         30 * time.Second,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- START: Register ALL 6 Workers ---

	var openWorkers []*camunda.CamundaWorker

	// --- 1. Assessment Workers (3) ---
	if cfg.Workers[vad.TaskType].Enabled {
		handler := vad.NewHandler(
			&vad.Config{
				Timeout: time.Duration(cfg.Workers[vad.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		openWorkers = append(openWorkers,
			startWorker(camundaClient, vad.TaskType, cfg.Workers[vad.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[ccs.TaskType].Enabled {
		handler := ccs.NewHandler(
			&ccs.Config{
				Timeout:  time.Duration(cfg.Workers[ccs.TaskType].Timeout) * time.Millisecond,
				CacheTTL: time.Duration(cfg.Rules.CacheTTL) * time.Second,
			},
			scoreEngine, redis.Client, log,
		)
		openWorkers = append(openWorkers,
			startWorker(camundaClient, ccs.TaskType, cfg.Workers[ccs.TaskType], handler.Handle, zapLog))
	}

	if cfg.Workers[car.TaskType].Enabled {
		handler := car.NewHandler(
			&car.Config{
				Timeout: time.Duration(cfg.Workers[car.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		openWorkers = append(openWorkers,
			startWorker(camundaClient, car.TaskType, cfg.Workers[car.TaskType], handler.Handle, zapLog))
	}

	// --- 2. Data Access Workers (1) ---
	if cfg.Workers[ish.TaskType].Enabled {
		handler := ish.NewHandler(
			&ish.Config{
				IndexName: "score_history",
				Timeout:   time.Duration(cfg.Workers[ish.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		openWorkers = append(openWorkers,
			startWorker(camundaClient, ish.TaskType, cfg.Workers[ish.TaskType], handler.Handle, zapLog))
	}

	// --- 3. Recommendation Workers (1) ---
	if cfg.Workers[brc.TaskType].Enabled {
		handler := brc.NewHandler(
			&brc.Config{
				GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
				GenAIAPIKey:  cfg.APIs.GenAI.APIKey,
				Timeout:      time.Duration(cfg.Workers[brc.TaskType].Timeout) * time.Millisecond,
				MaxRetries:   2,
			},
			nil, log,
		)
		openWorkers = append(openWorkers,
			startWorker(camundaClient, brc.TaskType, cfg.Workers[brc.TaskType], handler.Handle, zapLog))
	}

	// --- 4. Communication Workers (1) ---
	if cfg.Workers[srn.TaskType].Enabled {
		handler, err := srn.NewHandler(
			&srn.Config{
				EmailEnabled:   cfg.Notifications.Email.Enabled,
				SMSEnabled:     cfg.Notifications.SMS.Enabled,
				FromEmail:      cfg.Notifications.Email.FromEmail,
				AWSRegion:      cfg.Notifications.AWS.Region,
				ScoreThreshold: cfg.Notifications.SMS.ScoreThreshold,
				Timeout:        time.Duration(cfg.Workers[srn.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-result-notification handler", zap.Error(err))
		}
		openWorkers = append(openWorkers,
			startWorker(camundaClient, srn.TaskType, cfg.Workers[srn.TaskType], handler.Handle, zapLog))
	}

	zapLog.Info("All 6 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := camundaClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status":       "ready",
				"rulesVersion": table.Version(),
				"time":         time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range openWorkers {
		if w == nil {
			continue
		}
		w.Close(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) *camunda.CamundaWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return client.NewWorker(taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, handlerFunc, log)
}
