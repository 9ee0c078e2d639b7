package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/vietddude/toolguard/internal/connectivity"
	"github.com/vietddude/toolguard/internal/core/config"
	"github.com/vietddude/toolguard/internal/core/domain"
	"github.com/vietddude/toolguard/internal/core/worker"
	"github.com/vietddude/toolguard/internal/health"
	"github.com/vietddude/toolguard/internal/infra/storage"
	"github.com/vietddude/toolguard/internal/infra/storage/memory"
	"github.com/vietddude/toolguard/internal/infra/storage/postgres"
	redisstore "github.com/vietddude/toolguard/internal/infra/storage/redis"
	"github.com/vietddude/toolguard/internal/integrity"
	"github.com/vietddude/toolguard/internal/notify"
	"github.com/vietddude/toolguard/internal/offline"
	"github.com/vietddude/toolguard/internal/recovery"
)

// Config holds the application configuration.
type Config struct {
	Port         int
	Recovery     config.RecoveryConfig
	Checkpoints  config.CheckpointConfig
	Connectivity config.ConnectivityConfig
	Alternatives map[string][]string
	Redis        redisstore.Config
	Database     postgres.Config

	// Notifier overrides the slog-backed default (the host UI layer).
	Notifier notify.Notifier

	// Retry re-executes a failed operation; wired by the host.
	Retry recovery.RetryFunc
}

// Service assembles the resilience engine and its supporting workers.
type Service struct {
	cfg          Config
	engine       *recovery.Engine
	integrityMgr *integrity.Manager
	queue        *offline.Queue
	conn         *connectivity.Monitor
	pruner       *worker.Pruner
	healthServer *health.Server

	db          *postgres.DB
	redisClient *redisstore.Client

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a Service with all dependencies initialized.
func NewService(cfg Config) (*Service, error) {
	// 1. Initialize Storage
	var checkpointRepo storage.CheckpointRepository
	var operationRepo storage.OperationRepository
	var workspaceStore storage.WorkspaceStore
	var db *postgres.DB
	var redisClient *redisstore.Client

	switch {
	case cfg.Database.URL != "":
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		checkpointRepo = postgres.NewCheckpointRepo(db)
		operationRepo = postgres.NewOperationRepo(db)
		workspaceStore = postgres.NewWorkspaceRepo(db)
		slog.Info("Using PostgreSQL storage")

	case cfg.Redis.URL != "":
		var err error
		redisClient, err = redisstore.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}

		checkpointRepo = redisstore.NewCheckpointRepo(redisClient)
		operationRepo = redisstore.NewOperationRepo(redisClient)
		// Workspaces live with the host app; keep a local store so
		// checkpoint restore has somewhere to apply.
		store := memory.NewMemoryStorage()
		workspaceStore = memory.NewWorkspaceRepo(store)
		slog.Info("Using Redis storage")

	default:
		store := memory.NewMemoryStorage()
		checkpointRepo = memory.NewCheckpointRepo(store)
		operationRepo = memory.NewOperationRepo(store)
		workspaceStore = memory.NewWorkspaceRepo(store)
		slog.Info("Using Memory storage")
	}

	// 2. Connectivity + notifications
	conn := connectivity.NewMonitor(cfg.Connectivity.ProbeURL, cfg.Connectivity.ProbeInterval.Std())

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(nil)
	}

	// 3. Core components
	integrityMgr := integrity.NewManager(checkpointRepo, workspaceStore, cfg.Checkpoints.MaxPerWorkspace)

	queue := offline.NewQueue(operationRepo, conn, func(ctx context.Context, op *domain.PendingOperation) error {
		switch op.Type {
		case domain.OperationWorkspaceSave:
			var ws domain.Workspace
			if err := json.Unmarshal(op.Payload, &ws); err != nil {
				return fmt.Errorf("bad workspace payload: %w", err)
			}
			return workspaceStore.SaveWorkspace(ctx, &ws)
		default:
			return fmt.Errorf("unknown operation type %s", op.Type)
		}
	})

	handler := recovery.NewHandler(cfg.Alternatives, conn.IsOnline, true)

	prefs := cfg.Recovery.Preferences
	engine := recovery.NewEngine(recovery.Deps{
		Handler:   handler,
		Integrity: integrityMgr,
		Notifier:  notifier,
		Online:    conn.IsOnline,
		Backoff: &recovery.ExponentialBackoff{
			InitialDelay: cfg.Recovery.InitialDelay.Std(),
			MaxDelay:     cfg.Recovery.MaxDelay.Std(),
			MaxAttempts:  cfg.Recovery.MaxAttempts,
		},
		Retry:       cfg.Retry,
		Preferences: &prefs,
		OfflineMode: true,
	})

	// 4. Supporting workers
	pruner := worker.NewPruner(checkpointRepo, func(ctx context.Context) []string {
		ids, err := checkpointRepo.Workspaces(ctx)
		if err != nil {
			slog.Warn("Failed to list checkpoint workspaces", "error", err)
			return nil
		}
		return ids
	}, cfg.Checkpoints.Retention.Std())

	healthMon := health.NewMonitor(engine, queue)
	healthServer := health.NewServer(healthMon, cfg.Port)

	return &Service{
		cfg:          cfg,
		engine:       engine,
		integrityMgr: integrityMgr,
		queue:        queue,
		conn:         conn,
		pruner:       pruner,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
	}, nil
}

// Engine exposes the recovery engine to the host application.
func (s *Service) Engine() *recovery.Engine { return s.engine }

// Integrity exposes the data-integrity manager.
func (s *Service) Integrity() *integrity.Manager { return s.integrityMgr }

// Offline exposes the offline queue.
func (s *Service) Offline() *offline.Queue { return s.queue }

// Connectivity exposes the connectivity monitor.
func (s *Service) Connectivity() *connectivity.Monitor { return s.conn }

// Start launches the background workers and the health server.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.conn.Start(runCtx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pruner.Start(runCtx)
	}()

	go func() {
		if err := s.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server stopped", "error", err)
		}
	}()

	slog.Info("Resilience engine started", "port", s.cfg.Port)
	return nil
}

// Stop shuts everything down gracefully.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	s.engine.Close()
	s.queue.Close()
	s.wg.Wait()

	if err := s.healthServer.Stop(ctx); err != nil {
		slog.Warn("Health server shutdown failed", "error", err)
	}

	if s.db != nil {
		_ = s.db.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}

	return nil
}
