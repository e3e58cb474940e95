package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fmops/sheetsync/internal/infra/sheets"
	syncpg "github.com/fmops/sheetsync/internal/module/sync/adapter/pg"
	syncapp "github.com/fmops/sheetsync/internal/module/sync/application"
	syncdomain "github.com/fmops/sheetsync/internal/module/sync/domain"
	workorderpg "github.com/fmops/sheetsync/internal/module/workorder/adapter/pg"
	workorderapp "github.com/fmops/sheetsync/internal/module/workorder/application"
	workspacepg "github.com/fmops/sheetsync/internal/module/workspace/adapter/pg"
	workspaceapp "github.com/fmops/sheetsync/internal/module/workspace/application"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
	"github.com/fmops/sheetsync/internal/platform/config"
	"github.com/fmops/sheetsync/internal/platform/database"
)

// ServiceContainer はアプリケーションの依存関係を保持します
type ServiceContainer struct {
	JobService       *syncapp.JobService
	Processor        *syncapp.Processor
	WorkspaceService *workspaceapp.WorkspaceService
	ReadRouter       *workorderapp.ReadRouter
	Sampler          *workorderapp.Sampler

	logger   *slog.Logger
	database *database.Database
}

type containerOptions struct {
	logger      *slog.Logger
	jobRepo     syncdomain.JobRepository
	wsRepo      workspacedomain.WorkspaceRepository
	legacyStore *sheets.WorkOrderStore
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerJobRepository はジョブリポジトリを差し替える
func WithContainerJobRepository(repo syncdomain.JobRepository) ContainerOption {
	return func(opts *containerOptions) {
		opts.jobRepo = repo
	}
}

// WithContainerWorkspaceRepository はワークスペースリポジトリを差し替える
func WithContainerWorkspaceRepository(repo workspacedomain.WorkspaceRepository) ContainerOption {
	return func(opts *containerOptions) {
		opts.wsRepo = repo
	}
}

// WithContainerLegacyStore はレガシーストアアダプターを差し替える
func WithContainerLegacyStore(store *sheets.WorkOrderStore) ContainerOption {
	return func(opts *containerOptions) {
		opts.legacyStore = store
	}
}

// NewContainer は設定からコンテナを生成します
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := &containerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	jobRepo := options.jobRepo
	if jobRepo == nil {
		jobRepo = syncpg.NewJobRepository(db.Pool)
	}

	wsRepo := options.wsRepo
	if wsRepo == nil {
		wsRepo = workspacepg.NewWorkspaceRepository(db.Pool)
	}

	legacyStore := options.legacyStore
	if legacyStore == nil {
		client, err := sheets.NewClient(
			cfg.SheetsBridge.BaseURL,
			cfg.SheetsBridge.Token,
			sheets.WithTimeout(cfg.SheetsBridge.Timeout),
		)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create sheets bridge client: %w", err)
		}
		legacyStore = sheets.NewWorkOrderStore(client)
	}

	orderRepo := workorderpg.NewWorkOrderRepository(db.Pool)

	workspaceService := workspaceapp.NewWorkspaceService(wsRepo, cfg.Sync.WorkspaceCacheTTL, logger)

	executor := syncapp.NewExecutor(orderRepo, legacyStore, logger)
	processor := syncapp.NewProcessor(jobRepo, workspaceService, executor, cfg.Sync.MaxAttempts, logger)
	jobService := syncapp.NewJobService(jobRepo, logger)

	readRouter := workorderapp.NewReadRouter(orderRepo, legacyStore, workspaceService, logger)
	sampler := workorderapp.NewSampler(orderRepo, legacyStore, workspaceService, nil, logger)

	return &ServiceContainer{
		JobService:       jobService,
		Processor:        processor,
		WorkspaceService: workspaceService,
		ReadRouter:       readRouter,
		Sampler:          sampler,
		logger:           logger,
		database:         db,
	}, nil
}

// Logger はコンテナのロガーを返します
func (c *ServiceContainer) Logger() *slog.Logger {
	return c.logger
}

// Close はコンテナが保持するリソースをクリーンアップします
func (c *ServiceContainer) Close() {
	if c.database != nil {
		c.database.Close()
	}
}

// コンパイル時の型チェック
var _ workorderapp.WorkspaceResolver = (*workspaceapp.WorkspaceService)(nil)
var _ syncdomain.WorkspaceResolver = (*workspaceapp.WorkspaceService)(nil)
var _ syncdomain.WorkOrderReader = (*workorderpg.WorkOrderRepository)(nil)
