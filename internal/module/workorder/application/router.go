package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// WorkspaceResolver はワークスペース設定の解決を定義します
type WorkspaceResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error)
}

// ReadRouter は二重ソース読み取りアダプターです。
// ワークスペースの primary_read_source に従ってプライマリを選択し、
// 失敗時はストリクトモードでない限りセカンダリへフォールバックします。
// 書き込みは一切行わず、呼び出し間で状態を持ちません。
type ReadRouter struct {
	db         domain.Source
	legacy     domain.Source
	workspaces WorkspaceResolver
	log        *slog.Logger
}

// NewReadRouter は新しいReadRouterを作成します
func NewReadRouter(db domain.Source, legacy domain.Source, workspaces WorkspaceResolver, log *slog.Logger) *ReadRouter {
	return &ReadRouter{
		db:         db,
		legacy:     legacy,
		workspaces: workspaces,
		log:        log,
	}
}

// ListWorkOrders は作業指示書の一覧を読み取りルーティング経由で取得します
func (r *ReadRouter) ListWorkOrders(ctx context.Context, workspaceID uuid.UUID, limit int) (*domain.RoutedWorkOrders, error) {
	workspace, err := r.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	primary, secondary, primaryTag, secondaryTag := r.sources(workspace)

	items, primaryErr := primary.ListWorkOrders(ctx, workspace, limit)
	if primaryErr == nil {
		return &domain.RoutedWorkOrders{Items: items, DataSource: primaryTag}, nil
	}

	r.log.Warn("Primary read source failed",
		"workspaceID", workspaceID,
		"primary", primaryTag,
		"error", primaryErr,
	)

	if workspace.StrictReadSource {
		return nil, &domain.RoutingError{
			Failure:    domain.FailureStrictMode,
			Primary:    primaryTag,
			PrimaryErr: primaryErr,
		}
	}

	items, secondaryErr := secondary.ListWorkOrders(ctx, workspace, limit)
	if secondaryErr != nil {
		return nil, &domain.RoutingError{
			Failure:      domain.FailureBothSources,
			Primary:      primaryTag,
			PrimaryErr:   primaryErr,
			SecondaryErr: secondaryErr,
		}
	}

	return &domain.RoutedWorkOrders{Items: items, DataSource: secondaryTag, FallbackUsed: true}, nil
}

// GetWorkOrder は自然キーで単一の作業指示書を取得します
func (r *ReadRouter) GetWorkOrder(ctx context.Context, workspaceID uuid.UUID, key domain.NaturalKey) (*domain.RoutedWorkOrder, error) {
	workspace, err := r.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	primary, secondary, primaryTag, secondaryTag := r.sources(workspace)

	order, primaryErr := primary.GetWorkOrder(ctx, workspace, key)
	if primaryErr == nil {
		return &domain.RoutedWorkOrder{Order: order, DataSource: primaryTag}, nil
	}

	r.log.Warn("Primary read source failed",
		"workspaceID", workspaceID,
		"primary", primaryTag,
		"key", key.String(),
		"error", primaryErr,
	)

	if workspace.StrictReadSource {
		return nil, &domain.RoutingError{
			Failure:    domain.FailureStrictMode,
			Primary:    primaryTag,
			PrimaryErr: primaryErr,
		}
	}

	order, secondaryErr := secondary.GetWorkOrder(ctx, workspace, key)
	if secondaryErr != nil {
		return nil, &domain.RoutingError{
			Failure:      domain.FailureBothSources,
			Primary:      primaryTag,
			PrimaryErr:   primaryErr,
			SecondaryErr: secondaryErr,
		}
	}

	return &domain.RoutedWorkOrder{Order: order, DataSource: secondaryTag, FallbackUsed: true}, nil
}

// sources はワークスペース設定に従ってプライマリとセカンダリを決定します
func (r *ReadRouter) sources(workspace *workspacedomain.Workspace) (primary, secondary domain.Source, primaryTag, secondaryTag domain.DataSource) {
	if workspace.PrimaryReadSource == workspacedomain.ReadSourceLegacy {
		return r.legacy, r.db, domain.DataSourceLegacy, domain.DataSourceDB
	}
	return r.db, r.legacy, domain.DataSourceDB, domain.DataSourceLegacy
}
