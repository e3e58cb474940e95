package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// Executor はクレーム済みジョブをジョブ種別に応じてレガシー書き込みへ
// ディスパッチします。現在のレコード状態を実行時に読み取るため、
// 遅れて実行されたジョブでも最新値が伝播されます。
type Executor struct {
	orders domain.WorkOrderReader
	legacy domain.LegacyWriter
	log    *slog.Logger
}

// NewExecutor は新しいExecutorを作成します
func NewExecutor(orders domain.WorkOrderReader, legacy domain.LegacyWriter, log *slog.Logger) *Executor {
	return &Executor{
		orders: orders,
		legacy: legacy,
		log:    log,
	}
}

// Execute はジョブ1件を実行します。レガシーストアへの書き込みは
// 成功時にちょうど1回行われます。
func (e *Executor) Execute(ctx context.Context, workspace *workspacedomain.Workspace, job *domain.SyncJob) error {
	switch job.JobType {
	case domain.JobTypeWorkOrder:
		order, err := e.orders.GetByID(ctx, job.EntityID)
		if err != nil {
			return fmt.Errorf("failed to read work order: %w", err)
		}
		if err := e.legacy.UpsertWorkOrder(ctx, workspace, order); err != nil {
			return fmt.Errorf("failed to upsert work order to legacy store: %w", err)
		}
		return nil

	case domain.JobTypeSignedMatch:
		order, err := e.orders.GetByID(ctx, job.EntityID)
		if err != nil {
			return fmt.Errorf("failed to read work order: %w", err)
		}
		if err := e.legacy.UpdateSignedFields(ctx, workspace, order); err != nil {
			return fmt.Errorf("failed to update signed fields in legacy store: %w", err)
		}
		return nil

	case domain.JobTypeSignedDocument:
		// レガシーストアには独立したドキュメント実体が存在しない。
		// 所有する作業指示書経由でのみ表現されるため、この層ではno-op。
		e.log.Debug("Signed document job is a no-op at the legacy layer",
			"jobID", job.ID,
			"entityID", job.EntityID,
		)
		return nil

	default:
		return fmt.Errorf("unknown job type: %q", job.JobType)
	}
}
