package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// JobReader はジョブストアの読み取り操作を定義します
type JobReader interface {
	Get(ctx context.Context, id uuid.UUID) (*SyncJob, error)
	// SelectEligible は実行可能なPENDINGジョブ（next_retry_at がnullまたは到来済み）を
	// 作成順にlimit件まで返します
	SelectEligible(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*SyncJob, error)
	// List はカーソルページネーション付きの一覧を返します
	List(ctx context.Context, workspaceID uuid.UUID, filter JobFilter) (*JobPage, error)
	// CountPending はワークスペースのPENDINGジョブ総数を返します
	CountPending(ctx context.Context, workspaceID uuid.UUID) (int, error)
}

// JobWriter はジョブストアの更新操作を定義します
type JobWriter interface {
	InsertPending(ctx context.Context, workspaceID uuid.UUID, jobType JobType, entityID uuid.UUID) (*SyncJob, error)
	// Claim は status = PENDING の場合のみ PROCESSING へ遷移させる条件付き更新です。
	// 更新できた場合は true、他ワーカーが先にクレーム済みの場合は false を返します。
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorCode, errorMessage string, attempts int) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string, attempts int) error
	// ResetForRetry はFAILEDまたはPENDINGのジョブを即時実行可能なPENDINGに戻します。
	// attempts はリセットしません（手動介入後も最大試行回数の保護を維持するため）。
	ResetForRetry(ctx context.Context, id uuid.UUID) error
}

// JobRepository は読み書き両方の操作をまとめたインターフェースです
type JobRepository interface {
	JobReader
	JobWriter
}

// WorkOrderReader は実行時の正準レコード読み取りを定義します。
// エンキュー時のスナップショットではなく常に最新状態を伝播させるため、
// ジョブ実行のたびに現在値を読み取ります。
type WorkOrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error)
}

// LegacyWriter はレガシーストアへの書き込み操作を定義します
type LegacyWriter interface {
	// UpsertWorkOrder は自然キーによるアップサートです
	UpsertWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error
	// UpdateSignedFields はドキュメント照合時に変化するフィールドのみの部分更新です
	UpdateSignedFields(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error
}

// WorkspaceResolver はジョブ実行前のワークスペース解決を定義します
type WorkspaceResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error)
}
