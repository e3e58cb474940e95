package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// WorkOrderRepository は作業指示書（正準ストア側）の永続化アダプターです
type WorkOrderRepository struct {
	pool *pgxpool.Pool
}

// NewWorkOrderRepository は新しい作業指示書リポジトリを作成します
func NewWorkOrderRepository(pool *pgxpool.Pool) *WorkOrderRepository {
	return &WorkOrderRepository{pool: pool}
}

// コンパイル時の型チェック
var _ domain.Source = (*WorkOrderRepository)(nil)

const workOrderColumns = `id, workspace_id, order_number, issuer_key, status, description, amount, scheduled_date, signed_at, created_at, updated_at`

// GetByID はIDで作業指示書を取得します。
// エクスポートジョブの実行時読み取りに使用され、常に現在の状態を返します。
func (r *WorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM work_orders WHERE id = $1`, workOrderColumns)
	row := r.pool.QueryRow(ctx, query, pgtype.UUID{Bytes: id, Valid: true})
	order, err := scanWorkOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkOrderNotFound, id)
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return order, nil
}

// ListWorkOrders は直近の作業指示書を取得します（Source実装）
func (r *WorkOrderRepository) ListWorkOrders(ctx context.Context, workspace *workspacedomain.Workspace, limit int) ([]*domain.WorkOrder, error) {
	query := fmt.Sprintf(`
SELECT %s FROM work_orders
WHERE workspace_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`, workOrderColumns)

	rows, err := r.pool.Query(ctx, query, pgtype.UUID{Bytes: workspace.ID, Valid: true}, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.WorkOrder, 0, limit)
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	return orders, nil
}

// GetWorkOrder は自然キーで作業指示書を取得します（Source実装）
func (r *WorkOrderRepository) GetWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, key domain.NaturalKey) (*domain.WorkOrder, error) {
	query := fmt.Sprintf(`
SELECT %s FROM work_orders
WHERE workspace_id = $1 AND order_number = $2 AND issuer_key = $3`, workOrderColumns)

	row := r.pool.QueryRow(ctx, query,
		pgtype.UUID{Bytes: workspace.ID, Valid: true},
		key.OrderNumber,
		key.IssuerKey,
	)
	order, err := scanWorkOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkOrderNotFound, key)
		}
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}
	return order, nil
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var (
		id            pgtype.UUID
		workspaceID   pgtype.UUID
		orderNumber   string
		issuerKey     string
		status        string
		description   pgtype.Text
		amount        pgtype.Float8
		scheduledDate pgtype.Date
		signedAt      pgtype.Timestamp
		createdAt     pgtype.Timestamp
		updatedAt     pgtype.Timestamp
	)

	err := row.Scan(
		&id,
		&workspaceID,
		&orderNumber,
		&issuerKey,
		&status,
		&description,
		&amount,
		&scheduledDate,
		&signedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	order := &domain.WorkOrder{
		ID:          id.Bytes,
		WorkspaceID: workspaceID.Bytes,
		OrderNumber: orderNumber,
		IssuerKey:   issuerKey,
		Status:      status,
		CreatedAt:   createdAt.Time,
		UpdatedAt:   updatedAt.Time,
	}
	if description.Valid {
		order.Description = description.String
	}
	if amount.Valid {
		v := amount.Float64
		order.Amount = &v
	}
	if scheduledDate.Valid {
		t := scheduledDate.Time
		order.ScheduledDate = &t
	}
	if signedAt.Valid {
		t := signedAt.Time
		order.SignedAt = &t
	}

	return order, nil
}
