package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	syncdomain "github.com/fmops/sheetsync/internal/module/sync/domain"
	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// WorkOrderStore はレガシーストア（スプレッドシート）のアダプターです。
// 同期ジョブからの書き込みと、読み取りルーター・照合サンプラーからの
// 読み取りの両方を担います。
type WorkOrderStore struct {
	client *Client
}

// NewWorkOrderStore は新しいWorkOrderStoreを作成します
func NewWorkOrderStore(client *Client) *WorkOrderStore {
	return &WorkOrderStore{client: client}
}

// コンパイル時の型チェック
var (
	_ syncdomain.LegacyWriter = (*WorkOrderStore)(nil)
	_ workorderdomain.Source  = (*WorkOrderStore)(nil)
)

// UpsertWorkOrder は作業指示書全体を自然キーでアップサートします
func (s *WorkOrderStore) UpsertWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
	if err := s.client.UpsertRow(ctx, workspace.SpreadsheetID, toRow(order)); err != nil {
		return fmt.Errorf("failed to upsert row %s: %w", order.NaturalKey(), err)
	}
	return nil
}

// UpdateSignedFields は署名関連フィールドのみを部分更新します
func (s *WorkOrderStore) UpdateSignedFields(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
	fields := SignedFields{Status: order.Status}
	if order.SignedAt != nil {
		fields.SignedAt = order.SignedAt.UTC().Format(time.RFC3339)
	}

	err := s.client.UpdateSignedFields(ctx, workspace.SpreadsheetID, order.OrderNumber, order.IssuerKey, fields)
	if err != nil {
		return fmt.Errorf("failed to update signed fields for %s: %w", order.NaturalKey(), err)
	}
	return nil
}

// ListWorkOrders は直近の行を取得します（Source実装）
func (s *WorkOrderStore) ListWorkOrders(ctx context.Context, workspace *workspacedomain.Workspace, limit int) ([]*workorderdomain.WorkOrder, error) {
	rows, err := s.client.ListRows(ctx, workspace.SpreadsheetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rows: %w", err)
	}

	orders := make([]*workorderdomain.WorkOrder, 0, len(rows))
	for _, row := range rows {
		order, err := fromRow(workspace, row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

// GetWorkOrder は自然キーで1件取得します（Source実装）
func (s *WorkOrderStore) GetWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, key workorderdomain.NaturalKey) (*workorderdomain.WorkOrder, error) {
	row, err := s.client.GetRow(ctx, workspace.SpreadsheetID, key.OrderNumber, key.IssuerKey)
	if err != nil {
		if err == ErrRowNotFound {
			return nil, fmt.Errorf("%w: %s", workorderdomain.ErrWorkOrderNotFound, key)
		}
		return nil, fmt.Errorf("failed to get row: %w", err)
	}

	return fromRow(workspace, *row)
}

func toRow(order *workorderdomain.WorkOrder) Row {
	row := Row{
		OrderNumber: order.OrderNumber,
		IssuerKey:   order.IssuerKey,
		Status:      order.Status,
		Description: order.Description,
		Amount:      order.Amount,
	}
	if order.ScheduledDate != nil {
		row.ScheduledDate = order.ScheduledDate.Format("2006-01-02")
	}
	if order.SignedAt != nil {
		row.SignedAt = order.SignedAt.UTC().Format(time.RFC3339)
	}
	return row
}

// fromRow は行DTOをドメインモデルへ変換します。
// レガシーストアには正準IDの概念がないため、IDはゼロ値のままです。
func fromRow(workspace *workspacedomain.Workspace, row Row) (*workorderdomain.WorkOrder, error) {
	order := &workorderdomain.WorkOrder{
		WorkspaceID: workspace.ID,
		OrderNumber: row.OrderNumber,
		IssuerKey:   row.IssuerKey,
		Status:      row.Status,
		Description: row.Description,
		Amount:      row.Amount,
	}

	if row.ScheduledDate != "" {
		t, err := time.Parse("2006-01-02", row.ScheduledDate)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled date %s in row %s: %w", strconv.Quote(row.ScheduledDate), order.NaturalKey(), err)
		}
		order.ScheduledDate = &t
	}
	if row.SignedAt != "" {
		t, err := time.Parse(time.RFC3339, row.SignedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid signed timestamp %s in row %s: %w", strconv.Quote(row.SignedAt), order.NaturalKey(), err)
		}
		order.SignedAt = &t
	}
	if row.UpdatedAt != "" {
		t, err := time.Parse(time.RFC3339, row.UpdatedAt)
		if err == nil {
			order.UpdatedAt = t
		}
	}

	return order, nil
}
