package testing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// TestWorkOrder はテスト用のWorkOrderを生成します
func TestWorkOrder(workspaceID uuid.UUID, orderNumber, issuerKey, status string) *domain.WorkOrder {
	return &domain.WorkOrder{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		OrderNumber: orderNumber,
		IssuerKey:   issuerKey,
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// MockSource はテスト用のモックSourceです
type MockSource struct {
	ListWorkOrdersFunc func(ctx context.Context, workspace *workspacedomain.Workspace, limit int) ([]*domain.WorkOrder, error)
	GetWorkOrderFunc   func(ctx context.Context, workspace *workspacedomain.Workspace, key domain.NaturalKey) (*domain.WorkOrder, error)
}

var _ domain.Source = (*MockSource)(nil)

func (m *MockSource) ListWorkOrders(ctx context.Context, workspace *workspacedomain.Workspace, limit int) ([]*domain.WorkOrder, error) {
	if m.ListWorkOrdersFunc != nil {
		return m.ListWorkOrdersFunc(ctx, workspace, limit)
	}
	return nil, nil
}

func (m *MockSource) GetWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, key domain.NaturalKey) (*domain.WorkOrder, error) {
	if m.GetWorkOrderFunc != nil {
		return m.GetWorkOrderFunc(ctx, workspace, key)
	}
	return nil, domain.ErrWorkOrderNotFound
}

// MockWorkspaceResolver はテスト用のワークスペースリゾルバです
type MockWorkspaceResolver struct {
	GetFunc func(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error)
}

func (m *MockWorkspaceResolver) Get(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, workspacedomain.ErrWorkspaceNotFound
}
