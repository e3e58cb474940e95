package testing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// TestWorkspace はテスト用のWorkspaceを生成します
func TestWorkspace(source domain.ReadSource, strict bool) *domain.Workspace {
	return &domain.Workspace{
		ID:                uuid.New(),
		Name:              "acme-facilities",
		SpreadsheetID:     "sheet-123",
		PrimaryReadSource: source,
		StrictReadSource:  strict,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// MockWorkspaceRepository はテスト用のモックWorkspaceRepositoryです
type MockWorkspaceRepository struct {
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	UpdateReadSourceFunc func(ctx context.Context, id uuid.UUID, source domain.ReadSource) error
}

var _ domain.WorkspaceRepository = (*MockWorkspaceRepository)(nil)

func (m *MockWorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrWorkspaceNotFound
}

func (m *MockWorkspaceRepository) UpdateReadSource(ctx context.Context, id uuid.UUID, source domain.ReadSource) error {
	if m.UpdateReadSourceFunc != nil {
		return m.UpdateReadSourceFunc(ctx, id, source)
	}
	return nil
}
