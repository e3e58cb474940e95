package testing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// TestJob はテスト用のSyncJobを生成します
func TestJob(workspaceID uuid.UUID, jobType domain.JobType) *domain.SyncJob {
	return &domain.SyncJob{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		JobType:     jobType,
		EntityID:    uuid.New(),
		Status:      domain.JobStatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// MockJobRepository はテスト用のモックJobRepositoryです
type MockJobRepository struct {
	GetFunc            func(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error)
	SelectEligibleFunc func(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*domain.SyncJob, error)
	ListFunc           func(ctx context.Context, workspaceID uuid.UUID, filter domain.JobFilter) (*domain.JobPage, error)
	CountPendingFunc   func(ctx context.Context, workspaceID uuid.UUID) (int, error)
	InsertPendingFunc  func(ctx context.Context, workspaceID uuid.UUID, jobType domain.JobType, entityID uuid.UUID) (*domain.SyncJob, error)
	ClaimFunc          func(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDoneFunc       func(ctx context.Context, id uuid.UUID) error
	MarkRetryFunc      func(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorCode, errorMessage string, attempts int) error
	MarkFailedFunc     func(ctx context.Context, id uuid.UUID, errorCode, errorMessage string, attempts int) error
	ResetForRetryFunc  func(ctx context.Context, id uuid.UUID) error
}

var _ domain.JobRepository = (*MockJobRepository)(nil)

func (m *MockJobRepository) Get(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrJobNotFound
}

func (m *MockJobRepository) SelectEligible(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*domain.SyncJob, error) {
	if m.SelectEligibleFunc != nil {
		return m.SelectEligibleFunc(ctx, workspaceID, limit)
	}
	return nil, nil
}

func (m *MockJobRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.JobFilter) (*domain.JobPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, workspaceID, filter)
	}
	return &domain.JobPage{Items: []*domain.JobListItem{}}, nil
}

func (m *MockJobRepository) CountPending(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	if m.CountPendingFunc != nil {
		return m.CountPendingFunc(ctx, workspaceID)
	}
	return 0, nil
}

func (m *MockJobRepository) InsertPending(ctx context.Context, workspaceID uuid.UUID, jobType domain.JobType, entityID uuid.UUID) (*domain.SyncJob, error) {
	if m.InsertPendingFunc != nil {
		return m.InsertPendingFunc(ctx, workspaceID, jobType, entityID)
	}
	job := TestJob(workspaceID, jobType)
	job.EntityID = entityID
	return job, nil
}

func (m *MockJobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, id)
	}
	return true, nil
}

func (m *MockJobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	if m.MarkDoneFunc != nil {
		return m.MarkDoneFunc(ctx, id)
	}
	return nil
}

func (m *MockJobRepository) MarkRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorCode, errorMessage string, attempts int) error {
	if m.MarkRetryFunc != nil {
		return m.MarkRetryFunc(ctx, id, nextRetryAt, errorCode, errorMessage, attempts)
	}
	return nil
}

func (m *MockJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string, attempts int) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, errorCode, errorMessage, attempts)
	}
	return nil
}

func (m *MockJobRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	if m.ResetForRetryFunc != nil {
		return m.ResetForRetryFunc(ctx, id)
	}
	return nil
}

// MockWorkOrderReader はテスト用のモックWorkOrderReaderです
type MockWorkOrderReader struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error)
}

var _ domain.WorkOrderReader = (*MockWorkOrderReader)(nil)

func (m *MockWorkOrderReader) GetByID(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, workorderdomain.ErrWorkOrderNotFound
}

// MockLegacyWriter はテスト用のモックLegacyWriterです
type MockLegacyWriter struct {
	UpsertWorkOrderFunc    func(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error
	UpdateSignedFieldsFunc func(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error
}

var _ domain.LegacyWriter = (*MockLegacyWriter)(nil)

func (m *MockLegacyWriter) UpsertWorkOrder(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
	if m.UpsertWorkOrderFunc != nil {
		return m.UpsertWorkOrderFunc(ctx, workspace, order)
	}
	return nil
}

func (m *MockLegacyWriter) UpdateSignedFields(ctx context.Context, workspace *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
	if m.UpdateSignedFieldsFunc != nil {
		return m.UpdateSignedFieldsFunc(ctx, workspace, order)
	}
	return nil
}

// MockWorkspaceResolver はテスト用のワークスペースリゾルバです
type MockWorkspaceResolver struct {
	GetFunc func(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error)
}

var _ domain.WorkspaceResolver = (*MockWorkspaceResolver)(nil)

func (m *MockWorkspaceResolver) Get(ctx context.Context, id uuid.UUID) (*workspacedomain.Workspace, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, workspacedomain.ErrWorkspaceNotFound
}
