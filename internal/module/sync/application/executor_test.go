package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
	synctesting "github.com/fmops/sheetsync/internal/module/sync/testing"
	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workordertesting "github.com/fmops/sheetsync/internal/module/workorder/testing"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
	workspacetesting "github.com/fmops/sheetsync/internal/module/workspace/testing"
)

func TestExecute_WorkOrderUpserts(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	job := synctesting.TestJob(workspace.ID, domain.JobTypeWorkOrder)
	current := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-acme", "SCHEDULED")
	current.ID = job.EntityID

	orders := &synctesting.MockWorkOrderReader{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error) {
			assert.Equal(t, job.EntityID, id)
			return current, nil
		},
	}
	var upserted *workorderdomain.WorkOrder
	legacy := &synctesting.MockLegacyWriter{
		UpsertWorkOrderFunc: func(ctx context.Context, ws *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
			upserted = order
			return nil
		},
	}
	executor := NewExecutor(orders, legacy, testLogger())

	// Execute
	err := executor.Execute(context.Background(), workspace, job)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, upserted)
	// 実行時点の正準レコードがそのまま伝播される
	assert.Equal(t, "SCHEDULED", upserted.Status)
	assert.Equal(t, "WO-1001", upserted.OrderNumber)
}

func TestExecute_SignedMatchUpdatesSignedFields(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	job := synctesting.TestJob(workspace.ID, domain.JobTypeSignedMatch)
	signedAt := time.Now()
	current := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-acme", "SIGNED")
	current.SignedAt = &signedAt

	orders := &synctesting.MockWorkOrderReader{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error) {
			return current, nil
		},
	}
	updateCalled := false
	upsertCalled := false
	legacy := &synctesting.MockLegacyWriter{
		UpdateSignedFieldsFunc: func(ctx context.Context, ws *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
			updateCalled = true
			return nil
		},
		UpsertWorkOrderFunc: func(ctx context.Context, ws *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
			upsertCalled = true
			return nil
		},
	}
	executor := NewExecutor(orders, legacy, testLogger())

	// Execute
	err := executor.Execute(context.Background(), workspace, job)

	// Assert
	require.NoError(t, err)
	assert.True(t, updateCalled)
	assert.False(t, upsertCalled, "署名照合ジョブは部分更新のみ行う")
}

func TestExecute_SignedDocumentIsNoop(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	job := synctesting.TestJob(workspace.ID, domain.JobTypeSignedDocument)

	readCalled := false
	orders := &synctesting.MockWorkOrderReader{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*workorderdomain.WorkOrder, error) {
			readCalled = true
			return nil, workorderdomain.ErrWorkOrderNotFound
		},
	}
	writeCalled := false
	legacy := &synctesting.MockLegacyWriter{
		UpsertWorkOrderFunc: func(ctx context.Context, ws *workspacedomain.Workspace, order *workorderdomain.WorkOrder) error {
			writeCalled = true
			return nil
		},
	}
	executor := NewExecutor(orders, legacy, testLogger())

	// Execute
	err := executor.Execute(context.Background(), workspace, job)

	// Assert
	require.NoError(t, err)
	assert.False(t, readCalled)
	assert.False(t, writeCalled)
}

func TestExecute_UnknownJobType(t *testing.T) {
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	job := synctesting.TestJob(workspace.ID, domain.JobType("PURGE"))

	executor := NewExecutor(&synctesting.MockWorkOrderReader{}, &synctesting.MockLegacyWriter{}, testLogger())

	err := executor.Execute(context.Background(), workspace, job)

	assert.Error(t, err)
}
