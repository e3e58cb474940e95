package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
	synctesting "github.com/fmops/sheetsync/internal/module/sync/testing"
)

func TestEnqueue(t *testing.T) {
	// Setup
	workspaceID := uuid.New()
	entityID := uuid.New()
	var insertedType domain.JobType
	repo := &synctesting.MockJobRepository{
		InsertPendingFunc: func(ctx context.Context, wsID uuid.UUID, jobType domain.JobType, eID uuid.UUID) (*domain.SyncJob, error) {
			insertedType = jobType
			job := synctesting.TestJob(wsID, jobType)
			job.EntityID = eID
			return job, nil
		},
	}
	service := NewJobService(repo, testLogger())

	// Execute
	job, err := service.Enqueue(context.Background(), workspaceID, domain.JobTypeWorkOrder, entityID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeWorkOrder, insertedType)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, entityID, job.EntityID)
	assert.Equal(t, 0, job.Attempts)
}

func TestEnqueue_Validation(t *testing.T) {
	service := NewJobService(&synctesting.MockJobRepository{}, testLogger())

	tests := []struct {
		name        string
		workspaceID uuid.UUID
		jobType     domain.JobType
		entityID    uuid.UUID
	}{
		{name: "ワークスペースIDが空", workspaceID: uuid.Nil, jobType: domain.JobTypeWorkOrder, entityID: uuid.New()},
		{name: "エンティティIDが空", workspaceID: uuid.New(), jobType: domain.JobTypeWorkOrder, entityID: uuid.Nil},
		{name: "未知のジョブ種別", workspaceID: uuid.New(), jobType: domain.JobType("PURGE"), entityID: uuid.New()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := service.Enqueue(context.Background(), tt.workspaceID, tt.jobType, tt.entityID)
			assert.Error(t, err)
			assert.Nil(t, job)
		})
	}
}

func TestListJobs_DefaultsLimit(t *testing.T) {
	// Setup
	var gotFilter domain.JobFilter
	repo := &synctesting.MockJobRepository{
		ListFunc: func(ctx context.Context, workspaceID uuid.UUID, filter domain.JobFilter) (*domain.JobPage, error) {
			gotFilter = filter
			return &domain.JobPage{Items: []*domain.JobListItem{}}, nil
		},
	}
	service := NewJobService(repo, testLogger())

	// Execute
	page, err := service.ListJobs(context.Background(), uuid.New(), domain.JobFilter{})

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Equal(t, DefaultListLimit, gotFilter.Limit)
}

func TestListJobs_InvalidStatus(t *testing.T) {
	service := NewJobService(&synctesting.MockJobRepository{}, testLogger())

	bogus := domain.JobStatus("CANCELLED")
	page, err := service.ListJobs(context.Background(), uuid.New(), domain.JobFilter{Status: &bogus})

	assert.Error(t, err)
	assert.Nil(t, page)
}

func TestRetryJob(t *testing.T) {
	// Setup
	jobID := uuid.New()
	var resetID uuid.UUID
	repo := &synctesting.MockJobRepository{
		ResetForRetryFunc: func(ctx context.Context, id uuid.UUID) error {
			resetID = id
			return nil
		},
	}
	service := NewJobService(repo, testLogger())

	// Execute
	err := service.RetryJob(context.Background(), jobID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, jobID, resetID)
}

func TestRetryJob_NotRetryable(t *testing.T) {
	// PROCESSING/DONEのジョブはリトライ対象外
	repo := &synctesting.MockJobRepository{
		ResetForRetryFunc: func(ctx context.Context, id uuid.UUID) error {
			return domain.ErrJobNotRetryable
		},
	}
	service := NewJobService(repo, testLogger())

	err := service.RetryJob(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, domain.ErrJobNotRetryable))
}
