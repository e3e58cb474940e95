package application

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmops/sheetsync/internal/module/workspace/domain"
	workspacetesting "github.com/fmops/sheetsync/internal/module/workspace/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func TestGet_CachesWorkspace(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(domain.ReadSourceLegacy, false)
	callCount := 0
	repo := &workspacetesting.MockWorkspaceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
			callCount++
			return workspace, nil
		},
	}
	service := NewWorkspaceService(repo, time.Minute, testLogger())

	// Execute
	first, err1 := service.Get(context.Background(), workspace.ID)
	second, err2 := service.Get(context.Background(), workspace.ID)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Same(t, first, second)
	assert.Equal(t, 1, callCount, "TTL内の2回目の読み取りはキャッシュから返る")
}

func TestGet_ExpiredEntryRefetches(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(domain.ReadSourceLegacy, false)
	callCount := 0
	repo := &workspacetesting.MockWorkspaceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
			callCount++
			return workspace, nil
		},
	}
	// 即時失効するTTL
	service := NewWorkspaceService(repo, time.Nanosecond, testLogger())

	// Execute
	_, err1 := service.Get(context.Background(), workspace.ID)
	time.Sleep(time.Millisecond)
	_, err2 := service.Get(context.Background(), workspace.ID)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, 2, callCount)
}

func TestGet_NotFound(t *testing.T) {
	repo := &workspacetesting.MockWorkspaceRepository{}
	service := NewWorkspaceService(repo, time.Minute, testLogger())

	workspace, err := service.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
	assert.Nil(t, workspace)
}

func TestSetReadSource_InvalidatesCache(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(domain.ReadSourceLegacy, false)
	updated := *workspace
	updated.PrimaryReadSource = domain.ReadSourceDB

	callCount := 0
	repo := &workspacetesting.MockWorkspaceRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
			callCount++
			if callCount == 1 {
				return workspace, nil
			}
			return &updated, nil
		},
	}
	service := NewWorkspaceService(repo, time.Hour, testLogger())

	// Execute
	before, err := service.Get(context.Background(), workspace.ID)
	require.NoError(t, err)
	require.NoError(t, service.SetReadSource(context.Background(), workspace.ID, domain.ReadSourceDB))
	after, err := service.Get(context.Background(), workspace.ID)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, domain.ReadSourceLegacy, before.PrimaryReadSource)
	assert.Equal(t, domain.ReadSourceDB, after.PrimaryReadSource, "切り替え後の読み取りに即座に反映される")
	assert.Equal(t, 2, callCount)
}

func TestSetReadSource_InvalidSource(t *testing.T) {
	updateCalled := false
	repo := &workspacetesting.MockWorkspaceRepository{
		UpdateReadSourceFunc: func(ctx context.Context, id uuid.UUID, source domain.ReadSource) error {
			updateCalled = true
			return nil
		},
	}
	service := NewWorkspaceService(repo, time.Minute, testLogger())

	err := service.SetReadSource(context.Background(), uuid.New(), domain.ReadSource("SHEETS"))

	assert.Error(t, err)
	assert.False(t, updateCalled)
}
