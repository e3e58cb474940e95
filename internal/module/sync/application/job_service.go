package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
)

// DefaultListLimit はジョブ一覧のデフォルトページサイズ
const DefaultListLimit = 50

// JobService はジョブのエンキュー・一覧・手動リトライのユースケースを提供します
type JobService struct {
	jobs domain.JobRepository
	log  *slog.Logger
}

// NewJobService は新しいJobServiceを作成します
func NewJobService(jobs domain.JobRepository, log *slog.Logger) *JobService {
	return &JobService{
		jobs: jobs,
		log:  log,
	}
}

// Enqueue は伝播対象の正準書き込みに対応するPENDINGジョブを作成します。
// SyncJob行が作られる唯一の経路です。
func (s *JobService) Enqueue(ctx context.Context, workspaceID uuid.UUID, jobType domain.JobType, entityID uuid.UUID) (*domain.SyncJob, error) {
	if workspaceID == uuid.Nil {
		return nil, fmt.Errorf("workspace ID is required")
	}
	if entityID == uuid.Nil {
		return nil, fmt.Errorf("entity ID is required")
	}
	if _, err := domain.ParseJobType(string(jobType)); err != nil {
		return nil, err
	}

	job, err := s.jobs.InsertPending(ctx, workspaceID, jobType, entityID)
	if err != nil {
		s.log.Error("Failed to enqueue sync job",
			"workspaceID", workspaceID,
			"jobType", jobType,
			"entityID", entityID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to enqueue sync job: %w", err)
	}

	s.log.Info("Sync job enqueued",
		"jobID", job.ID,
		"jobType", jobType,
		"entityID", entityID,
	)

	return job, nil
}

// GetJob はジョブ1件を取得します
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.SyncJob, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("job ID is required")
	}

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}

	return job, nil
}

// ListJobs はステータス絞り込みとカーソルページネーション付きの一覧を返します
func (s *JobService) ListJobs(ctx context.Context, workspaceID uuid.UUID, filter domain.JobFilter) (*domain.JobPage, error) {
	if workspaceID == uuid.Nil {
		return nil, fmt.Errorf("workspace ID is required")
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Status != nil {
		if _, err := domain.ParseJobStatus(string(*filter.Status)); err != nil {
			return nil, err
		}
	}

	page, err := s.jobs.List(ctx, workspaceID, filter)
	if err != nil {
		s.log.Error("Failed to list sync jobs",
			"workspaceID", workspaceID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}

	return page, nil
}

// RetryJob はFAILEDまたはPENDINGのジョブを即時実行可能な状態に戻します。
// attempts はリセットされないため、最大試行回数の保護は手動介入をまたいで有効です。
func (s *JobService) RetryJob(ctx context.Context, jobID uuid.UUID) error {
	if jobID == uuid.Nil {
		return fmt.Errorf("job ID is required")
	}

	if err := s.jobs.ResetForRetry(ctx, jobID); err != nil {
		s.log.Error("Failed to retry sync job",
			"jobID", jobID,
			"error", err,
		)
		return fmt.Errorf("failed to retry sync job: %w", err)
	}

	s.log.Info("Sync job reset for retry", "jobID", jobID)

	return nil
}
