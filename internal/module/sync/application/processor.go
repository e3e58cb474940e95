package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
)

// DefaultBatchLimit は1パスで選択するジョブ数のデフォルト上限
const DefaultBatchLimit = 10

// Processor はエクスポートジョブのバッチ処理を行います。
// 1回の呼び出しは最大limit件の同期的なパスであり、常駐デーモンではありません。
// 条件付きクレームにより複数パスの同時実行が安全に許容されます。
type Processor struct {
	jobs        domain.JobRepository
	workspaces  domain.WorkspaceResolver
	executor    *Executor
	maxAttempts int
	log         *slog.Logger
}

// NewProcessor は新しいProcessorを作成します。
// maxAttempts が0以下の場合はデフォルト値を使用します。
func NewProcessor(jobs domain.JobRepository, workspaces domain.WorkspaceResolver, executor *Executor, maxAttempts int, log *slog.Logger) *Processor {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}
	return &Processor{
		jobs:        jobs,
		workspaces:  workspaces,
		executor:    executor,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// ProcessPending は実行可能なジョブを作成順に1件ずつ処理します。
// レガシーストアのレート制限はワークスペース全体で共有されるため、
// パス内の実行は意図的に逐次です。クォータ分類された失敗が1件でも
// 発生した時点で残りのバッチを即座に打ち切ります（サーキットブレーカー）。
//
// 個々のジョブの失敗はサマリとジョブ行に記録されるだけで、エラーとしては
// 伝播しません。エラーを返すのは選択クエリやワークスペース解決といった
// 環境レベルの失敗のみで、その場合ジョブ状態は一切変更されません。
func (p *Processor) ProcessPending(ctx context.Context, workspaceID uuid.UUID, limit int) (*domain.ProcessSummary, error) {
	if workspaceID == uuid.Nil {
		return nil, fmt.Errorf("workspace ID is required")
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	summary := &domain.ProcessSummary{}

	eligible, err := p.jobs.SelectEligible(ctx, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select eligible jobs: %w", err)
	}

	if len(eligible) == 0 {
		pending, err := p.jobs.CountPending(ctx, workspaceID)
		if err != nil {
			return nil, fmt.Errorf("failed to count pending jobs: %w", err)
		}
		summary.RemainingPending = pending
		return summary, nil
	}

	// ワークスペース解決（書き込み資格情報を含む）はジョブをクレームする前に
	// 行う。ここで失敗した場合はパス全体を中断し、ジョブ状態は変更しない。
	workspace, err := p.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	if workspace.SpreadsheetID == "" {
		return nil, fmt.Errorf("workspace %s has no spreadsheet configured", workspaceID)
	}

	for _, job := range eligible {
		claimed, err := p.jobs.Claim(ctx, job.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to claim job %s: %w", job.ID, err)
		}
		if !claimed {
			// 他のワーカーが先にクレーム済み。エラーではなくスキップ。
			p.log.Debug("Job already claimed by another worker, skipping",
				"jobID", job.ID,
			)
			continue
		}

		summary.Processed++

		execErr := p.executor.Execute(ctx, workspace, job)
		if execErr == nil {
			if err := p.jobs.MarkDone(ctx, job.ID); err != nil {
				return nil, fmt.Errorf("failed to mark job %s done: %w", job.ID, err)
			}
			summary.Succeeded++
			p.log.Info("Sync job completed",
				"jobID", job.ID,
				"jobType", job.JobType,
				"entityID", job.EntityID,
			)
			continue
		}

		message := execErr.Error()

		if domain.IsQuotaError(message) {
			// クォータ起因の失敗は試行回数を消費させず、計算済みの遅延付きで
			// PENDINGのまま残す。スロットリング解消後のパスで自動的に再試行される。
			summary.FailedQuota++
			delay := domain.DelayForAttempt(job.Attempts + 1)
			nextRetryAt := time.Now().Add(delay)
			if err := p.jobs.MarkRetry(ctx, job.ID, nextRetryAt, domain.ErrorCodeQuotaExceeded, message, job.Attempts); err != nil {
				return nil, fmt.Errorf("failed to mark job %s for retry: %w", job.ID, err)
			}
			p.log.Warn("Quota signal detected, halting batch pass",
				"jobID", job.ID,
				"nextRetryAt", nextRetryAt,
				"error", message,
			)
			break
		}

		summary.Failed++
		attempts := job.Attempts + 1
		if attempts >= p.maxAttempts {
			if err := p.jobs.MarkFailed(ctx, job.ID, domain.ErrorCodeSyncFailed, message, attempts); err != nil {
				return nil, fmt.Errorf("failed to mark job %s failed: %w", job.ID, err)
			}
			p.log.Error("Sync job failed terminally",
				"jobID", job.ID,
				"attempts", attempts,
				"error", message,
			)
			continue
		}

		delay := domain.DelayForAttempt(attempts)
		nextRetryAt := time.Now().Add(delay)
		if err := p.jobs.MarkRetry(ctx, job.ID, nextRetryAt, domain.ErrorCodeSyncFailed, message, attempts); err != nil {
			return nil, fmt.Errorf("failed to mark job %s for retry: %w", job.ID, err)
		}
		p.log.Warn("Sync job failed, scheduled for retry",
			"jobID", job.ID,
			"attempts", attempts,
			"nextRetryAt", nextRetryAt,
			"error", message,
		)
	}

	// クォータで打ち切った場合、走査されなかったジョブが残っているため
	// 件数はあらためて取得する
	pending, err := p.jobs.CountPending(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	summary.RemainingPending = pending

	return summary, nil
}
