package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fmops/sheetsync/internal/module/sync/domain"
)

// JobRepository は同期ジョブの永続化アダプターです。
// クレームは条件付きUPDATEの影響行数チェックのみで排他を実現しており、
// 別途のロックテーブルや外部ロックサービスは使いません。
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository は新しいジョブリポジトリを作成します
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// コンパイル時の型チェック
var _ domain.JobRepository = (*JobRepository)(nil)

const jobColumns = `id, workspace_id, job_type, entity_id, status, attempts, next_retry_at, error_code, error_message, completed_at, created_at, updated_at`

const insertPendingQuery = `
INSERT INTO sync_jobs (id, workspace_id, job_type, entity_id, status, attempts, created_at, updated_at)
VALUES ($1, $2, $3, $4, 'PENDING', 0, now(), now())
RETURNING ` + jobColumns

// InsertPending はPENDING状態のジョブを作成します
func (r *JobRepository) InsertPending(ctx context.Context, workspaceID uuid.UUID, jobType domain.JobType, entityID uuid.UUID) (*domain.SyncJob, error) {
	row := r.pool.QueryRow(ctx, insertPendingQuery,
		UUIDToPgtype(uuid.New()),
		UUIDToPgtype(workspaceID),
		string(jobType),
		UUIDToPgtype(entityID),
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sync job: %w", err)
	}
	return job, nil
}

const getJobQuery = `SELECT ` + jobColumns + ` FROM sync_jobs WHERE id = $1`

// Get はIDでジョブを取得します
func (r *JobRepository) Get(ctx context.Context, id uuid.UUID) (*domain.SyncJob, error) {
	row := r.pool.QueryRow(ctx, getJobQuery, UUIDToPgtype(id))
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}
	return job, nil
}

const selectEligibleQuery = `
SELECT ` + jobColumns + `
FROM sync_jobs
WHERE workspace_id = $1
  AND status = 'PENDING'
  AND (next_retry_at IS NULL OR next_retry_at <= now())
ORDER BY created_at, id
LIMIT $2`

// SelectEligible は実行可能なPENDINGジョブを作成順に取得します
func (r *JobRepository) SelectEligible(ctx context.Context, workspaceID uuid.UUID, limit int) ([]*domain.SyncJob, error) {
	rows, err := r.pool.Query(ctx, selectEligibleQuery, UUIDToPgtype(workspaceID), int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select eligible jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.SyncJob, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to select eligible jobs: %w", err)
	}

	return jobs, nil
}

const claimQuery = `
UPDATE sync_jobs
SET status = 'PROCESSING', updated_at = now()
WHERE id = $1 AND status = 'PENDING'`

// Claim はPENDINGの場合のみPROCESSINGへ遷移させます。
// 影響行数が0の場合は他ワーカーがクレーム済みであり、falseを返します。
func (r *JobRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, claimQuery, UUIDToPgtype(id))
	if err != nil {
		return false, fmt.Errorf("failed to claim sync job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const markDoneQuery = `
UPDATE sync_jobs
SET status = 'DONE', completed_at = now(), error_code = NULL, error_message = NULL, updated_at = now()
WHERE id = $1`

// MarkDone はジョブを終端のDONEに遷移させます
func (r *JobRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, markDoneQuery, UUIDToPgtype(id))
	if err != nil {
		return fmt.Errorf("failed to mark sync job done: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return nil
}

const markRetryQuery = `
UPDATE sync_jobs
SET status = 'PENDING', next_retry_at = $2, error_code = $3, error_message = $4, attempts = $5, updated_at = now()
WHERE id = $1`

// MarkRetry はジョブをリトライ待ちのPENDINGに戻します
func (r *JobRepository) MarkRetry(ctx context.Context, id uuid.UUID, nextRetryAt time.Time, errorCode, errorMessage string, attempts int) error {
	tag, err := r.pool.Exec(ctx, markRetryQuery,
		UUIDToPgtype(id),
		TimeToPgtype(nextRetryAt),
		errorCode,
		errorMessage,
		int32(attempts),
	)
	if err != nil {
		return fmt.Errorf("failed to mark sync job for retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return nil
}

const markFailedQuery = `
UPDATE sync_jobs
SET status = 'FAILED', next_retry_at = NULL, error_code = $2, error_message = $3, attempts = $4, updated_at = now()
WHERE id = $1`

// MarkFailed はジョブを終端のFAILEDに遷移させます
func (r *JobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string, attempts int) error {
	tag, err := r.pool.Exec(ctx, markFailedQuery,
		UUIDToPgtype(id),
		errorCode,
		errorMessage,
		int32(attempts),
	)
	if err != nil {
		return fmt.Errorf("failed to mark sync job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return nil
}

const resetForRetryQuery = `
UPDATE sync_jobs
SET status = 'PENDING', next_retry_at = NULL, updated_at = now()
WHERE id = $1 AND status IN ('PENDING', 'FAILED')`

// ResetForRetry はFAILEDまたはPENDINGのジョブを即時実行可能に戻します。
// attempts は変更しません。
func (r *JobRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, resetForRetryQuery, UUIDToPgtype(id))
	if err != nil {
		return fmt.Errorf("failed to reset sync job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// 存在しないか、PROCESSING/DONEでリトライ対象外
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: %s", domain.ErrJobNotRetryable, id)
	}
	return nil
}

const countPendingQuery = `SELECT count(*) FROM sync_jobs WHERE workspace_id = $1 AND status = 'PENDING'`

// CountPending はワークスペースのPENDINGジョブ総数を返します
func (r *JobRepository) CountPending(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countPendingQuery, UUIDToPgtype(workspaceID)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return int(count), nil
}

// List はステータス絞り込みとキーセットカーソル付きの一覧を新しい順に返します。
// 表示用の指示書番号は正準ストアからの読み取り時デコレーションとして結合します。
func (r *JobRepository) List(ctx context.Context, workspaceID uuid.UUID, filter domain.JobFilter) (*domain.JobPage, error) {
	query := `
SELECT j.id, j.workspace_id, j.job_type, j.entity_id, j.status, j.attempts, j.next_retry_at,
       j.error_code, j.error_message, j.completed_at, j.created_at, j.updated_at,
       w.order_number
FROM sync_jobs j
LEFT JOIN work_orders w ON w.id = j.entity_id
WHERE j.workspace_id = $1`
	args := []any{UUIDToPgtype(workspaceID)}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND j.status = $%d", len(args))
	}

	if filter.Cursor != "" {
		cursor, err := decodeCursor(filter.Cursor)
		if err != nil {
			return nil, err
		}
		args = append(args, TimeToPgtype(cursor.CreatedAt), UUIDToPgtype(cursor.ID))
		query += fmt.Sprintf(" AND (j.created_at, j.id) < ($%d, $%d)", len(args)-1, len(args))
	}

	// hasMore 判定のため1件多く取得する
	args = append(args, int32(filter.Limit+1))
	query += fmt.Sprintf(" ORDER BY j.created_at DESC, j.id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.JobListItem, 0, filter.Limit)
	for rows.Next() {
		item, err := scanJobListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}

	page := &domain.JobPage{Items: items}
	if len(items) > filter.Limit {
		page.Items = items[:filter.Limit]
		page.HasMore = true
		last := page.Items[len(page.Items)-1]
		page.NextCursor = encodeCursor(listCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return page, nil
}

func scanJob(row pgx.Row) (*domain.SyncJob, error) {
	var (
		id           pgtype.UUID
		workspaceID  pgtype.UUID
		jobType      string
		entityID     pgtype.UUID
		status       string
		attempts     int32
		nextRetryAt  pgtype.Timestamp
		errorCode    pgtype.Text
		errorMessage pgtype.Text
		completedAt  pgtype.Timestamp
		createdAt    pgtype.Timestamp
		updatedAt    pgtype.Timestamp
	)

	err := row.Scan(
		&id,
		&workspaceID,
		&jobType,
		&entityID,
		&status,
		&attempts,
		&nextRetryAt,
		&errorCode,
		&errorMessage,
		&completedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &domain.SyncJob{
		ID:           PgtypeToUUID(id),
		WorkspaceID:  PgtypeToUUID(workspaceID),
		JobType:      domain.JobType(jobType),
		EntityID:     PgtypeToUUID(entityID),
		Status:       domain.JobStatus(status),
		Attempts:     int(attempts),
		NextRetryAt:  PgtypeToTimePtr(nextRetryAt),
		ErrorCode:    PgtextToStringPtr(errorCode),
		ErrorMessage: PgtextToStringPtr(errorMessage),
		CompletedAt:  PgtypeToTimePtr(completedAt),
		CreatedAt:    PgtypeToTime(createdAt),
		UpdatedAt:    PgtypeToTime(updatedAt),
	}, nil
}

func scanJobListItem(row pgx.Row) (*domain.JobListItem, error) {
	var (
		id           pgtype.UUID
		workspaceID  pgtype.UUID
		jobType      string
		entityID     pgtype.UUID
		status       string
		attempts     int32
		nextRetryAt  pgtype.Timestamp
		errorCode    pgtype.Text
		errorMessage pgtype.Text
		completedAt  pgtype.Timestamp
		createdAt    pgtype.Timestamp
		updatedAt    pgtype.Timestamp
		orderNumber  pgtype.Text
	)

	err := row.Scan(
		&id,
		&workspaceID,
		&jobType,
		&entityID,
		&status,
		&attempts,
		&nextRetryAt,
		&errorCode,
		&errorMessage,
		&completedAt,
		&createdAt,
		&updatedAt,
		&orderNumber,
	)
	if err != nil {
		return nil, err
	}

	return &domain.JobListItem{
		SyncJob: domain.SyncJob{
			ID:           PgtypeToUUID(id),
			WorkspaceID:  PgtypeToUUID(workspaceID),
			JobType:      domain.JobType(jobType),
			EntityID:     PgtypeToUUID(entityID),
			Status:       domain.JobStatus(status),
			Attempts:     int(attempts),
			NextRetryAt:  PgtypeToTimePtr(nextRetryAt),
			ErrorCode:    PgtextToStringPtr(errorCode),
			ErrorMessage: PgtextToStringPtr(errorMessage),
			CompletedAt:  PgtypeToTimePtr(completedAt),
			CreatedAt:    PgtypeToTime(createdAt),
			UpdatedAt:    PgtypeToTime(updatedAt),
		},
		OrderNumber: PgtextToStringPtr(orderNumber),
	}, nil
}
