package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType はエクスポートジョブの種別を表します
type JobType string

const (
	// JobTypeWorkOrder は作業指示書全体のアップサート
	JobTypeWorkOrder JobType = "WORK_ORDER"
	// JobTypeSignedDocument は署名済みドキュメント。レガシーストアには
	// 独立したドキュメント実体が存在しないため、この層では何も書き込みません。
	JobTypeSignedDocument JobType = "SIGNED_DOCUMENT"
	// JobTypeSignedMatch はドキュメント照合時に変化するフィールドのみの部分更新
	JobTypeSignedMatch JobType = "SIGNED_MATCH"
)

// ParseJobType は文字列からJobTypeを解釈します
func ParseJobType(s string) (JobType, error) {
	switch JobType(s) {
	case JobTypeWorkOrder, JobTypeSignedDocument, JobTypeSignedMatch:
		return JobType(s), nil
	default:
		return "", fmt.Errorf("invalid job type: %q", s)
	}
}

// JobStatus はジョブの状態を表します。
// 遷移は PENDING → PROCESSING → {DONE | PENDING(リトライ) | FAILED} のみです。
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// ParseJobStatus は文字列からJobStatusを解釈します
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusDone, JobStatusFailed:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("invalid job status: %q", s)
	}
}

// エラーコード
const (
	// ErrorCodeQuotaExceeded はレガシーストアのレート制限によるリトライ
	ErrorCodeQuotaExceeded = "QUOTA_EXCEEDED"
	// ErrorCodeSyncFailed はレガシーストアへの書き込み失敗
	ErrorCodeSyncFailed = "SYNC_FAILED"
)

var (
	// ErrJobNotFound はジョブが存在しない場合のエラー
	ErrJobNotFound = errors.New("sync job not found")
	// ErrJobNotRetryable は手動リトライ対象外の状態（PROCESSING/DONE）のエラー
	ErrJobNotRetryable = errors.New("sync job is not in a retryable state")
)

// SyncJob は正準ストアからレガシーストアへの伝播作業1件を表します。
// 終端状態（DONE/FAILED）のまま削除されず、監査証跡として残ります。
type SyncJob struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspaceID"`
	JobType     JobType   `json:"jobType"`
	EntityID    uuid.UUID `json:"entityID"`
	Status      JobStatus `json:"status"`
	Attempts    int       `json:"attempts"`
	// NextRetryAt が nil の場合は即時実行可能
	NextRetryAt  *time.Time `json:"nextRetryAt,omitempty"`
	ErrorCode    *string    `json:"errorCode,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// JobListItem は一覧表示用にエンティティの表示フィールドを
// 読み取り時デコレーションとして付加したジョブ行です
type JobListItem struct {
	SyncJob
	// OrderNumber は対象作業指示書の表示用識別子（正準ストアから解決）
	OrderNumber *string `json:"orderNumber,omitempty"`
}

// JobFilter は一覧取得の絞り込み条件です
type JobFilter struct {
	Status *JobStatus
	Cursor string
	Limit  int
}

// JobPage はカーソルページネーションの1ページ分です
type JobPage struct {
	Items      []*JobListItem `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// ProcessSummary は1回のバッチ処理パスの結果サマリです
type ProcessSummary struct {
	// Processed はクレームに成功し実行したジョブ数
	Processed int `json:"processed"`
	// Succeeded は正常完了したジョブ数
	Succeeded int `json:"succeeded"`
	// Failed はクォータ以外の失敗数
	Failed int `json:"failed"`
	// FailedQuota はクォータ分類された失敗数（サーキットブレーカー発動）
	FailedQuota int `json:"failedQuota"`
	// RemainingPending はパス終了時点のPENDINGジョブ総数（ゲージ値）
	RemainingPending int `json:"remainingPending"`
}
