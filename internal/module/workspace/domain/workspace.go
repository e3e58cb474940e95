package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReadSource は読み取りの優先ソースを表します
type ReadSource string

const (
	// ReadSourceLegacy はレガシーストア（スプレッドシート）を優先する設定
	ReadSourceLegacy ReadSource = "LEGACY"
	// ReadSourceDB は正準ストア（データベース）を優先する設定
	ReadSourceDB ReadSource = "DB"
)

// ParseReadSource は文字列からReadSourceを解釈します
func ParseReadSource(s string) (ReadSource, error) {
	switch ReadSource(s) {
	case ReadSourceLegacy:
		return ReadSourceLegacy, nil
	case ReadSourceDB:
		return ReadSourceDB, nil
	default:
		return "", fmt.Errorf("invalid read source: %q (want LEGACY or DB)", s)
	}
}

// ErrWorkspaceNotFound はワークスペースが存在しない場合のエラー
var ErrWorkspaceNotFound = errors.New("workspace not found")

// Workspace はテナント境界を表します
type Workspace struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	SpreadsheetID     string     `json:"spreadsheetID"`
	DriveFolderID     string     `json:"driveFolderID,omitempty"`
	PrimaryReadSource ReadSource `json:"primaryReadSource"`
	// StrictReadSource が有効な場合、読み取りのフォールバックを行わない
	StrictReadSource bool      `json:"strictReadSource"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// WorkspaceReader はワークスペースの読み取り操作を定義します
type WorkspaceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Workspace, error)
}

// WorkspaceWriter はワークスペースの更新操作を定義します
type WorkspaceWriter interface {
	UpdateReadSource(ctx context.Context, id uuid.UUID, source ReadSource) error
}

// WorkspaceRepository は読み書き両方の操作をまとめたインターフェースです
type WorkspaceRepository interface {
	WorkspaceReader
	WorkspaceWriter
}
