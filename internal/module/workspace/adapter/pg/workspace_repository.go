package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// WorkspaceRepository はワークスペース集約の永続化アダプターです
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository は新しいワークスペースリポジトリを作成します
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// コンパイル時の型チェック
var _ domain.WorkspaceRepository = (*WorkspaceRepository)(nil)

const getWorkspaceQuery = `
SELECT id, name, spreadsheet_id, drive_folder_id, primary_read_source, strict_read_source, created_at, updated_at
FROM workspaces
WHERE id = $1
`

// GetByID はIDでワークスペースを取得します
func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var (
		wsID          pgtype.UUID
		name          string
		spreadsheetID string
		driveFolderID pgtype.Text
		readSource    string
		strict        bool
		createdAt     pgtype.Timestamp
		updatedAt     pgtype.Timestamp
	)

	err := r.pool.QueryRow(ctx, getWorkspaceQuery, pgtype.UUID{Bytes: id, Valid: true}).Scan(
		&wsID,
		&name,
		&spreadsheetID,
		&driveFolderID,
		&readSource,
		&strict,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	workspace := &domain.Workspace{
		ID:                wsID.Bytes,
		Name:              name,
		SpreadsheetID:     spreadsheetID,
		PrimaryReadSource: domain.ReadSource(readSource),
		StrictReadSource:  strict,
		CreatedAt:         createdAt.Time,
		UpdatedAt:         updatedAt.Time,
	}
	if driveFolderID.Valid {
		workspace.DriveFolderID = driveFolderID.String
	}

	return workspace, nil
}

const updateReadSourceQuery = `
UPDATE workspaces
SET primary_read_source = $2, updated_at = now()
WHERE id = $1
`

// UpdateReadSource は読み取り優先ソースを更新します
func (r *WorkspaceRepository) UpdateReadSource(ctx context.Context, id uuid.UUID, source domain.ReadSource) error {
	tag, err := r.pool.Exec(ctx, updateReadSourceQuery, pgtype.UUID{Bytes: id, Valid: true}, string(source))
	if err != nil {
		return fmt.Errorf("failed to update read source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}
	return nil
}
