package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/workspace/domain"
)

// DefaultCacheTTL はワークスペース設定キャッシュのデフォルト有効期間
const DefaultCacheTTL = 60 * time.Second

type cacheEntry struct {
	workspace *domain.Workspace
	expiresAt time.Time
}

// WorkspaceService はワークスペース設定のユースケースを提供します。
// 読み取りはTTL付きのプロセス内キャッシュを経由し、読み取りソースの
// 切り替え時にキャッシュを無効化します。
type WorkspaceService struct {
	repo domain.WorkspaceRepository
	ttl  time.Duration
	log  *slog.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID]cacheEntry
}

// NewWorkspaceService は新しいWorkspaceServiceを作成します
func NewWorkspaceService(repo domain.WorkspaceRepository, ttl time.Duration, log *slog.Logger) *WorkspaceService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &WorkspaceService{
		repo:  repo,
		ttl:   ttl,
		log:   log,
		cache: make(map[uuid.UUID]cacheEntry),
	}
}

// Get はワークスペースを取得します（キャッシュ経由）
func (s *WorkspaceService) Get(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("workspace ID is required")
	}

	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.workspace, nil
	}

	workspace, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get workspace",
			"workspaceID", id,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	s.mu.Lock()
	s.cache[id] = cacheEntry{workspace: workspace, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return workspace, nil
}

// SetReadSource は読み取り優先ソースを切り替えます。
// 更新後は即座にキャッシュを無効化し、以降のすべての読み取りに反映されます。
func (s *WorkspaceService) SetReadSource(ctx context.Context, id uuid.UUID, source domain.ReadSource) error {
	if id == uuid.Nil {
		return fmt.Errorf("workspace ID is required")
	}
	if _, err := domain.ParseReadSource(string(source)); err != nil {
		return err
	}

	if err := s.repo.UpdateReadSource(ctx, id, source); err != nil {
		s.log.Error("Failed to update read source",
			"workspaceID", id,
			"source", source,
			"error", err,
		)
		return fmt.Errorf("failed to update read source: %w", err)
	}

	s.Invalidate(id)

	s.log.Info("Read source updated",
		"workspaceID", id,
		"source", source,
	)

	return nil
}

// Invalidate は指定ワークスペースのキャッシュエントリを破棄します
func (s *WorkspaceService) Invalidate(id uuid.UUID) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}
