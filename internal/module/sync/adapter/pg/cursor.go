package pg

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// listCursor はジョブ一覧のキーセットページネーション位置です。
// (created_at, id) の組で一意に順序付けます。呼び出し側には不透明な文字列として渡します。
type listCursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// encodeCursor はカーソルを不透明な文字列にエンコードします
func encodeCursor(c listCursor) string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor は不透明なカーソル文字列を復元します
func decodeCursor(s string) (listCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return listCursor{}, fmt.Errorf("invalid cursor: %w", err)
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return listCursor{}, fmt.Errorf("invalid cursor format")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return listCursor{}, fmt.Errorf("invalid cursor timestamp: %w", err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return listCursor{}, fmt.Errorf("invalid cursor id: %w", err)
	}

	return listCursor{CreatedAt: createdAt, ID: id}, nil
}
