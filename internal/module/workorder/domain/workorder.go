package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrder は作業指示書（正準レコード）を表します。
// レガシーストア側では自然キー（指示書番号＋発行元キー）で識別されるため、
// レガシー由来のレコードは ID がゼロ値になることがあります。
type WorkOrder struct {
	ID            uuid.UUID  `json:"id,omitempty"`
	WorkspaceID   uuid.UUID  `json:"workspaceID"`
	OrderNumber   string     `json:"orderNumber"`
	IssuerKey     string     `json:"issuerKey"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	SignedAt      *time.Time `json:"signedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NaturalKey は2ストア間で共通の複合キーを返します
func (w *WorkOrder) NaturalKey() NaturalKey {
	return NaturalKey{OrderNumber: w.OrderNumber, IssuerKey: w.IssuerKey}
}

// NaturalKey は指示書番号と発行元キーによる複合キーです。
// サロゲートIDはストアごとに異なるため、照合はこのキーで行います。
type NaturalKey struct {
	OrderNumber string `json:"orderNumber"`
	IssuerKey   string `json:"issuerKey"`
}

// String はキーの文字列表現を返します
func (k NaturalKey) String() string {
	return k.OrderNumber + "/" + k.IssuerKey
}
