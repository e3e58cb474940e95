package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DriftEntry は照合済みペア間のフィールド差異を表します
type DriftEntry struct {
	Key         NaturalKey `json:"key"`
	Field       string     `json:"field"`
	DBValue     string     `json:"dbValue"`
	LegacyValue string     `json:"legacyValue"`
}

// DriftReport は2ストア間のサンプリング照合結果です
type DriftReport struct {
	WorkspaceID uuid.UUID `json:"workspaceID"`
	SampleSize  int       `json:"sampleSize"`
	// OnlyInDB は正準ストアにのみ存在するキー
	OnlyInDB []NaturalKey `json:"onlyInDB"`
	// OnlyInLegacy はレガシーストアにのみ存在するキー
	OnlyInLegacy []NaturalKey `json:"onlyInLegacy"`
	// MatchedCount は両ストアに存在したキー数
	MatchedCount int `json:"matchedCount"`
	// ComparedPairs はフィールド比較を行ったペア数（上限あり）
	ComparedPairs int `json:"comparedPairs"`
	// DriftCounts はフィールド名ごとの差異件数
	DriftCounts map[string]int `json:"driftCounts"`
	// Drifts は個別の差異エントリ（表示用、上限あり）
	Drifts      []DriftEntry `json:"drifts"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// FieldComparator は照合対象フィールドの抽出方法を定義します。
// 比較フィールドは意図的に限定されたサブセットであり、設定として扱います。
type FieldComparator struct {
	Name    string
	Extract func(*WorkOrder) string
}

// DefaultCompareFields は照合で比較するフィールドの既定リストです
// （ステータス、署名タイムスタンプの有無、金額、予定日）。
func DefaultCompareFields() []FieldComparator {
	return []FieldComparator{
		{
			Name: "status",
			Extract: func(w *WorkOrder) string {
				return w.Status
			},
		},
		{
			Name: "signed",
			Extract: func(w *WorkOrder) string {
				if w.SignedAt != nil {
					return "yes"
				}
				return "no"
			},
		},
		{
			Name: "amount",
			Extract: func(w *WorkOrder) string {
				if w.Amount == nil {
					return ""
				}
				return strconv.FormatFloat(*w.Amount, 'f', 2, 64)
			},
		},
		{
			Name: "scheduledDate",
			Extract: func(w *WorkOrder) string {
				if w.ScheduledDate == nil {
					return ""
				}
				return w.ScheduledDate.Format("2006-01-02")
			},
		},
	}
}
