package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fmops/sheetsync/internal/module/workorder/domain"
)

const (
	// DefaultSampleSize は照合サンプリングのデフォルト件数
	DefaultSampleSize = 50
	// maxComparedPairs はフィールド比較を行うペア数の上限
	maxComparedPairs = 20
	// maxDriftEntries はレポートに含める差異エントリ数の上限
	maxDriftEntries = 100
)

// Sampler は2ストア間のドリフト検出を行う読み取り専用の診断コンポーネントです。
// レガシーストアの読み取りコストはレート制限されるため、
// フルスキャンではなく直近N件のサンプリングに意図的に限定しています。
type Sampler struct {
	db         domain.Source
	legacy     domain.Source
	workspaces WorkspaceResolver
	fields     []domain.FieldComparator
	log        *slog.Logger
}

// NewSampler は新しいSamplerを作成します。
// fields が nil の場合はデフォルトの比較フィールドを使用します。
func NewSampler(db domain.Source, legacy domain.Source, workspaces WorkspaceResolver, fields []domain.FieldComparator, log *slog.Logger) *Sampler {
	if fields == nil {
		fields = domain.DefaultCompareFields()
	}
	return &Sampler{
		db:         db,
		legacy:     legacy,
		workspaces: workspaces,
		fields:     fields,
		log:        log,
	}
}

// CompareSample は両ストアから直近のレコードをサンプリングし、
// キー単位の差集合とフィールド単位のドリフトを報告します。
// ジョブストアには一切影響しません。
func (s *Sampler) CompareSample(ctx context.Context, workspaceID uuid.UUID, sampleSize int) (*domain.DriftReport, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	workspace, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	dbOrders, err := s.db.ListWorkOrders(ctx, workspace, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample canonical store: %w", err)
	}

	legacyOrders, err := s.legacy.ListWorkOrders(ctx, workspace, sampleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample legacy store: %w", err)
	}

	report := &domain.DriftReport{
		WorkspaceID: workspaceID,
		SampleSize:  sampleSize,
		OnlyInDB:    []domain.NaturalKey{},
		OnlyInLegacy: []domain.NaturalKey{},
		DriftCounts: make(map[string]int),
		Drifts:      []domain.DriftEntry{},
		GeneratedAt: time.Now(),
	}

	dbByKey := make(map[domain.NaturalKey]*domain.WorkOrder, len(dbOrders))
	for _, order := range dbOrders {
		dbByKey[order.NaturalKey()] = order
	}
	legacyByKey := make(map[domain.NaturalKey]*domain.WorkOrder, len(legacyOrders))
	for _, order := range legacyOrders {
		legacyByKey[order.NaturalKey()] = order
	}

	var matched []domain.NaturalKey
	for key := range dbByKey {
		if _, ok := legacyByKey[key]; ok {
			matched = append(matched, key)
		} else {
			report.OnlyInDB = append(report.OnlyInDB, key)
		}
	}
	for key := range legacyByKey {
		if _, ok := dbByKey[key]; !ok {
			report.OnlyInLegacy = append(report.OnlyInLegacy, key)
		}
	}

	sortKeys(report.OnlyInDB)
	sortKeys(report.OnlyInLegacy)
	sortKeys(matched)

	report.MatchedCount = len(matched)

	pairs := matched
	if len(pairs) > maxComparedPairs {
		pairs = pairs[:maxComparedPairs]
	}
	report.ComparedPairs = len(pairs)

	for _, key := range pairs {
		dbOrder := dbByKey[key]
		legacyOrder := legacyByKey[key]
		for _, field := range s.fields {
			dbValue := field.Extract(dbOrder)
			legacyValue := field.Extract(legacyOrder)
			if dbValue == legacyValue {
				continue
			}
			report.DriftCounts[field.Name]++
			if len(report.Drifts) < maxDriftEntries {
				report.Drifts = append(report.Drifts, domain.DriftEntry{
					Key:         key,
					Field:       field.Name,
					DBValue:     dbValue,
					LegacyValue: legacyValue,
				})
			}
		}
	}

	s.log.Info("Reconciliation sample compared",
		"workspaceID", workspaceID,
		"sampleSize", sampleSize,
		"onlyInDB", len(report.OnlyInDB),
		"onlyInLegacy", len(report.OnlyInLegacy),
		"matched", report.MatchedCount,
		"drifts", len(report.Drifts),
	)

	return report, nil
}

func sortKeys(keys []domain.NaturalKey) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
