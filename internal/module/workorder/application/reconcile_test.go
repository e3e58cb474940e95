package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmops/sheetsync/internal/module/workorder/domain"
	workordertesting "github.com/fmops/sheetsync/internal/module/workorder/testing"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
	workspacetesting "github.com/fmops/sheetsync/internal/module/workspace/testing"
)

func sourceOf(orders ...*domain.WorkOrder) *workordertesting.MockSource {
	return &workordertesting.MockSource{
		ListWorkOrdersFunc: func(ctx context.Context, ws *workspacedomain.Workspace, limit int) ([]*domain.WorkOrder, error) {
			return orders, nil
		},
	}
}

func TestCompareSample_SetDifference(t *testing.T) {
	// DB={A,B,C}, レガシー={B,C,D} のとき
	// OnlyInDB={A}, OnlyInLegacy={D}, Matched={B,C}
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	orderA := workordertesting.TestWorkOrder(workspace.ID, "WO-A", "issuer-1", "OPEN")
	orderB := workordertesting.TestWorkOrder(workspace.ID, "WO-B", "issuer-1", "OPEN")
	orderC := workordertesting.TestWorkOrder(workspace.ID, "WO-C", "issuer-1", "OPEN")
	orderD := workordertesting.TestWorkOrder(workspace.ID, "WO-D", "issuer-1", "OPEN")
	legacyB := workordertesting.TestWorkOrder(workspace.ID, "WO-B", "issuer-1", "OPEN")
	legacyC := workordertesting.TestWorkOrder(workspace.ID, "WO-C", "issuer-1", "OPEN")

	sampler := NewSampler(
		sourceOf(orderA, orderB, orderC),
		sourceOf(legacyB, legacyC, orderD),
		fixedResolver(workspace),
		nil,
		testLogger(),
	)

	// Execute
	report, err := sampler.CompareSample(context.Background(), workspace.ID, 50)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []domain.NaturalKey{{OrderNumber: "WO-A", IssuerKey: "issuer-1"}}, report.OnlyInDB)
	assert.Equal(t, []domain.NaturalKey{{OrderNumber: "WO-D", IssuerKey: "issuer-1"}}, report.OnlyInLegacy)
	assert.Equal(t, 2, report.MatchedCount)
	assert.Equal(t, 2, report.ComparedPairs)
	assert.Empty(t, report.Drifts)
}

func TestCompareSample_FieldDrift(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	signedAt := time.Now()
	amountDB := 1200.50
	amountLegacy := 1200.00

	dbOrder := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-1", "SIGNED")
	dbOrder.SignedAt = &signedAt
	dbOrder.Amount = &amountDB

	legacyOrder := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-1", "OPEN")
	legacyOrder.Amount = &amountLegacy

	sampler := NewSampler(
		sourceOf(dbOrder),
		sourceOf(legacyOrder),
		fixedResolver(workspace),
		nil,
		testLogger(),
	)

	// Execute
	report, err := sampler.CompareSample(context.Background(), workspace.ID, 50)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.MatchedCount)
	assert.Equal(t, 1, report.DriftCounts["status"])
	assert.Equal(t, 1, report.DriftCounts["signed"])
	assert.Equal(t, 1, report.DriftCounts["amount"])
	assert.Equal(t, 0, report.DriftCounts["scheduledDate"])
	require.Len(t, report.Drifts, 3)

	byField := make(map[string]domain.DriftEntry)
	for _, drift := range report.Drifts {
		byField[drift.Field] = drift
	}
	assert.Equal(t, "SIGNED", byField["status"].DBValue)
	assert.Equal(t, "OPEN", byField["status"].LegacyValue)
	assert.Equal(t, "yes", byField["signed"].DBValue)
	assert.Equal(t, "no", byField["signed"].LegacyValue)
	assert.Equal(t, "1200.50", byField["amount"].DBValue)
	assert.Equal(t, "1200.00", byField["amount"].LegacyValue)
}

func TestCompareSample_ComparedPairsCapped(t *testing.T) {
	// 一致ペアが上限を超える場合、フィールド比較は先頭の一部に限定される
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	var dbOrders, legacyOrders []*domain.WorkOrder
	for i := 0; i < 30; i++ {
		number := "WO-" + string(rune('A'+i%26)) + string(rune('0'+i/26))
		dbOrders = append(dbOrders, workordertesting.TestWorkOrder(workspace.ID, number, "issuer-1", "OPEN"))
		legacyOrders = append(legacyOrders, workordertesting.TestWorkOrder(workspace.ID, number, "issuer-1", "OPEN"))
	}

	sampler := NewSampler(sourceOf(dbOrders...), sourceOf(legacyOrders...), fixedResolver(workspace), nil, testLogger())

	// Execute
	report, err := sampler.CompareSample(context.Background(), workspace.ID, 50)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 30, report.MatchedCount)
	assert.Equal(t, 20, report.ComparedPairs)
}

func TestCompareSample_SourceFailure(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	failing := &workordertesting.MockSource{
		ListWorkOrdersFunc: func(ctx context.Context, ws *workspacedomain.Workspace, limit int) ([]*domain.WorkOrder, error) {
			return nil, errors.New("bridge timeout")
		},
	}

	sampler := NewSampler(sourceOf(), failing, fixedResolver(workspace), nil, testLogger())

	// Execute
	report, err := sampler.CompareSample(context.Background(), workspace.ID, 50)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, report)
}
