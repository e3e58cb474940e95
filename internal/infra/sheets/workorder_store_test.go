package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/fmops/sheetsync/internal/module/sync/domain"
	workorderdomain "github.com/fmops/sheetsync/internal/module/workorder/domain"
	workordertesting "github.com/fmops/sheetsync/internal/module/workorder/testing"
	workspacedomain "github.com/fmops/sheetsync/internal/module/workspace/domain"
	workspacetesting "github.com/fmops/sheetsync/internal/module/workspace/testing"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *WorkOrderStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "test-token")
	require.NoError(t, err)
	return NewWorkOrderStore(client)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "token")
	assert.ErrorIs(t, err, ErrBaseURLNotSet)

	_, err = NewClient("http://localhost:9999", "")
	assert.ErrorIs(t, err, ErrTokenNotSet)
}

func TestUpsertWorkOrder(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	amount := 980.00
	scheduled := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	order := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-acme", "SCHEDULED")
	order.Amount = &amount
	order.ScheduledDate = &scheduled

	var gotPath, gotAuth string
	var gotRow Row
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRow))
		w.WriteHeader(http.StatusOK)
	})

	// Execute
	err := store.UpsertWorkOrder(context.Background(), workspace, order)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/v1/spreadsheets/sheet-123/work-orders/WO-1001", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "WO-1001", gotRow.OrderNumber)
	assert.Equal(t, "issuer-acme", gotRow.IssuerKey)
	assert.Equal(t, "SCHEDULED", gotRow.Status)
	assert.Equal(t, "2026-09-01", gotRow.ScheduledDate)
	require.NotNil(t, gotRow.Amount)
	assert.Equal(t, 980.00, *gotRow.Amount)
}

func TestUpsertWorkOrder_QuotaExceeded(t *testing.T) {
	// 429はクォータ分類可能なメッセージで返る
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	order := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-acme", "OPEN")

	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sheet write quota exhausted", http.StatusTooManyRequests)
	})

	// Execute
	err := store.UpsertWorkOrder(context.Background(), workspace, order)

	// Assert
	require.Error(t, err)
	assert.True(t, syncdomain.IsQuotaError(err.Error()))
}

func TestUpdateSignedFields(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	signedAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	order := workordertesting.TestWorkOrder(workspace.ID, "WO-1001", "issuer-acme", "SIGNED")
	order.SignedAt = &signedAt

	var gotFields SignedFields
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/spreadsheets/sheet-123/work-orders/WO-1001/signed", r.URL.Path)
		assert.Equal(t, "issuer-acme", r.URL.Query().Get("issuer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotFields))
		w.WriteHeader(http.StatusOK)
	})

	// Execute
	err := store.UpdateSignedFields(context.Background(), workspace, order)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "SIGNED", gotFields.Status)
	assert.Equal(t, "2026-08-20T10:30:00Z", gotFields.SignedAt)
}

func TestListWorkOrders(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/spreadsheets/sheet-123/work-orders", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]any{
			"items": []Row{
				{OrderNumber: "WO-1001", IssuerKey: "issuer-acme", Status: "OPEN", ScheduledDate: "2026-09-01"},
				{OrderNumber: "WO-1002", IssuerKey: "issuer-acme", Status: "SIGNED", SignedAt: "2026-08-20T10:30:00Z"},
			},
		})
	})

	// Execute
	orders, err := store.ListWorkOrders(context.Background(), workspace, 25)

	// Assert
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "WO-1001", orders[0].OrderNumber)
	assert.Equal(t, workspace.ID, orders[0].WorkspaceID)
	require.NotNil(t, orders[0].ScheduledDate)
	assert.Equal(t, "2026-09-01", orders[0].ScheduledDate.Format("2006-01-02"))
	require.NotNil(t, orders[1].SignedAt)
}

func TestGetWorkOrder_NotFound(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// Execute
	order, err := store.GetWorkOrder(context.Background(), workspace, workorderdomain.NaturalKey{
		OrderNumber: "WO-9999",
		IssuerKey:   "issuer-acme",
	})

	// Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, workorderdomain.ErrWorkOrderNotFound)
}

func TestListWorkOrders_InvalidRowData(t *testing.T) {
	// Setup
	workspace := workspacetesting.TestWorkspace(workspacedomain.ReadSourceDB, false)
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []Row{
				{OrderNumber: "WO-1001", IssuerKey: "issuer-acme", Status: "OPEN", ScheduledDate: "09/01/2026"},
			},
		})
	})

	// Execute
	orders, err := store.ListWorkOrders(context.Background(), workspace, 10)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, orders)
}
