package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNaturalKeyString(t *testing.T) {
	key := NaturalKey{OrderNumber: "WO-1001", IssuerKey: "issuer-acme"}
	assert.Equal(t, "WO-1001/issuer-acme", key.String())
}

func TestDefaultCompareFields(t *testing.T) {
	// Setup
	amount := 1234.5
	signedAt := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	scheduled := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	order := &WorkOrder{
		Status:        "SIGNED",
		Amount:        &amount,
		SignedAt:      &signedAt,
		ScheduledDate: &scheduled,
	}
	empty := &WorkOrder{Status: "OPEN"}

	extract := func(order *WorkOrder) map[string]string {
		values := make(map[string]string)
		for _, field := range DefaultCompareFields() {
			values[field.Name] = field.Extract(order)
		}
		return values
	}

	// Execute
	full := extract(order)
	bare := extract(empty)

	// Assert
	assert.Equal(t, "SIGNED", full["status"])
	assert.Equal(t, "yes", full["signed"])
	assert.Equal(t, "1234.50", full["amount"], "金額は小数2桁に正規化して比較する")
	assert.Equal(t, "2026-09-01", full["scheduledDate"])

	assert.Equal(t, "OPEN", bare["status"])
	assert.Equal(t, "no", bare["signed"])
	assert.Equal(t, "", bare["amount"])
	assert.Equal(t, "", bare["scheduledDate"])
}
