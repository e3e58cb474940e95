package pg

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	// Setup
	original := listCursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}

	// Execute
	encoded := encodeCursor(original)
	decoded, err := decodeCursor(encoded)

	// Assert
	require.NoError(t, err)
	assert.True(t, original.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, original.ID, decoded.ID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "base64として不正", input: "%%%"},
		{name: "区切り文字がない", input: "bm9zZXBhcmF0b3I"},
		{name: "タイムスタンプが不正", input: "bm90LWEtdGltZXxub3QtYS11dWlk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCursor(tt.input)
			assert.Error(t, err)
		})
	}
}
