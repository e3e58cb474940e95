package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJobType(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    JobType
		expectError bool
	}{
		{name: "作業指示書", input: "WORK_ORDER", expected: JobTypeWorkOrder},
		{name: "署名済みドキュメント", input: "SIGNED_DOCUMENT", expected: JobTypeSignedDocument},
		{name: "署名照合", input: "SIGNED_MATCH", expected: JobTypeSignedMatch},
		{name: "未知の種別", input: "DELETE_ORDER", expectError: true},
		{name: "小文字は不可", input: "work_order", expectError: true},
		{name: "空文字列", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobType, err := ParseJobType(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, jobType)
		})
	}
}

func TestParseJobStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PROCESSING", "DONE", "FAILED"} {
		status, err := ParseJobStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, JobStatus(valid), status)
	}

	_, err := ParseJobStatus("CANCELLED")
	assert.Error(t, err)
}
