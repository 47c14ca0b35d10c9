package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status string
		want   Outcome
	}{
		{"PAID", OutcomeSuccess},
		{"SUCCESS", OutcomeSuccess},
		{"paid", OutcomeSuccess},
		{"success", OutcomeSuccess},
		{"confirming", OutcomeSuccess},
		{"Confirming", OutcomeSuccess},
		{" paid ", OutcomeSuccess},
		{"failed", OutcomeFailed},
		{"FAILED", OutcomeFailed},
		{"cancelled", OutcomeCancelled},
		{"canceled", OutcomeCancelled},
		{"waiting", OutcomePending},
		{"ACTIVE", OutcomePending},
		{"", OutcomePending},
		{"something-new", OutcomePending},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.status))
		})
	}
}
