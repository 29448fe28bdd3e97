package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"LocalZeroPrefix", "08123456789", "628123456789"},
		{"AlreadyNormalized", "628123456789", "628123456789"},
		{"PlusPrefix", "+628123456789", "628123456789"},
		{"WithSeparators", "0812-3456-789", "628123456789"},
		{"WithSpaces", "0812 3456 789", "628123456789"},
		{"ForeignNumber", "14155550100", "14155550100"},
		{"Empty", "", ""},
		{"OnlyGarbage", "abc-+", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.input))
		})
	}
}
