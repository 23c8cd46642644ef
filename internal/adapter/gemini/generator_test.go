package gemini

import (
	"context"
	"testing"

	"aitool-hub/internal/common"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "plain object",
			input:    `{"description":"X","features":["A","B"]}`,
			expected: `{"description":"X","features":["A","B"]}`,
		},
		{
			name:     "fenced array",
			input:    "```json\n[{\"name\":\"Cursor\"}]\n```",
			expected: `[{"name":"Cursor"}]`,
		},
		{
			name: "object with extra text",
			input: `Some introduction text
			{"pricingModel": "Paid"}
			Some trailing text`,
			expected: `{"pricingModel": "Paid"}`,
		},
		{
			name:     "array containing objects keeps outer brackets",
			input:    `Here you go: [{"a":{"b":1}},{"c":2}] enjoy`,
			expected: `[{"a":{"b":1}},{"c":2}]`,
		},
		{
			name:        "no JSON content",
			input:       `Just some text without JSON`,
			expectError: true,
		},
		{
			name:        "unterminated",
			input:       `[{"name":"x"`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	g, err := NewGenerator(context.Background(), "", "")
	assert.Nil(t, g)
	assert.Equal(t, common.ErrCodeNotConfigured, common.CodeOf(err))
}
