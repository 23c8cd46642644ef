package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTool_NeedsEnrichment(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
		want bool
	}{
		{"missing features and pricing", Tool{Name: "A"}, true},
		{"missing pricing", Tool{Name: "A", Features: []string{"x"}}, true},
		{"missing features", Tool{Name: "A", PricingModel: "Free"}, true},
		{"legacy price list counts as pricing", Tool{Name: "A", Features: []string{"x"}, Pricing: []string{"$10/mo"}}, false},
		{"plans count as pricing", Tool{Name: "A", Features: []string{"x"}, Plans: []Plan{{Name: "Pro"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tool.NeedsEnrichment())
		})
	}
}

func TestTool_ApplyFillsGapsOnly(t *testing.T) {
	tool := Tool{ID: "t1", Name: "Cursor", Description: "AI editor"}

	changed := tool.Apply(ToolPatch{
		Description:  "X",
		Features:     []string{"A", "B"},
		PricingModel: "Paid",
		Plans:        []Plan{},
	})

	assert.True(t, changed)
	assert.Equal(t, "t1", tool.ID)
	assert.Equal(t, "Cursor", tool.Name)
	assert.Equal(t, "AI editor", tool.Description, "existing description must survive")
	assert.Equal(t, []string{"A", "B"}, tool.Features)
	assert.Equal(t, "Paid", tool.PricingModel)
	assert.Empty(t, tool.Plans)
}

func TestTool_ApplyNeverOverwrites(t *testing.T) {
	tool := Tool{
		Name:         "Full",
		Description:  "d",
		Features:     []string{"f"},
		PricingModel: "Free",
		Plans:        []Plan{{Name: "Free", Price: "$0"}},
	}
	before := tool

	changed := tool.Apply(ToolPatch{Description: "new", Features: []string{"g"}, PricingModel: "Paid", Plans: []Plan{{Name: "Pro"}}})

	assert.False(t, changed)
	assert.Equal(t, before, tool)
}

func TestToolPatch_IsEmpty(t *testing.T) {
	assert.True(t, ToolPatch{}.IsEmpty())
	assert.True(t, ToolPatch{Plans: []Plan{}}.IsEmpty())
	assert.False(t, ToolPatch{PricingModel: "Paid"}.IsEmpty())
}

func TestTool_Normalize(t *testing.T) {
	tool := Tool{Name: "  Perplexity ", Domain: "perplexity.ai"}
	tool.Normalize()
	assert.Equal(t, "Perplexity", tool.Name)
	assert.Equal(t, "https://perplexity.ai", tool.URL)

	other := Tool{Name: "Claude", URL: "https://www.claude.ai/chat"}
	other.Normalize()
	assert.Equal(t, "claude.ai", other.Domain)
}

func TestURLFromDomain(t *testing.T) {
	assert.Equal(t, "", URLFromDomain("  "))
	assert.Equal(t, "https://a.io", URLFromDomain("a.io/"))
	assert.Equal(t, "http://b.io", URLFromDomain("http://b.io"))
}
