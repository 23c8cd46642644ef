package fixtures

import (
	"testing"

	"aitool-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	s, err := LoadSeed()
	require.NoError(t, err)

	assert.NotEmpty(t, s.Tools)
	assert.NotEmpty(t, s.Prompts)
	assert.NotEmpty(t, s.Videos)
	assert.NotEmpty(t, s.Users)

	ids := map[string]bool{}
	for _, tool := range s.Tools {
		assert.NotEmpty(t, tool.ID)
		assert.False(t, ids[tool.ID], "重复的 id %s", tool.ID)
		ids[tool.ID] = true
	}

	var needs int
	for _, tool := range s.Tools {
		if tool.NeedsEnrichment() {
			needs++
		}
	}
	assert.Positive(t, needs, "种子数据里应有待补全的工具")

	var admins int
	for _, u := range s.Users {
		if u.IsAdmin() {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestLoadSeed_Independent(t *testing.T) {
	a, err := LoadSeed()
	require.NoError(t, err)
	a.Tools[0].Name = "changed"

	b, err := LoadSeed()
	require.NoError(t, err)
	assert.NotEqual(t, "changed", b.Tools[0].Name)
}

func TestParseSeed(t *testing.T) {
	s, err := ParseSeed([]byte("tools:\n  - id: x\n    name: X\n"))
	require.NoError(t, err)
	require.Len(t, s.Tools, 1)
	assert.Equal(t, "X", s.Tools[0].Name)

	_, err = ParseSeed([]byte("tools: [unterminated"))
	assert.Error(t, err)
}

func TestFallback(t *testing.T) {
	f, err := LoadFallback()
	require.NoError(t, err)

	for _, kind := range domain.ToolKinds {
		assert.NotEmpty(t, f.Tools(kind), kind)
	}
	assert.Empty(t, f.Tools(domain.ListTutorials))
	assert.NotEmpty(t, f.Videos())

	got := f.Tools(domain.ListTrending)
	got[0].Name = "mutated"
	assert.NotEqual(t, "mutated", f.Tools(domain.ListTrending)[0].Name)
}
