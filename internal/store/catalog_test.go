package store

import (
	"context"
	"testing"

	"aitool-hub/internal/adapter/repository"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/fixtures"
	"aitool-hub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() fixtures.Seed {
	return fixtures.Seed{
		Tools: []domain.Tool{
			{ID: "1", Name: "Seed One"},
			{ID: "2", Name: "Seed Two"},
		},
		Prompts: []domain.Prompt{{ID: "p1", Title: "Prompt"}},
		Videos:  []domain.Video{{ID: "v1", Title: "Video"}},
		Users:   []domain.User{{ID: "u1", Name: "Admin", Role: domain.RoleAdmin}},
	}
}

func TestMerge(t *testing.T) {
	seed := []domain.Tool{{ID: "1", Name: "seed-1"}, {ID: "2", Name: "seed-2"}}
	persisted := []domain.Tool{{ID: "3", Name: "new"}, {ID: "2", Name: "edited"}}

	got := Merge(seed, persisted)
	require.Len(t, got, 3)
	assert.Equal(t, "seed-1", got[0].Name)
	assert.Equal(t, "edited", got[1].Name, "同 id 以镜像为准")
	assert.Equal(t, "new", got[2].Name, "镜像独有的追加在后")

	assert.Equal(t, seed, Merge(seed, nil))
}

func TestCatalog_LoadMergesPersisted(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	require.NoError(t, m.Save(ctx, KeyTools, []domain.Tool{{ID: "2", Name: "Edited"}, {ID: "7", Name: "Imported"}}))
	require.NoError(t, m.Save(ctx, KeyMaintenance, true))
	require.NoError(t, m.Save(ctx, "saved:tools", []string{"1"}))

	c := NewCatalog(m, logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))

	tools := c.Tools.List()
	require.Len(t, tools, 3)
	assert.Equal(t, "Edited", tools[1].Name)
	assert.Equal(t, "Imported", tools[2].Name)
	assert.True(t, c.Maintenance())

	saved, err := c.Saved(KeyTools)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, saved)
	assert.Equal(t, 1, c.Prompts.Len())
}

func TestCatalog_LoadIgnoresOldShapes(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	require.NoError(t, m.Save(ctx, KeyTools, map[string]int{"legacy": 1}))

	c := NewCatalog(m, logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))
	assert.Equal(t, 2, c.Tools.Len(), "无法解析的旧数据回退到种子数据")
}

func TestCatalog_LoadIgnoresUndecodableFields(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	require.NoError(t, m.Save(ctx, KeyTools, []map[string]any{{"id": "x", "name": "X", "lastVerified": "last tuesday"}}))
	require.NoError(t, m.Save(ctx, KeyPrompts, []domain.Prompt{{ID: "p9", Title: "Kept"}}))

	c := NewCatalog(m, logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))
	assert.Equal(t, 2, c.Tools.Len(), "字段无法解析时整表回退到种子数据")
	assert.Equal(t, 2, c.Prompts.Len(), "其它键不受影响")
}

func TestCatalog_LoadDateOnlyFields(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	require.NoError(t, m.Save(ctx, KeyTools, []map[string]any{{"id": "x", "name": "X", "lastVerified": "2024-05-20"}}))

	c := NewCatalog(m, logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))
	require.Equal(t, 3, c.Tools.Len())
	tool, ok := c.Tools.Get("x")
	require.True(t, ok)
	assert.Equal(t, "2024-05-20", tool.LastVerified.String())
}

func TestCatalog_ImportTools(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(repository.NewMemoryMirror(), logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))

	n := c.ImportTools(ctx, []domain.Tool{
		{ID: "1", Name: "dup"},
		{ID: "gh-1", Name: "New", Domain: "new.dev"},
	})
	assert.Equal(t, 1, n)

	got, ok := c.Tools.Get("gh-1")
	require.True(t, ok)
	assert.Equal(t, "https://new.dev", got.URL)
}

func TestCatalog_Saved(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	c := NewCatalog(m, logger.NewNop())

	require.NoError(t, c.AddSaved(ctx, KeyPrompts, "p1"))
	require.NoError(t, c.AddSaved(ctx, KeyPrompts, "p1"))
	require.NoError(t, c.AddSaved(ctx, KeyPrompts, "p2"))

	ids, err := c.Saved(KeyPrompts)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	raw, ok := m.Raw("saved:prompts")
	require.True(t, ok)
	assert.JSONEq(t, `["p1","p2"]`, string(raw))

	require.NoError(t, c.RemoveSaved(ctx, KeyPrompts, "p1"))
	ids, _ = c.Saved(KeyPrompts)
	assert.Equal(t, []string{"p2"}, ids)

	assert.ErrorIs(t, c.AddSaved(ctx, "users", "u1"), ErrUnknownEntity)
	_, err = c.Saved("nope")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestCatalog_Maintenance(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemoryMirror()
	c := NewCatalog(m, logger.NewNop())

	assert.False(t, c.Maintenance())
	c.SetMaintenance(ctx, true)
	assert.True(t, c.Maintenance())

	raw, ok := m.Raw(KeyMaintenance)
	require.True(t, ok)
	assert.Equal(t, "true", string(raw))
}

func TestCatalog_CountsAndExists(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog(repository.NewMemoryMirror(), logger.NewNop())
	require.NoError(t, c.Load(ctx, testSeed()))

	assert.Equal(t, map[string]int{KeyTools: 2, KeyPrompts: 1, KeyVideos: 1, KeyUsers: 1}, c.Counts())
	assert.True(t, c.Exists(KeyVideos, "v1"))
	assert.False(t, c.Exists(KeyVideos, "v9"))
}
