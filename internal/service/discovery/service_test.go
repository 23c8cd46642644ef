package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aitool-hub/internal/adapter/cache"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/fixtures"
	"aitool-hub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWebhook struct {
	mock.Mock
}

func (m *MockWebhook) Fetch(ctx context.Context, action string, params map[string]any) ([]json.RawMessage, error) {
	args := m.Called(ctx, action, params)
	raws, _ := args.Get(0).([]json.RawMessage)
	return raws, args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

var testFallback = fixtures.Fallback{
	Trending: []domain.Tool{
		{ID: "fb-1", Name: "Static One", Domain: "one.ai"},
		{ID: "fb-2", Name: "Static Two"},
	},
	Latest:    []domain.Tool{{ID: "fb-3", Name: "Static Latest"}},
	Tutorials: []domain.Video{{ID: "fb-v", Title: "Static Video", Source: domain.SourcePlatform}},
}

type harness struct {
	svc   *Service
	hook  *MockWebhook
	gen   *MockGenerator
	cache *cache.MemoryCache
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		hook: new(MockWebhook),
		gen:  new(MockGenerator),
		now:  time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
	h.cache = cache.NewMemoryCache(time.Hour)
	h.cache.SetClock(func() time.Time { return h.now })
	h.svc = NewService(h.cache, testFallback, logger.NewNop(), WithWebhook(h.hook), WithGenerator(h.gen))
	return h
}

func raws(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(items))
	for i, s := range items {
		out[i] = json.RawMessage(s)
	}
	return out
}

func TestFetchTools_WebhookWinsWithoutGenerativeCall(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_trending_tools", mock.Anything).
		Return(raws(`{"id":"w1","name":"Webhook Tool","domain":"hook.ai"}`), nil).Once()

	res, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)

	assert.Equal(t, domain.TierWebhook, res.Tier)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "https://hook.ai", res.Items[0].URL)
	assert.ErrorIs(t, res.Failed(domain.TierCache), ErrCacheMiss)
	h.gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
	h.hook.AssertExpectations(t)
}

func TestFetchTools_WebhookDateOnlyFields(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_trending_tools", mock.Anything).
		Return(raws(`{"id":"w1","name":"Hook Tool","lastVerified":"2024-05-20","publishedDate":"2024-05-01"}`), nil).Once()

	res, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)

	assert.Equal(t, domain.TierWebhook, res.Tier)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "2024-05-20", res.Items[0].LastVerified.String())
	assert.NoError(t, res.Failed(domain.TierWebhook))
	h.gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
}

func TestFetchTools_GenerativeDateOnlyFields(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_latest_tools", mock.Anything).Return(nil, errors.New("down")).Once()
	h.gen.On("GenerateJSON", mock.Anything, mock.Anything).
		Return(`[{"name":"Dated","publishedDate":"2025-01-02"},{"name":"Stamped","publishedDate":"2025-01-02T10:00:00Z"}]`, nil).Once()

	res, err := h.svc.FetchTools(context.Background(), domain.ListLatest)
	require.NoError(t, err)

	assert.Equal(t, domain.TierGenerative, res.Tier)
	assert.Len(t, res.Items, 2)
}

func TestFetchTools_GenerativeFallback(t *testing.T) {
	h := newHarness(t)
	hookErr := errors.New("webhook status 502")
	h.hook.On("Fetch", mock.Anything, "get_latest_tools", mock.Anything).Return(nil, hookErr).Once()
	h.gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(p string) bool {
		return assert.Contains(t, p, "STRICT JSON ARRAY")
	})).Return(`[{"name":"Gen Tool","domain":"gen.ai"},{"name":""}]`, nil).Once()

	res, err := h.svc.FetchTools(context.Background(), domain.ListLatest)
	require.NoError(t, err)

	assert.Equal(t, domain.TierGenerative, res.Tier)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "ai-gen-tool", res.Items[0].ID)
	assert.ErrorIs(t, res.Failed(domain.TierWebhook), hookErr, "每一层的失败都可观测")
	assert.Equal(t, 1, h.cache.Len())
}

func TestFetchTools_StaticFallbackExactly(t *testing.T) {
	tests := []struct {
		name    string
		hookRet []json.RawMessage
		hookErr error
		genRet  string
		genErr  error
	}{
		{name: "两层都报错", hookErr: errors.New("down"), genErr: errors.New("quota")},
		{name: "两层都为空", hookRet: raws(), genRet: `[]`},
		{name: "生成结果无法解析", hookRet: raws(`"not an object"`), genRet: `{"oops": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.hook.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(tt.hookRet, tt.hookErr)
			h.gen.On("GenerateJSON", mock.Anything, mock.Anything).Return(tt.genRet, tt.genErr)

			res, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
			require.NoError(t, err, "回退链从不向上返回错误")

			assert.Equal(t, domain.TierStatic, res.Tier)
			assert.Equal(t, testFallback.Trending, res.Items)
			assert.Error(t, res.Failed(domain.TierWebhook))
			assert.Error(t, res.Failed(domain.TierGenerative))
			assert.Equal(t, 0, h.cache.Len(), "静态列表不写缓存")
		})
	}
}

func TestFetchTools_CacheTTL(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
		Return(raws(`{"id":"w1","name":"Webhook Tool"}`, `{"id":"w2","name":"Other","features":["a"]}`), nil)

	first, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)
	require.Equal(t, domain.TierWebhook, first.Tier)

	h.now = h.now.Add(59 * time.Minute)
	second, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)
	assert.Equal(t, domain.TierCache, second.Tier)
	assert.Equal(t, first.Items, second.Items)
	h.hook.AssertNumberOfCalls(t, "Fetch", 1)

	h.now = h.now.Add(time.Minute)
	third, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)
	assert.Equal(t, domain.TierWebhook, third.Tier, "过期后重新请求")
	h.hook.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestFetchTools_KindsUseSeparateKeys(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_trending_tools", mock.Anything).Return(raws(`{"name":"T"}`), nil)
	h.hook.On("Fetch", mock.Anything, "get_latest_tools", mock.Anything).Return(raws(`{"name":"L"}`), nil)

	_, err := h.svc.FetchTools(context.Background(), domain.ListTrending)
	require.NoError(t, err)
	res, err := h.svc.FetchTools(context.Background(), domain.ListLatest)
	require.NoError(t, err)

	assert.Equal(t, domain.TierWebhook, res.Tier)
	assert.Equal(t, "L", res.Items[0].Name)
}

func TestFetchTools_CancelledContextDiscardsLateResult(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	h.hook.On("Fetch", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(raws(`{"name":"Late"}`), nil)

	res, err := h.svc.FetchTools(ctx, domain.ListTrending)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, h.cache.Len(), "迟到的结果不写缓存")
	h.gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything)
}

func TestFetchTools_Unconfigured(t *testing.T) {
	svc := NewService(cache.NewMemoryCache(time.Hour), testFallback, logger.NewNop())

	res, err := svc.FetchTools(context.Background(), domain.ListLatest)
	require.NoError(t, err)
	assert.Equal(t, domain.TierStatic, res.Tier)
	assert.ErrorIs(t, res.Failed(domain.TierWebhook), ErrNotConfigured)
	assert.ErrorIs(t, res.Failed(domain.TierGenerative), ErrNotConfigured)

	_, err = svc.FetchTools(context.Background(), domain.ListTutorials)
	assert.Error(t, err)
}

func TestFetchVideos(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_tutorial_videos", mock.Anything).Return(nil, errors.New("down"))
	h.gen.On("GenerateJSON", mock.Anything, mock.Anything).
		Return(`[{"title":"Intro to agents","searchQuery":"ai agents intro","platformId":"too-short"}]`, nil)

	res, err := h.svc.FetchVideos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TierGenerative, res.Tier)
	require.Len(t, res.Items, 1)

	v := res.Items[0]
	assert.Equal(t, domain.SourcePlatform, v.Source)
	assert.Empty(t, v.PlatformID, "非法 ID 清空，播放时再解析")
	assert.True(t, v.NeedsResolution())
}

func TestRefreshAll(t *testing.T) {
	h := newHarness(t)
	h.hook.On("Fetch", mock.Anything, "get_trending_tools", mock.Anything).Return(raws(`{"name":"T"}`), nil)
	h.hook.On("Fetch", mock.Anything, "get_latest_tools", mock.Anything).Return(nil, errors.New("down"))
	h.hook.On("Fetch", mock.Anything, "get_tutorial_videos", mock.Anything).Return(raws(`{"title":"V"}`), nil)
	h.gen.On("GenerateJSON", mock.Anything, mock.Anything).Return("", errors.New("quota"))

	out, err := h.svc.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TierWebhook, out.Tools[domain.ListTrending].Tier)
	assert.Equal(t, domain.TierStatic, out.Tools[domain.ListLatest].Tier, "各列表独立回退")
	assert.Equal(t, domain.TierWebhook, out.Videos.Tier)
}

func TestRefreshAll_Cancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.hook.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	_, err := h.svc.RefreshAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratedID(t *testing.T) {
	assert.Equal(t, "ai-luma-dream-machine", GeneratedID("Luma  Dream Machine!"))
	assert.Equal(t, "ai-gpt-4o", GeneratedID("GPT-4o"))
	assert.Regexp(t, `^ai-[0-9a-f-]{36}$`, GeneratedID("!!!"))
}

func TestNormalizeTools_DedupesByID(t *testing.T) {
	out := NormalizeTools([]domain.Tool{{Name: "Same"}, {Name: "same"}, {ID: "x", Name: " Padded "}})
	require.Len(t, out, 2)
	assert.Equal(t, "Padded", out[1].Name)
}
