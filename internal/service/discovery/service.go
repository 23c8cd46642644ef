// Package discovery 发现页列表的回退链：缓存 -> Webhook -> 生成式模型 -> 静态列表
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/fixtures"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrCacheMiss 缓存中没有有效条目
	ErrCacheMiss = errors.New("cache miss")
	// ErrNoData 该层没有产出可用的条目
	ErrNoData = errors.New("tier returned no usable items")
	// ErrNotConfigured 该层未配置 (没有 Webhook 地址或 API Key)
	ErrNotConfigured = errors.New("tier not configured")
)

// TierAttempt 某一层的失败原因。成功的那一层不记录。
type TierAttempt struct {
	Tier domain.Tier
	Err  error
}

// Result 一次列表请求的结果，Tier 是最终产出数据的那一层
type Result[T any] struct {
	Items    []T
	Tier     domain.Tier
	Attempts []TierAttempt
}

// Failed 某一层是否被尝试且失败
func (r Result[T]) Failed(tier domain.Tier) error {
	for _, a := range r.Attempts {
		if a.Tier == tier {
			return a.Err
		}
	}
	return nil
}

type Service struct {
	webhook   port.ListWebhook
	generator port.Generator
	cache     port.Cache
	fallback  fixtures.Fallback
	log       logger.Logger
	limit     int
}

type Option func(*Service)

// WithWebhook nil 表示跳过这一层
func WithWebhook(w port.ListWebhook) Option {
	return func(s *Service) { s.webhook = w }
}

// WithGenerator nil 表示跳过这一层
func WithGenerator(g port.Generator) Option {
	return func(s *Service) { s.generator = g }
}

// WithLimit Webhook 请求和生成式提示词中的条目数
func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

func NewService(cache port.Cache, fallback fixtures.Fallback, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		cache:    cache,
		fallback: fallback,
		log:      log,
		limit:    8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchTools 热门/最新工具列表
func (s *Service) FetchTools(ctx context.Context, kind domain.ListKind) (Result[domain.Tool], error) {
	if kind == domain.ListTutorials {
		return Result[domain.Tool]{}, common.NewError(common.ErrCodeInvalidInput, "tutorials is a video list")
	}
	return fetch(ctx, s, chain[domain.Tool]{
		kind:      kind,
		prompt:    toolPrompt(kind, s.limit),
		normalize: NormalizeTools,
		static:    s.fallback.Tools(kind),
	})
}

// FetchVideos 教程视频列表
func (s *Service) FetchVideos(ctx context.Context) (Result[domain.Video], error) {
	return fetch(ctx, s, chain[domain.Video]{
		kind:      domain.ListTutorials,
		prompt:    videoPrompt(s.limit),
		normalize: NormalizeVideos,
		static:    s.fallback.Videos(),
	})
}

// Refresh RefreshAll 的结果
type Refresh struct {
	Tools  map[domain.ListKind]Result[domain.Tool]
	Videos Result[domain.Video]
}

// RefreshAll 并发拉取所有列表，各列表互不影响。只有 ctx 结束才返回错误。
func (s *Service) RefreshAll(ctx context.Context) (Refresh, error) {
	out := Refresh{Tools: make(map[domain.ListKind]Result[domain.Tool], len(domain.ToolKinds))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range domain.ToolKinds {
		g.Go(func() error {
			res, err := s.FetchTools(gctx, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			out.Tools[kind] = res
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		res, err := s.FetchVideos(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		out.Videos = res
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return Refresh{}, err
	}
	return out, nil
}

type chain[T any] struct {
	kind      domain.ListKind
	prompt    string
	normalize func([]T) []T
	static    []T
}

// fetch 严格按顺序尝试每一层，不并发、不合并。第一个非空结果胜出。
// 每一层返回时如果 ctx 已结束，丢弃迟到的结果并返回 ctx.Err()。
func fetch[T any](ctx context.Context, s *Service, c chain[T]) (Result[T], error) {
	var res Result[T]
	key := c.kind.CacheKey()
	log := s.log.With(logger.String("list", string(c.kind)))

	fail := func(tier domain.Tier, err error) {
		res.Attempts = append(res.Attempts, TierAttempt{Tier: tier, Err: err})
		if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrNotConfigured) {
			log.Warn("tier failed, falling through", logger.String("tier", string(tier)), logger.Error(err))
		}
	}
	done := func(tier domain.Tier, items []T) (Result[T], error) {
		res.Items = items
		res.Tier = tier
		log.Debug("list resolved", logger.String("tier", string(tier)), logger.Int("items", len(items)))
		return res, nil
	}

	// 1. 缓存
	items, err := fromCache[T](ctx, s, key)
	if err == nil {
		return done(domain.TierCache, items)
	}
	fail(domain.TierCache, err)

	// 2. Webhook
	items, err = fromWebhook(ctx, s, c)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result[T]{}, ctxErr
	}
	if err == nil {
		s.store(ctx, key, items)
		return done(domain.TierWebhook, items)
	}
	fail(domain.TierWebhook, err)

	// 3. 生成式模型
	items, err = fromGenerator(ctx, s, c)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result[T]{}, ctxErr
	}
	if err == nil {
		s.store(ctx, key, items)
		return done(domain.TierGenerative, items)
	}
	fail(domain.TierGenerative, err)

	// 4. 静态列表，原样返回，不写缓存
	return done(domain.TierStatic, c.static)
}

func fromCache[T any](ctx context.Context, s *Service, key string) ([]T, error) {
	if s.cache == nil {
		return nil, ErrNotConfigured
	}
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCacheMiss
	}
	return items, nil
}

func fromWebhook[T any](ctx context.Context, s *Service, c chain[T]) ([]T, error) {
	if s.webhook == nil {
		return nil, ErrNotConfigured
	}
	raws, err := s.webhook.Fetch(ctx, c.kind.Action(), map[string]any{"limit": s.limit})
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			s.log.Debug("skip malformed webhook item", logger.Error(err))
			continue
		}
		items = append(items, item)
	}
	items = c.normalize(items)
	if len(items) == 0 {
		return nil, ErrNoData
	}
	return items, nil
}

// fromGenerator 解析失败等价于空数组
func fromGenerator[T any](ctx context.Context, s *Service, c chain[T]) ([]T, error) {
	if s.generator == nil {
		return nil, ErrNotConfigured
	}
	text, err := s.generator.GenerateJSON(ctx, c.prompt)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, errors.Join(ErrNoData, err)
	}
	items = c.normalize(items)
	if len(items) == 0 {
		return nil, ErrNoData
	}
	return items, nil
}

// store 缓存写入失败只记录日志，不影响本次结果
func (s *Service) store(ctx context.Context, key string, items any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(items)
	if err == nil {
		err = s.cache.Set(ctx, key, payload)
	}
	if err != nil {
		s.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}
