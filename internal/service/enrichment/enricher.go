// Package enrichment 用一次生成式调用补全工具缺失的描述、功能和价格字段
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
	"aitool-hub/internal/store"
)

// Enricher 补全失败永远只返回空补丁，调用方必须容忍永远补不全的记录
type Enricher struct {
	generator     port.Generator
	catalog       *store.Catalog
	log           logger.Logger
	maxGoroutines int           // 最大并发数
	timeout       time.Duration // 单个工具的超时
}

type Option func(*Enricher)

// WithMaxGoroutines 设置最大并发数
func WithMaxGoroutines(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.maxGoroutines = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEnricher generator 为 nil (没有 API Key) 时所有补全都是静默的 no-op
func NewEnricher(generator port.Generator, catalog *store.Catalog, log logger.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		generator:     generator,
		catalog:       catalog,
		log:           log,
		maxGoroutines: 3,
		timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled 是否配置了生成式模型
func (e *Enricher) Enabled() bool { return e.generator != nil }

// Enrich 只对缺字段的工具发起一次调用，任何失败都返回空补丁
func (e *Enricher) Enrich(ctx context.Context, tool domain.Tool) domain.ToolPatch {
	if !tool.NeedsEnrichment() || e.generator == nil {
		return domain.ToolPatch{}
	}

	text, err := e.generator.GenerateJSON(ctx, enrichPrompt(tool))
	if err != nil {
		e.log.Warn("enrichment call failed", logger.String("tool", tool.Name), logger.Error(err))
		return domain.ToolPatch{}
	}

	var patch domain.ToolPatch
	if err := json.Unmarshal([]byte(text), &patch); err != nil {
		e.log.Warn("enrichment response is not a JSON object", logger.String("tool", tool.Name), logger.Error(err))
		return domain.ToolPatch{}
	}
	return patch
}

// EnrichAndStore 补全并写回目录。补丁在 Update 内合并到最新的记录上，只填空字段。
// 返回写回后的记录以及是否发生了修改。
func (e *Enricher) EnrichAndStore(ctx context.Context, id string) (domain.Tool, bool, error) {
	tool, ok := e.catalog.Tools.Get(id)
	if !ok {
		return domain.Tool{}, false, store.ErrNotFound
	}

	patch := e.Enrich(ctx, tool)
	if patch.IsEmpty() {
		return tool, false, nil
	}

	var changed bool
	updated, err := e.catalog.Tools.Update(ctx, id, func(t *domain.Tool) {
		changed = t.Apply(patch)
	})
	if err != nil {
		return tool, false, err
	}
	if changed {
		e.log.Info("tool enriched", logger.String("id", id), logger.String("tool", updated.Name))
	}
	return updated, changed, nil
}

// Report EnrichMissing 的统计
type Report struct {
	Candidates int `json:"candidates"`
	Enriched   int `json:"enriched"`
	Unchanged  int `json:"unchanged"`
}

// enrichWorker 工作协程，处理单个工具的补全
func (e *Enricher) enrichWorker(ctx context.Context, jobs <-chan string, results chan<- bool, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for id := range jobs {
		// 为每个工具设置超时时间
		toolCtx, cancel := context.WithTimeout(ctx, e.timeout)
		_, changed, err := e.EnrichAndStore(toolCtx, id)
		cancel()

		if err != nil {
			e.log.Debug("enrich skipped", logger.Int("worker", workerID), logger.String("id", id), logger.Error(err))
		}
		results <- changed
	}
}

// EnrichMissing 并发补全所有缺字段的工具
func (e *Enricher) EnrichMissing(ctx context.Context) (Report, error) {
	var ids []string
	for _, t := range e.catalog.Tools.List() {
		if t.NeedsEnrichment() {
			ids = append(ids, t.ID)
		}
	}
	report := Report{Candidates: len(ids)}
	if len(ids) == 0 || e.generator == nil {
		report.Unchanged = len(ids)
		return report, nil
	}

	e.log.Info("开始补全", logger.Int("tools", len(ids)), logger.Int("workers", e.maxGoroutines))

	jobs := make(chan string, len(ids))
	results := make(chan bool, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < e.maxGoroutines; i++ {
		wg.Add(1)
		go e.enrichWorker(ctx, jobs, results, &wg, i+1)
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	// 等待所有workers完成
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// 已写回的补全保留，剩余的 worker 会因 ctx 结束尽快退出
		return report, ctx.Err()
	}
	close(results)

	for changed := range results {
		if changed {
			report.Enriched++
		} else {
			report.Unchanged++
		}
	}
	e.log.Info("补全完成", logger.Int("enriched", report.Enriched), logger.Int("unchanged", report.Unchanged))
	return report, nil
}

func enrichPrompt(t domain.Tool) string {
	site := t.URL
	if site == "" {
		site = t.Domain
	}
	return fmt.Sprintf(`You are cataloguing AI products.
Describe the AI tool %q (%s, category %q).
Respond with a STRICT JSON OBJECT only, no prose and no markdown, with exactly these keys:
{"description": string, "features": [string], "pricingModel": "Free"|"Freemium"|"Paid", "plans": [{"name": string, "price": string, "features": [string]}]}`,
		t.Name, site, t.Category)
}
