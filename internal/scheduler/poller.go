// Package scheduler 周期性拉取发现列表并导入目录，可选地周期性补全缺字段的工具
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/service/discovery"
	"aitool-hub/internal/service/enrichment"
	"aitool-hub/internal/store"

	"github.com/robfig/cron/v3"
)

// DefaultInterval 热门/最新列表的轮询间隔
const DefaultInterval = 60 * time.Second

// Refresher 由 discovery.Service 实现
type Refresher interface {
	RefreshAll(ctx context.Context) (discovery.Refresh, error)
}

// EnrichRunner 由 enrichment.Enricher 实现
type EnrichRunner interface {
	EnrichMissing(ctx context.Context) (enrichment.Report, error)
}

// Poller 每次运行重新拉取所有列表并导入新条目。运行之间不去重，最后完成的结果生效。
type Poller struct {
	refresher      Refresher
	catalog        *store.Catalog
	logger         logger.Logger
	interval       time.Duration
	enricher       EnrichRunner
	enrichInterval time.Duration

	cron          *cron.Cron
	manualTrigger chan struct{}
	stopCh        chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

type Option func(*Poller)

// WithEnricher 额外注册一个周期性补全任务，interval <= 0 时不注册
func WithEnricher(e EnrichRunner, interval time.Duration) Option {
	return func(p *Poller) {
		p.enricher = e
		p.enrichInterval = interval
	}
}

func NewPoller(refresher Refresher, catalog *store.Catalog, log logger.Logger, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		refresher:     refresher,
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		manualTrigger: make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	cl := cronLogger{log}
	p.cron = cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl)))
	return p
}

// Start 立即运行一次，然后按间隔调度
func (p *Poller) Start(ctx context.Context) error {
	if err := p.Poll(ctx); err != nil {
		return fmt.Errorf("initial poll failed: %w", err)
	}

	if _, err := p.cron.AddFunc(every(p.interval), func() {
		if err := p.Poll(ctx); err != nil {
			p.logger.Error("poll failed", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule poll: %w", err)
	}

	if p.enricher != nil && p.enrichInterval > 0 {
		if _, err := p.cron.AddFunc(every(p.enrichInterval), func() {
			if _, err := p.enricher.EnrichMissing(ctx); err != nil {
				p.logger.Warn("scheduled enrichment interrupted", logger.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule enrichment: %w", err)
		}
	}

	p.cron.Start()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.manualTrigger:
				p.logger.Info("manual poll triggered")
				if err := p.Poll(ctx); err != nil {
					p.logger.Error("poll failed", logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	p.logger.Info("poller started", logger.Duration("interval", p.interval))
	return nil
}

// Trigger 请求立即运行一次，已有待处理的请求时忽略
func (p *Poller) Trigger() {
	select {
	case p.manualTrigger <- struct{}{}:
	default:
	}
}

// Stop 停止调度并等待正在运行的任务结束
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		<-p.cron.Stop().Done()
		close(p.stopCh)
		p.wg.Wait()
	})
}

// Poll 拉取所有列表并把新工具、新视频导入目录
func (p *Poller) Poll(ctx context.Context) error {
	out, err := p.refresher.RefreshAll(ctx)
	if err != nil {
		return err
	}

	var tools []domain.Tool
	for _, kind := range domain.ToolKinds {
		res := out.Tools[kind]
		tools = append(tools, res.Items...)
		p.logger.Debug("list refreshed",
			logger.String("list", string(kind)),
			logger.String("tier", string(res.Tier)),
			logger.Int("items", len(res.Items)),
		)
	}
	added := p.catalog.ImportTools(ctx, tools)
	videos := p.catalog.Videos.AddMissing(ctx, out.Videos.Items)

	p.logger.Info("poll finished", logger.Int("toolsAdded", added), logger.Int("videosAdded", videos))
	return nil
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// cronLogger 把 cron 的日志转到 zap
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugf("cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}
