// Package app 组装所有组件：配置 -> 存储/缓存 -> 模型适配器 -> 服务 -> HTTP
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aitool-hub/internal/adapter/cache"
	"aitool-hub/internal/adapter/gemini"
	"aitool-hub/internal/adapter/github"
	"aitool-hub/internal/adapter/googleai"
	"aitool-hub/internal/adapter/repository"
	"aitool-hub/internal/adapter/webhook"
	"aitool-hub/internal/auth"
	"aitool-hub/internal/config"
	"aitool-hub/internal/fixtures"
	"aitool-hub/internal/httpserver"
	"aitool-hub/internal/httpserver/deps"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
	"aitool-hub/internal/scheduler"
	"aitool-hub/internal/service/discovery"
	"aitool-hub/internal/service/enrichment"
	"aitool-hub/internal/service/studio"
	"aitool-hub/internal/service/video"
	"aitool-hub/internal/store"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	version string

	Catalog   *store.Catalog
	Discovery *discovery.Service
	Enricher  *enrichment.Enricher
	Resolver  *video.Resolver
	Auth      *auth.Simulator
	Studio    *studio.Service
	Importer  *github.Importer

	closers []func() error
}

// New 连接外部依赖并加载目录。没有配置的依赖退化为进程内实现或直接跳过。
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger, version string) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient, version: version}

	mirror, err := a.openMirror()
	if err != nil {
		return nil, err
	}
	cacheStore, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 接口变量只在适配器创建成功时赋值，避免 typed nil
	var generator port.Generator
	var searcher port.VideoSearcher
	var studioPort port.Studio
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		a.closers = append(a.closers, g.Close)
		generator = g

		gc, err := googleai.NewClient(ctx, cfg.GeminiAPIKey, cfg.SearchModel, cfg.ImageModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init genai client: %w", err)
		}
		searcher = gc
		studioPort = gc
	} else {
		loggerClient.Warn("GEMINI_API_KEY not set, generative tier, enrichment and studio are disabled")
	}

	opts := []discovery.Option{discovery.WithGenerator(generator)}
	if cfg.WebhookURL != "" {
		opts = append(opts, discovery.WithWebhook(webhook.NewClient(cfg.WebhookURL, loggerClient,
			webhook.WithTimeout(cfg.WebhookTimeout),
			webhook.WithRetries(cfg.WebhookRetries, 500*time.Millisecond),
		)))
	}

	fallback, err := fixtures.LoadFallback()
	if err != nil {
		a.Close()
		return nil, err
	}
	seed, err := fixtures.LoadSeed()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Catalog = store.NewCatalog(mirror, loggerClient)
	if err := a.Catalog.Load(ctx, seed); err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a.Discovery = discovery.NewService(cacheStore, fallback, loggerClient, opts...)
	a.Enricher = enrichment.NewEnricher(generator, a.Catalog, loggerClient,
		enrichment.WithMaxGoroutines(cfg.EnrichWorkers),
		enrichment.WithTimeout(cfg.GenerateTimeout),
	)
	a.Resolver = video.NewResolver(searcher, a.Catalog, loggerClient)
	a.Studio = studio.NewService(studioPort, loggerClient)
	a.Importer = newImporter(cfg, loggerClient)

	a.Auth = auth.NewSimulator(mirror, a.Catalog.Users, cfg.AdminEmails, loggerClient)
	if err := a.Auth.Restore(ctx); err != nil {
		loggerClient.Warn("restore session failed", logger.Error(err))
	}
	return a, nil
}

func newImporter(cfg *config.Config, loggerClient logger.Logger, opts ...github.Option) *github.Importer {
	opts = append([]github.Option{
		github.WithPerPage(cfg.GitHubPerPage),
		github.WithCommitCheck(cfg.GitHubCommitCheck),
	}, opts...)
	return github.NewImporter(cfg.GitHubToken, loggerClient, opts...)
}

// openMirror 配置了 DSN 时使用 Postgres，否则只保存在进程内
func (a *App) openMirror() (port.Mirror, error) {
	if a.cfg.PostgresDSN == "" {
		a.logger.Info("HUB_POSTGRES_DSN not set, using in-memory mirror")
		return repository.NewMemoryMirror(), nil
	}
	repo, err := repository.NewBlobRepo(a.cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, repo.Close)
	a.logger.Info("postgres mirror initialized")
	return repo, nil
}

// openCache 配置了 Redis 时使用 Redis，否则使用进程内缓存
func (a *App) openCache(ctx context.Context) (port.Cache, error) {
	if a.cfg.RedisAddr == "" {
		return cache.NewMemoryCache(a.cfg.CacheTTL), nil
	}
	a.logger.Infof("Connecting to Redis at %s", a.cfg.RedisAddr)
	client, err := cache.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	return cache.NewRedisCache(client, a.cfg.CacheTTL), nil
}

func (a *App) Config() *config.Config { return a.cfg }

// Close 按创建的相反顺序释放连接
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", logger.Error(err))
		}
	}
	a.closers = nil
}

// Run 启动轮询和 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting aitool-hub %s on %s", a.version, a.cfg.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pollerOpts []scheduler.Option
	if a.cfg.EnrichInterval > 0 {
		pollerOpts = append(pollerOpts, scheduler.WithEnricher(a.Enricher, a.cfg.EnrichInterval))
	}
	poller := scheduler.NewPoller(a.Discovery, a.Catalog, a.logger, a.cfg.PollInterval, pollerOpts...)
	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("failed to start poller: %w", err)
	}

	d := deps.Deps{
		Logger:           a.logger,
		StartTime:        time.Now(),
		Version:          a.version,
		Catalog:          a.Catalog,
		Discovery:        a.Discovery,
		Enricher:         a.Enricher,
		Resolver:         a.Resolver,
		Auth:             a.Auth,
		Studio:           a.Studio,
		Importer:         a.Importer,
		ImportMaxDaysOld: a.cfg.ImportMaxDaysOld,
		RefreshTrigger:   poller.Trigger,
	}
	server := httpserver.New(a.cfg, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	poller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Error("server shutdown failed", logger.Error(err))
	}

	a.logger.Info("✅ Shutdown complete")
	return runErr
}
