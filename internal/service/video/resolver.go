// Package video 播放前按需解析平台视频 ID
package video

import (
	"context"
	"errors"
	"strings"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
	"aitool-hub/internal/store"
)

var (
	// ErrNotResolved 模型输出既不是合法 ID 也不是 NOT_FOUND
	ErrNotResolved = errors.New("video id not resolved")
	// ErrNoMatch 模型明确返回 NOT_FOUND
	ErrNoMatch = errors.New("no matching video")
)

type Resolver struct {
	searcher port.VideoSearcher
	catalog  *store.Catalog
	log      logger.Logger
}

// NewResolver searcher 为 nil 时所有解析都返回 ErrCodeNotConfigured
func NewResolver(searcher port.VideoSearcher, catalog *store.Catalog, log logger.Logger) *Resolver {
	return &Resolver{searcher: searcher, catalog: catalog, log: log}
}

// ResolveID 输出必须正好是 11 位平台 ID 或 NOT_FOUND，其它任何输出都视为失败
func (r *Resolver) ResolveID(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", common.NewError(common.ErrCodeInvalidInput, "search query is empty")
	}
	if r.searcher == nil {
		return "", common.NewError(common.ErrCodeNotConfigured, "video search is not configured")
	}

	out, err := r.searcher.SearchVideoID(ctx, query)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)

	switch {
	case out == domain.VideoNotFoundMarker:
		return "", ErrNoMatch
	case domain.ValidPlatformID(out):
		return out, nil
	}
	r.log.Warn("unexpected video search output", logger.String("query", query), logger.Int("len", len(out)))
	return "", ErrNotResolved
}

// Resolve 首次播放时调用：已解析的直接返回，否则解析后原地写回目录
func (r *Resolver) Resolve(ctx context.Context, id string) (domain.Video, error) {
	v, ok := r.catalog.Videos.Get(id)
	if !ok {
		return domain.Video{}, store.ErrNotFound
	}
	if !v.NeedsResolution() {
		return v, nil
	}

	platformID, err := r.ResolveID(ctx, v.ResolveQuery())
	if err != nil {
		return v, err
	}

	updated, err := r.catalog.Videos.Update(ctx, id, func(cur *domain.Video) {
		// 并发解析时保留先写入的结果
		if cur.PlatformID == "" {
			cur.PlatformID = platformID
			cur.Source = domain.SourcePlatform
		}
	})
	if err != nil {
		return v, err
	}
	r.log.Info("video resolved", logger.String("id", id), logger.String("platformId", updated.PlatformID))
	return updated, nil
}
