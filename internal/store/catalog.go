package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"aitool-hub/internal/domain"
	"aitool-hub/internal/fixtures"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
)

// 镜像中的存储键，没有 schema 版本
const (
	KeyTools       = "tools"
	KeyPrompts     = "prompts"
	KeyVideos      = "videos"
	KeyUsers       = "users"
	KeyMaintenance = "maintenance"
	KeySession     = "session"
	savedPrefix    = "saved:"
)

// SavedEntities 支持收藏的实体类型
var SavedEntities = []string{KeyTools, KeyPrompts, KeyVideos}

var ErrUnknownEntity = errors.New("store: unknown entity")

// Catalog 汇总四张表、维护模式开关和收藏夹
type Catalog struct {
	Tools   *Table[domain.Tool]
	Prompts *Table[domain.Prompt]
	Videos  *Table[domain.Video]
	Users   *Table[domain.User]

	mirror port.Mirror
	log    logger.Logger

	mu          sync.RWMutex
	maintenance bool
	saved       map[string][]string
}

func NewCatalog(mirror port.Mirror, log logger.Logger) *Catalog {
	return &Catalog{
		Tools:   NewTable[domain.Tool](KeyTools, mirror, log),
		Prompts: NewTable[domain.Prompt](KeyPrompts, mirror, log),
		Videos:  NewTable[domain.Video](KeyVideos, mirror, log),
		Users:   NewTable[domain.User](KeyUsers, mirror, log),
		mirror:  mirror,
		log:     log,
		saved:   make(map[string][]string),
	}
}

// Mirror 会话等其它组件共享同一个镜像
func (c *Catalog) Mirror() port.Mirror { return c.mirror }

// Load 用种子数据合并上次镜像的内容：同 id 以镜像为准，镜像独有的追加在后
// 某个键无法解析 (旧形状) 时忽略该键，继续使用种子数据
func (c *Catalog) Load(ctx context.Context, seed fixtures.Seed) error {
	if err := loadTable(ctx, c, c.Tools, seed.Tools); err != nil {
		return err
	}
	if err := loadTable(ctx, c, c.Prompts, seed.Prompts); err != nil {
		return err
	}
	if err := loadTable(ctx, c, c.Videos, seed.Videos); err != nil {
		return err
	}
	if err := loadTable(ctx, c, c.Users, seed.Users); err != nil {
		return err
	}

	var on bool
	if _, err := c.load(ctx, KeyMaintenance, &on); err != nil {
		return err
	}

	saved := make(map[string][]string, len(SavedEntities))
	for _, entity := range SavedEntities {
		var ids []string
		if _, err := c.load(ctx, savedPrefix+entity, &ids); err != nil {
			return err
		}
		saved[entity] = ids
	}

	c.mu.Lock()
	c.maintenance = on
	c.saved = saved
	c.mu.Unlock()

	c.log.Info("catalog loaded",
		logger.Int("tools", c.Tools.Len()),
		logger.Int("prompts", c.Prompts.Len()),
		logger.Int("videos", c.Videos.Len()),
		logger.Int("users", c.Users.Len()),
		logger.Bool("maintenance", on),
	)
	return nil
}

func loadTable[T Entity[T]](ctx context.Context, c *Catalog, t *Table[T], seed []T) error {
	var persisted []T
	found, err := c.load(ctx, t.Key(), &persisted)
	if err != nil {
		return err
	}
	if !found {
		persisted = nil
	}
	t.reset(Merge(seed, persisted))
	return nil
}

// load 解析失败只记日志，数据库不可用才返回错误
func (c *Catalog) load(ctx context.Context, key string, dst any) (bool, error) {
	if c.mirror == nil {
		return false, nil
	}
	found, err := c.mirror.Load(ctx, key, dst)
	if err == nil {
		return found, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if errors.Is(err, port.ErrDecode) {
		c.log.Warn("persisted value has an old shape, ignoring", logger.String("key", key), logger.Error(err))
		return false, nil
	}
	return false, fmt.Errorf("load %s: %w", key, err)
}

// Merge 种子数据按 id 被镜像覆盖，镜像独有的记录按原顺序追加
func Merge[T Entity[T]](seed, persisted []T) []T {
	byID := make(map[string]T, len(persisted))
	for _, p := range persisted {
		byID[p.GetID()] = p
	}

	out := make([]T, 0, len(seed)+len(persisted))
	used := make(map[string]bool, len(seed))
	for _, s := range seed {
		if p, ok := byID[s.GetID()]; ok {
			out = append(out, p)
		} else {
			out = append(out, s)
		}
		used[s.GetID()] = true
	}
	for _, p := range persisted {
		if !used[p.GetID()] {
			out = append(out, p)
			used[p.GetID()] = true
		}
	}
	return out
}

// ImportTools AI 发现的批量导入，只添加目录中没有的 id
func (c *Catalog) ImportTools(ctx context.Context, items []domain.Tool) int {
	for i := range items {
		items[i].Normalize()
	}
	n := c.Tools.AddMissing(ctx, items)
	if n > 0 {
		c.log.Info("tools imported", logger.Int("added", n), logger.Int("offered", len(items)))
	}
	return n
}

func (c *Catalog) Maintenance() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maintenance
}

func (c *Catalog) SetMaintenance(ctx context.Context, on bool) {
	c.mu.Lock()
	c.maintenance = on
	c.mu.Unlock()
	c.save(ctx, KeyMaintenance, on)
}

// Saved 某类实体的收藏 id 列表
func (c *Catalog) Saved(entity string) ([]string, error) {
	if !slices.Contains(SavedEntities, entity) {
		return nil, ErrUnknownEntity
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.saved[entity]...), nil
}

// AddSaved 重复收藏是 no-op
func (c *Catalog) AddSaved(ctx context.Context, entity, id string) error {
	return c.updateSaved(ctx, entity, func(ids []string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		return append(ids, id)
	})
}

func (c *Catalog) RemoveSaved(ctx context.Context, entity, id string) error {
	return c.updateSaved(ctx, entity, func(ids []string) []string {
		return slices.DeleteFunc(ids, func(s string) bool { return s == id })
	})
}

// Exists 收藏前校验目标记录存在
func (c *Catalog) Exists(entity, id string) bool {
	var ok bool
	switch entity {
	case KeyTools:
		_, ok = c.Tools.Get(id)
	case KeyPrompts:
		_, ok = c.Prompts.Get(id)
	case KeyVideos:
		_, ok = c.Videos.Get(id)
	}
	return ok
}

func (c *Catalog) updateSaved(ctx context.Context, entity string, fn func([]string) []string) error {
	if !slices.Contains(SavedEntities, entity) {
		return ErrUnknownEntity
	}
	c.mu.Lock()
	next := fn(append([]string{}, c.saved[entity]...))
	c.saved[entity] = next
	c.mu.Unlock()

	c.save(ctx, savedPrefix+entity, next)
	return nil
}

func (c *Catalog) save(ctx context.Context, key string, value any) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Save(ctx, key, value); err != nil {
		c.log.Warn("mirror write failed", logger.String("key", key), logger.Error(err))
	}
}

// Counts 管理后台概览
func (c *Catalog) Counts() map[string]int {
	return map[string]int{
		KeyTools:   c.Tools.Len(),
		KeyPrompts: c.Prompts.Len(),
		KeyVideos:  c.Videos.Len(),
		KeyUsers:   c.Users.Len(),
	}
}
