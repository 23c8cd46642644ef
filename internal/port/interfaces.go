package port

import (
	"context"
	"encoding/json"
	"errors"

	"aitool-hub/internal/domain"
)

// ListWebhook (远程 Webhook): 回退链第一层
// POST {action, ...params}，返回裸数组或 {tools|data: [...]} 中的数组
type ListWebhook interface {
	Fetch(ctx context.Context, action string, params map[string]any) ([]json.RawMessage, error)
}

// Generator (生成式模型): 回退链第二层，也是补全管道的唯一数据源
// 返回去掉代码块标记后的 JSON 文本
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// VideoSearcher 使用带搜索能力的模型查找视频 ID，返回模型原文
type VideoSearcher interface {
	SearchVideoID(ctx context.Context, query string) (string, error)
}

// Studio 创作工作室：流式对话 + 图片生成
type Studio interface {
	StreamChat(ctx context.Context, history []domain.ChatMessage, prompt string, onChunk func(string) error) error
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// Cache 单一扁平键空间的 TTL 缓存，过期即视为不存在
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
}

// ErrDecode 镜像中的值无法解析成目标类型 (旧形状的数据)
var ErrDecode = errors.New("stored value cannot be decoded")

// Mirror (持久化镜像): 每次变更后整表写入，按键独立存储 JSON
type Mirror interface {
	Save(ctx context.Context, key string, value any) error
	// Load 返回 false 表示该键从未写入过，解析失败的错误包装 ErrDecode
	Load(ctx context.Context, key string, dst any) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ToolImporter 从外部来源批量发现工具 (GitHub topic 搜索)
type ToolImporter interface {
	SearchTools(ctx context.Context, topic string, maxDaysOld int) ([]domain.Tool, error)
}
