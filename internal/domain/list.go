package domain

import "fmt"

// ListKind 发现页的列表类型
type ListKind string

const (
	ListTrending  ListKind = "trending"
	ListLatest    ListKind = "latest"
	ListTutorials ListKind = "tutorials"
)

// ToolKinds 产出 Tool 的列表类型
var ToolKinds = []ListKind{ListTrending, ListLatest}

// ParseListKind 校验路径/命令行中传入的列表类型
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListTrending, ListLatest, ListTutorials:
		return ListKind(s), nil
	}
	return "", fmt.Errorf("unknown list kind %q (valid: trending, latest, tutorials)", s)
}

// Action Webhook 请求体中的 action 字段
func (k ListKind) Action() string {
	switch k {
	case ListTrending:
		return "get_trending_tools"
	case ListLatest:
		return "get_latest_tools"
	case ListTutorials:
		return "get_tutorial_videos"
	}
	return string(k)
}

// CacheKey 缓存中的逻辑键
func (k ListKind) CacheKey() string {
	switch k {
	case ListTrending:
		return "trending_tools"
	case ListLatest:
		return "latest_tools"
	case ListTutorials:
		return "tutorial_videos"
	}
	return string(k)
}

// Tier 回退链中产出结果的层级
type Tier string

const (
	TierCache      Tier = "cache"
	TierWebhook    Tier = "webhook"
	TierGenerative Tier = "generative"
	TierStatic     Tier = "static"
)
