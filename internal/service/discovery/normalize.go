package discovery

import (
	"strings"
	"unicode"

	"aitool-hub/internal/domain"

	"github.com/google/uuid"
)

// NormalizeTools 转换成目录中的形状：丢弃没有名字的条目，补 ID，由域名推导 URL，按 ID 去重
func NormalizeTools(items []domain.Tool) []domain.Tool {
	out := make([]domain.Tool, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, t := range items {
		t.Normalize()
		if t.Name == "" {
			continue
		}
		if t.ID == "" {
			t.ID = GeneratedID(t.Name)
		}
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}

// NormalizeVideos 非法的平台 ID 清空，留给首次播放时解析
func NormalizeVideos(items []domain.Video) []domain.Video {
	out := make([]domain.Video, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, v := range items {
		v.Title = strings.TrimSpace(v.Title)
		if v.Title == "" {
			continue
		}
		if v.Source == "" {
			v.Source = domain.SourcePlatform
		}
		if v.PlatformID != "" && !domain.ValidPlatformID(v.PlatformID) {
			v.PlatformID = ""
		}
		if v.ID == "" {
			v.ID = GeneratedID(v.Title)
		}
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

// GeneratedID 由名字生成稳定 ID，同一个工具重复发现时导入不会产生重复记录
// 名字里没有可用字符时退回随机 uuid
func GeneratedID(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "ai-" + uuid.NewString()
	}
	return "ai-" + slug
}
