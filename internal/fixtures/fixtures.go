// Package fixtures 内置的种子数据和回退链最后一层的静态列表
package fixtures

import (
	_ "embed"
	"fmt"

	"aitool-hub/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

//go:embed fallback.yaml
var fallbackYAML []byte

// Seed 首次启动时的目录内容
type Seed struct {
	Tools   []domain.Tool   `yaml:"tools"`
	Prompts []domain.Prompt `yaml:"prompts"`
	Videos  []domain.Video  `yaml:"videos"`
	Users   []domain.User   `yaml:"users"`
}

// Fallback 静态回退列表
type Fallback struct {
	Trending  []domain.Tool  `yaml:"trending"`
	Latest    []domain.Tool  `yaml:"latest"`
	Tutorials []domain.Video `yaml:"tutorials"`
}

// LoadSeed 解析内置种子数据，每次调用返回新的副本
func LoadSeed() (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(seedYAML, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return s, nil
}

// ParseSeed 解析外部种子文件 (同样的格式)
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return s, nil
}

// LoadFallback 解析内置回退列表，每次调用返回新的副本
func LoadFallback() (Fallback, error) {
	var f Fallback
	if err := yaml.Unmarshal(fallbackYAML, &f); err != nil {
		return Fallback{}, fmt.Errorf("failed to parse fallback yaml: %w", err)
	}
	return f, nil
}

// Tools 某个列表类型的静态工具列表
func (f Fallback) Tools(kind domain.ListKind) []domain.Tool {
	var src []domain.Tool
	switch kind {
	case domain.ListTrending:
		src = f.Trending
	case domain.ListLatest:
		src = f.Latest
	}
	return append([]domain.Tool(nil), src...)
}

// Videos 教程视频的静态列表
func (f Fallback) Videos() []domain.Video {
	return append([]domain.Video(nil), f.Tutorials...)
}
