package domain

import "time"

// PromptStatus 发布状态
type PromptStatus string

const (
	PromptPublished PromptStatus = "published"
	PromptDraft     PromptStatus = "draft"
)

// Prompt 可复用的提示词模板。创建后内容不可编辑，只能删除。
type Prompt struct {
	ID            string       `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title" validate:"required"`
	Category      string       `json:"category" yaml:"category" validate:"required"`
	Tags          []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Content       string       `json:"content" yaml:"content" validate:"required"`
	Views         int          `json:"views" yaml:"views"`
	Likes         int          `json:"likes" yaml:"likes"`
	Author        string       `json:"author,omitempty" yaml:"author,omitempty"`
	Tool          string       `json:"tool,omitempty" yaml:"tool,omitempty"`
	Model         string       `json:"model,omitempty" yaml:"model,omitempty"`
	PreviewImages []string     `json:"previewImages,omitempty" yaml:"previewImages,omitempty"`
	Status        PromptStatus `json:"status" yaml:"status" validate:"omitempty,oneof=published draft"`
	CreatedAt     time.Time    `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

func (p Prompt) GetID() string { return p.ID }

func (p Prompt) WithID(id string) Prompt {
	p.ID = id
	return p
}
