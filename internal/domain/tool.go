package domain

import (
	"strings"
)

// Plan 结构化的价格方案
type Plan struct {
	Name     string   `json:"name" yaml:"name"`
	Price    string   `json:"price" yaml:"price"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Tool 代表目录中的一个第三方 AI 产品
type Tool struct {
	// 身份
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name" validate:"required"`
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// 信任信号
	Verified bool    `json:"verified" yaml:"verified"`
	Rating   float64 `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	Reviews  int     `json:"reviews" yaml:"reviews" validate:"gte=0"`

	// 商业条款：Pricing 是旧版价格列表，Plans 是结构化方案
	PricingModel string   `json:"pricingModel,omitempty" yaml:"pricingModel,omitempty"`
	Pricing      []string `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	Plans        []Plan   `json:"plans,omitempty" yaml:"plans,omitempty"`

	// 新鲜度
	LastVerified  Date    `json:"lastVerified" yaml:"lastVerified,omitempty"`
	TrendScore    float64 `json:"trendScore" yaml:"trendScore"`
	PublishedDate Date    `json:"publishedDate" yaml:"publishedDate,omitempty"`

	// 展示
	Logo            string   `json:"logo,omitempty" yaml:"logo,omitempty"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	LongDescription string   `json:"longDescription,omitempty" yaml:"longDescription,omitempty"`
	Screenshots     []string `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
	Features        []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// GetID 供 store.Table 使用
func (t Tool) GetID() string { return t.ID }

// WithID 供 store.Table 使用
func (t Tool) WithID(id string) Tool {
	t.ID = id
	return t
}

// HasPricing 任意一种价格信息存在即视为有价格
func (t *Tool) HasPricing() bool {
	return t.PricingModel != "" || len(t.Pricing) > 0 || len(t.Plans) > 0
}

// NeedsEnrichment 缺少功能列表或价格信息时需要补全
func (t *Tool) NeedsEnrichment() bool {
	return len(t.Features) == 0 || !t.HasPricing()
}

// Normalize 补齐由其它字段推导出来的值：URL 由域名推导
func (t *Tool) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.URL == "" && t.Domain != "" {
		t.URL = URLFromDomain(t.Domain)
	}
	if t.Domain == "" && t.URL != "" {
		t.Domain = DomainFromURL(t.URL)
	}
}

// ToolPatch 是补全管道产出的字段补丁
type ToolPatch struct {
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	PricingModel string   `json:"pricingModel"`
	Plans        []Plan   `json:"plans"`
}

// IsEmpty 空补丁等价于 no-op
func (p ToolPatch) IsEmpty() bool {
	return p.Description == "" && len(p.Features) == 0 && p.PricingModel == "" && len(p.Plans) == 0
}

// Apply 只填充空字段，绝不覆盖已有值。返回是否发生了修改。
func (t *Tool) Apply(p ToolPatch) bool {
	changed := false
	if t.Description == "" && p.Description != "" {
		t.Description = p.Description
		changed = true
	}
	if len(t.Features) == 0 && len(p.Features) > 0 {
		t.Features = append([]string(nil), p.Features...)
		changed = true
	}
	if t.PricingModel == "" && p.PricingModel != "" {
		t.PricingModel = p.PricingModel
		changed = true
	}
	if len(t.Plans) == 0 && len(p.Plans) > 0 {
		t.Plans = append([]Plan(nil), p.Plans...)
		changed = true
	}
	return changed
}

// URLFromDomain "cursor.sh" -> "https://cursor.sh"
func URLFromDomain(domain string) string {
	d := strings.TrimSpace(domain)
	if d == "" {
		return ""
	}
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + strings.TrimSuffix(d, "/")
}

// DomainFromURL "https://www.cursor.sh/pricing" -> "cursor.sh"
func DomainFromURL(raw string) string {
	d := strings.TrimSpace(raw)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	return d
}
