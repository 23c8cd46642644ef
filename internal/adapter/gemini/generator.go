package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aitool-hub/internal/common"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNoJSON 模型原文中找不到 JSON
var ErrNoJSON = errors.New("no JSON found in model output")

// Generator 实现了 port.Generator 接口
type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGenerator(ctx context.Context, apiKey, modelName string) (*Generator, error) {
	if apiKey == "" {
		return nil, common.NewError(common.ErrCodeNotConfigured, "GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "create gemini client", err)
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	model := client.GenerativeModel(modelName)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)

	return &Generator{client: client, model: model}, nil
}

// GenerateJSON 调用模型并返回清洗后的 JSON 文本 (去掉 ``` 代码块和前后说明文字)
func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "generate content", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", common.NewError(common.ErrCodeAIProcessing, "empty model response")
	}

	clean, err := ExtractJSON(sb.String())
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "parse model response", err)
	}
	return clean, nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}

// ExtractJSON 智能寻找 JSON 的起止位置。
// 即使模型返回 "```json [ ... ] ```" 或在前后夹带说明，也能抠出中间的数组/对象。
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return "", fmt.Errorf("%w: %.120s", ErrNoJSON, raw)
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return "", fmt.Errorf("%w: %.120s", ErrNoJSON, raw)
	}
	return s[start : end+1], nil
}
