// Package googleai wraps the google.golang.org/genai SDK for the calls that need
// features the JSON generator does not expose: search grounding, streaming and images.
package googleai

import (
	"context"
	"fmt"
	"strings"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"

	"google.golang.org/genai"
)

const videoSearchPrompt = `Find the most relevant public video on the video platform for the search query below.
Respond with ONLY the %d-character platform video ID, or the literal %s if nothing matches.
Do not add any other text.

Query: %s`

// Client 实现了 port.VideoSearcher 和 port.Studio
type Client struct {
	client      *genai.Client
	searchModel string
	imageModel  string
}

func NewClient(ctx context.Context, apiKey, searchModel, imageModel string) (*Client, error) {
	if apiKey == "" {
		return nil, common.NewError(common.ErrCodeNotConfigured, "GEMINI_API_KEY is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "create genai client", err)
	}
	if searchModel == "" {
		searchModel = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-002"
	}
	return &Client{client: client, searchModel: searchModel, imageModel: imageModel}, nil
}

// SearchVideoID 使用 GoogleSearch 工具模式，返回模型原文 (调用方负责校验)
func (c *Client) SearchVideoID(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(videoSearchPrompt, domain.PlatformIDLength, domain.VideoNotFoundMarker, query)
	resp, err := c.client.Models.GenerateContent(ctx, c.searchModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return "", common.WrapError(common.ErrCodeAIProcessing, "search video id", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// StreamChat 逐块回调模型输出。onChunk 返回错误时停止读取。
func (c *Client) StreamChat(ctx context.Context, history []domain.ChatMessage, prompt string, onChunk func(string) error) error {
	contents := BuildContents(history, prompt)
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.searchModel, contents, nil) {
		if err != nil {
			return common.WrapError(common.ErrCodeAIProcessing, "chat stream", err)
		}
		if chunk := resp.Text(); chunk != "" {
			if err := onChunk(chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateImage 返回第一张图片的字节和 MIME 类型
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, "", common.WrapError(common.ErrCodeAIProcessing, "generate image", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, "", common.NewError(common.ErrCodeAIProcessing, "no image returned")
	}
	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return img.ImageBytes, mime, nil
}

// BuildContents 把对话历史转换为 SDK 的 Content 列表，末尾追加本轮提问
func BuildContents(history []domain.ChatMessage, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if msg.Role == domain.ChatModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
