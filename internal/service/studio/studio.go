// Package studio 创作工作室：流式对话和图片生成
package studio

import (
	"context"
	"errors"
	"strings"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
)

// ErrImageGeneration 图片生成失败时表单上显示的文案
var ErrImageGeneration = errors.New("Failed to generate image")

// Image 生成的图片
type Image struct {
	Data     []byte
	MIMEType string
}

type Service struct {
	studio port.Studio
	log    logger.Logger
}

// NewService studio 为 nil 时 Chat 与 GenerateImage 都返回 ErrCodeNotConfigured
func NewService(studio port.Studio, log logger.Logger) *Service {
	return &Service{studio: studio, log: log}
}

// Chat 流式输出逐块追加到同一条进行中的消息并回调 onChunk。
// 流被中断或取消时返回已收到的部分 (Partial=true) 和错误，不重试。
func (s *Service) Chat(ctx context.Context, history []domain.ChatMessage, prompt string, onChunk func(string) error) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{Role: domain.ChatModel}
	if strings.TrimSpace(prompt) == "" {
		return msg, common.NewError(common.ErrCodeInvalidInput, "prompt is empty")
	}
	if s.studio == nil {
		return msg, common.NewError(common.ErrCodeNotConfigured, "studio is not configured")
	}

	var sb strings.Builder
	err := s.studio.StreamChat(ctx, history, prompt, func(chunk string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		sb.WriteString(chunk)
		if onChunk != nil {
			return onChunk(chunk)
		}
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}

	msg.Text = sb.String()
	if err != nil {
		msg.Partial = true
		s.log.Warn("chat stream aborted", logger.Int("received", len(msg.Text)), logger.Error(err))
		return msg, err
	}
	return msg, nil
}

// GenerateImage 模型调用的任何失败都返回 ErrImageGeneration，原因只记录日志
func (s *Service) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return Image{}, common.NewError(common.ErrCodeInvalidInput, "prompt is empty")
	}
	if s.studio == nil {
		return Image{}, common.NewError(common.ErrCodeNotConfigured, "studio is not configured")
	}

	data, mime, err := s.studio.GenerateImage(ctx, prompt)
	if err != nil || len(data) == 0 {
		s.log.Warn("image generation failed", logger.Error(err))
		return Image{}, ErrImageGeneration
	}
	return Image{Data: data, MIMEType: mime}, nil
}
