package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/logger"
)

// ErrNoData 响应形状不符合约定 (不是数组，也没有 tools/data 数组)
var ErrNoData = errors.New("webhook returned no usable array")

// maxBodyBytes 响应体上限，防止异常的 Webhook 撑爆内存
const maxBodyBytes = 4 << 20

// Client 实现了 port.ListWebhook 接口
type Client struct {
	url     string
	http    *http.Client
	retries int
	delay   time.Duration
	logger  logger.Logger
}

// Option 可选配置
type Option func(*Client)

// WithTimeout 单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries 5xx/网络错误的重试次数，4xx 不重试
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

// WithHTTPClient 替换底层 http.Client (测试或自定义 Transport)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(url string, log logger.Logger, opts ...Option) *Client {
	if url == "" {
		log.Warn("webhook url is empty, webhook tier will always fall through")
	}
	c := &Client{
		url:     url,
		http:    &http.Client{Timeout: 10 * time.Second},
		retries: 1,
		delay:   500 * time.Millisecond,
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch 发送 {action, ...params}，返回数组中的原始元素
func (c *Client) Fetch(ctx context.Context, action string, params map[string]any) ([]json.RawMessage, error) {
	if c.url == "" {
		return nil, common.NewError(common.ErrCodeNotConfigured, "webhook url is empty")
	}

	payload := make(map[string]any, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["action"] = action

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "encode webhook payload", err)
	}

	var raw []byte
	err = common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if reqErr != nil {
			return common.Permanent(reqErr)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, postErr := c.http.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := fmt.Errorf("webhook status %d", resp.StatusCode)
			if resp.StatusCode < 500 {
				return common.Permanent(statusErr)
			}
			return statusErr
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return readErr
		}
		raw = data
		return nil
	},
		common.WithMaxRetries(c.retries),
		common.WithInitialDelay(c.delay),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeWebhook, "webhook "+action, err)
	}

	items, err := ExtractArray(raw)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeWebhook, "webhook "+action, err)
	}
	c.logger.Debug("webhook responded",
		logger.String("action", action),
		logger.Int("items", len(items)))
	return items, nil
}

// ExtractArray 接受裸数组，或带 tools / data 数组字段的对象；其它形状一律视为无数据
func ExtractArray(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrNoData
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		return items, nil
	case '{':
		var envelope struct {
			Tools json.RawMessage `json:"tools"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, err)
		}
		for _, field := range []json.RawMessage{envelope.Tools, envelope.Data} {
			field = bytes.TrimSpace(field)
			if len(field) > 0 && field[0] == '[' {
				var items []json.RawMessage
				if err := json.Unmarshal(field, &items); err == nil {
					return items, nil
				}
			}
		}
	}
	return nil, ErrNoData
}
