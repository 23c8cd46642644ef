package domain

// ChatRole 对话角色
type ChatRole string

const (
	ChatUser  ChatRole = "user"
	ChatModel ChatRole = "model"
)

// ChatMessage 工作室对话中的一条消息。Partial 表示流被中断，内容不完整。
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Text    string   `json:"text"`
	Partial bool     `json:"partial,omitempty"`
}
