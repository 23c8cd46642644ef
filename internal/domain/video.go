package domain

// VideoSource 播放源类型
type VideoSource string

const (
	// SourcePlatform 托管平台上的视频，通过 11 位平台 ID 播放
	SourcePlatform VideoSource = "platform"
	// SourceUpload 管理员上传的文件
	SourceUpload VideoSource = "upload"
)

// PlatformIDLength 平台视频 ID 固定长度
const PlatformIDLength = 11

// VideoNotFoundMarker 搜索不到视频时模型必须原样返回的标记
const VideoNotFoundMarker = "NOT_FOUND"

// Video 教程视频
type Video struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string      `json:"category,omitempty" yaml:"category,omitempty"`
	Source      VideoSource `json:"source" yaml:"source" validate:"omitempty,oneof=platform upload"`
	PlatformID  string      `json:"platformId,omitempty" yaml:"platformId,omitempty"`
	BlobURL     string      `json:"blobUrl,omitempty" yaml:"blobUrl,omitempty"`
	SearchQuery string      `json:"searchQuery,omitempty" yaml:"searchQuery,omitempty"`
	Duration    string      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Thumbnail   string      `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

func (v Video) GetID() string { return v.ID }

func (v Video) WithID(id string) Video {
	v.ID = id
	return v
}

// NeedsResolution 平台视频缺少 ID 时，首次播放需要先解析
func (v *Video) NeedsResolution() bool {
	src := v.Source
	if src == "" {
		src = SourcePlatform
	}
	return src == SourcePlatform && v.PlatformID == ""
}

// ResolveQuery 用于解析平台 ID 的搜索词
func (v *Video) ResolveQuery() string {
	if v.SearchQuery != "" {
		return v.SearchQuery
	}
	return v.Title
}

// ValidPlatformID 必须正好 11 位，且只包含 [A-Za-z0-9_-]
func ValidPlatformID(s string) bool {
	if len(s) != PlatformIDLength {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
