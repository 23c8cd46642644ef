package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

// 依次尝试的写法：旧数据只有日期，新数据是完整时间戳
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", DateLayout}

// Date 同时接受 "2006-01-02" 与 RFC3339，零值序列化为 null
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

// ParseDate 空字符串得到零值
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// String 整天的值只输出日期部分
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	if d.Equal(d.Truncate(24*time.Hour)) && d.Location() == time.UTC {
		return d.Format(DateLayout)
	}
	return d.Format(time.RFC3339)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
