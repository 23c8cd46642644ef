package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"date only", `"2024-05-20"`, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339", `"2024-05-20T08:30:00Z"`, time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"no zone", `"2024-05-20T08:30:00"`, time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC), false},
		{"empty string", `""`, time.Time{}, false},
		{"null", `null`, time.Time{}, false},
		{"garbage", `"last tuesday"`, time.Time{}, true},
		{"number", `20240520`, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(d.Time), "got %v", d.Time)
		})
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	tool := Tool{
		ID:            "t1",
		LastVerified:  NewDate(time.Date(2024, 5, 20, 8, 30, 0, 0, time.UTC)),
		PublishedDate: NewDate(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
	}
	data, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lastVerified":"2024-05-20T08:30:00Z"`)
	assert.Contains(t, string(data), `"publishedDate":"2024-05-01"`)

	data, err = json.Marshal(Tool{ID: "t2"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"publishedDate":null`)
}

func TestTool_DecodesDateOnlyFields(t *testing.T) {
	var tool Tool
	err := json.Unmarshal([]byte(`{"id":"w1","name":"Hook Tool","lastVerified":"2024-05-20","publishedDate":"2024-05-01"}`), &tool)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-20", tool.LastVerified.String())
	assert.Equal(t, 2024, tool.PublishedDate.Year())
}

func TestDate_YAML(t *testing.T) {
	var tool Tool
	require.NoError(t, yaml.Unmarshal([]byte("id: y1\npublishedDate: 2022-11-30\nlastVerified: 2026-09-30T10:00:00Z\n"), &tool))
	assert.Equal(t, "2022-11-30", tool.PublishedDate.String())
	assert.Equal(t, 10, tool.LastVerified.Hour())

	out, err := yaml.Marshal(Tool{ID: "y2", PublishedDate: tool.PublishedDate})
	require.NoError(t, err)
	assert.Contains(t, string(out), "2022-11-30")
	assert.NotContains(t, string(out), "lastVerified")
}
