package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aitool-hub/internal/adapter/github"
	"aitool-hub/internal/config"
	"aitool-hub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func githubStub(t *testing.T, perPage *string, commitHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		*perPage = r.URL.Query().Get("per_page")
		fmt.Fprint(w, `{"total_count":2,"items":[
		  {"id":1,"name":"docs-only","html_url":"https://github.com/o/docs-only","created_at":"2026-10-10T00:00:00Z","owner":{"login":"o"}},
		  {"id":2,"name":"real","html_url":"https://github.com/o/real","created_at":"2026-10-10T00:00:00Z","owner":{"login":"o"}}
		]}`)
	})
	mux.HandleFunc("/repos/o/docs-only/commits", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(commitHits, 1)
		fmt.Fprint(w, `[{"sha":"d1"}]`)
	})
	mux.HandleFunc("/repos/o/docs-only/commits/d1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"d1","files":[{"filename":"README.md"}]}`)
	})
	mux.HandleFunc("/repos/o/real/commits", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(commitHits, 1)
		fmt.Fprint(w, `[{"sha":"r1"}]`)
	})
	mux.HandleFunc("/repos/o/real/commits/r1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"sha":"r1","files":[{"filename":"main.go"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewImporter_UsesGitHubSettings(t *testing.T) {
	tests := []struct {
		name        string
		commitCheck bool
		wantNames   []string
		wantHits    int32
	}{
		{name: "commit check on", commitCheck: true, wantNames: []string{"real"}, wantHits: 2},
		{name: "commit check off", commitCheck: false, wantNames: []string{"docs-only", "real"}, wantHits: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var perPage string
			var hits int32
			srv := githubStub(t, &perPage, &hits)

			cfg := &config.Config{GitHubPerPage: 7, GitHubCommitCheck: tt.commitCheck}
			imp := newImporter(cfg, logger.NewNop(),
				github.WithBaseURL(srv.URL+"/"),
				github.WithRetries(0, time.Millisecond),
			)

			tools, err := imp.SearchTools(context.Background(), "llm", 0)
			require.NoError(t, err)

			names := make([]string, 0, len(tools))
			for _, tool := range tools {
				names = append(names, tool.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, "7", perPage)
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&hits))
		})
	}
}
