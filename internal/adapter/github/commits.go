package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"aitool-hub/internal/common"
	"aitool-hub/internal/logger"

	"github.com/google/go-github/v53/github"
)

const maxCommitsToCheck = 10 // 检查最近10个提交

// filterByRecentCommit 过滤掉仅有 README 提交的仓库
// 无法判断时 (URL 解析失败、API 出错) 保守地保留
func (i *Importer) filterByRecentCommit(ctx context.Context, repos []*github.Repository) []*github.Repository {
	filtered := make([]*github.Repository, 0, len(repos))

	for _, repo := range repos {
		owner, name, ok := ownerAndName(repo)
		if !ok {
			i.log.Warn("无法解析仓库URL，保留该项目", logger.String("url", repo.GetHTMLURL()))
			filtered = append(filtered, repo)
			continue
		}

		hasRealCommit, err := i.hasNonReadmeCommit(ctx, owner, name)
		if err != nil {
			i.log.Warn("检查提交时出错，保留该项目",
				logger.String("repo", owner+"/"+name), logger.Error(err))
			filtered = append(filtered, repo)
			continue
		}

		if hasRealCommit {
			filtered = append(filtered, repo)
		} else {
			i.log.Info("过滤掉仅有README提交的仓库", logger.String("repo", owner+"/"+name))
		}
	}
	return filtered
}

// ownerAndName 优先使用 API 返回的字段，其次解析 https://github.com/owner/repo
func ownerAndName(repo *github.Repository) (string, string, bool) {
	if owner, name := repo.GetOwner().GetLogin(), repo.GetName(); owner != "" && name != "" {
		return owner, name, true
	}
	u, err := url.Parse(repo.GetHTMLURL())
	if err != nil || u.Host != "github.com" {
		return "", "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// hasNonReadmeCommit 返回 true 表示有实际代码提交，false 表示只有README提交
func (i *Importer) hasNonReadmeCommit(ctx context.Context, owner, name string) (bool, error) {
	commits, _, err := i.client.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: maxCommitsToCheck},
	})
	if err != nil {
		return false, fmt.Errorf("获取提交列表失败: %w", err)
	}

	for _, commit := range commits {
		hasNonReadme, err := i.commitHasNonReadmeChanges(ctx, owner, name, commit.GetSHA())
		if err != nil {
			i.log.Debug("检查提交出错", logger.String("sha", commit.GetSHA()), logger.Error(err))
			continue
		}
		if hasNonReadme {
			return true, nil
		}
	}
	// 没有提交，或所有提交都只修改了README
	return false, nil
}

// commitHasNonReadmeChanges 检查单个提交是否包含非README文件的修改
func (i *Importer) commitHasNonReadmeChanges(ctx context.Context, owner, name, sha string) (bool, error) {
	var commit *github.RepositoryCommit
	err := common.Do(ctx, func() error {
		var apiErr error
		commit, _, apiErr = i.client.Repositories.GetCommit(ctx, owner, name, sha, nil)
		return classify(apiErr)
	}, common.WithMaxRetries(min(i.retries, 2)), common.WithInitialDelay(i.retryDelay/2))
	if err != nil {
		return false, fmt.Errorf("获取提交详情失败 (SHA: %s): %w", sha, err)
	}

	if commit == nil || len(commit.Files) == 0 {
		// 没有文件变更信息，保守地认为有实际提交
		return true, nil
	}

	for _, file := range commit.Files {
		if file.Filename == nil {
			continue
		}
		if !isReadmeFile(*file.Filename) {
			return true, nil
		}
	}
	return false, nil
}

var readmeNames = map[string]bool{
	"readme":          true,
	"readme.md":       true,
	"readme.txt":      true,
	"readme.rst":      true,
	"readme.markdown": true,
	"readme.mdown":    true,
	"readme.mkdn":     true,
}

// isReadmeFile 判断文件名是否为README相关文件，包括子目录中的 (docs/README.md)
func isReadmeFile(filename string) bool {
	lower := strings.ToLower(filename)
	if i := strings.LastIndex(lower, "/"); i >= 0 {
		lower = lower[i+1:]
	}
	return readmeNames[lower]
}
