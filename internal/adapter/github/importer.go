package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aitool-hub/internal/common"
	"aitool-hub/internal/domain"
	"aitool-hub/internal/logger"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// Importer 实现了 port.ToolImporter 接口
type Importer struct {
	client       *github.Client
	log          logger.Logger
	nowFunc      func() time.Time
	perPage      int
	retries      int
	retryDelay   time.Duration
	checkCommits bool
}

type Option func(*Importer)

// WithBaseURL 指向其它 API 地址 (GitHub Enterprise 或测试服务器)，必须以 / 结尾
func WithBaseURL(raw string) Option {
	return func(i *Importer) {
		if u, err := url.Parse(raw); err == nil {
			i.client.BaseURL = u
		}
	}
}

// WithPerPage 每次搜索取前 n 个结果
func WithPerPage(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.perPage = n
		}
	}
}

func WithRetries(n int, delay time.Duration) Option {
	return func(i *Importer) {
		i.retries = n
		i.retryDelay = delay
	}
}

// WithCommitCheck 过滤掉只有 README 提交的仓库 (每个仓库额外消耗若干次 API 调用)
func WithCommitCheck(on bool) Option {
	return func(i *Importer) { i.checkCommits = on }
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.nowFunc = now }
}

// NewImporter 初始化 GitHub 客户端
// token: GitHub Personal Access Token (如果是空字符串，就是匿名访问，限制 60次/小时)
func NewImporter(token string, log logger.Logger, opts ...Option) *Importer {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}

	i := &Importer{
		client:     github.NewClient(hc),
		log:        log,
		nowFunc:    time.Now,
		perPage:    20,
		retries:    3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SearchTools 按 topic 搜索最近创建的仓库，转换成目录中的 Tool
// maxDaysOld <= 0 表示不限制创建时间
func (i *Importer) SearchTools(ctx context.Context, topic string, maxDaysOld int) ([]domain.Tool, error) {
	if topic == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "topic is required")
	}

	query := fmt.Sprintf("topic:%s", topic)
	if maxDaysOld > 0 {
		since := i.nowFunc().AddDate(0, 0, -maxDaysOld).Format("2006-01-02")
		query += " created:>" + since
	}
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: i.perPage},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = i.client.Search.Repositories(ctx, query, opts)
		return classify(apiErr)
	},
		common.WithMaxRetries(i.retries),
		common.WithInitialDelay(i.retryDelay),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", err)
	}

	repos := FilterByCreatedAt(result.Repositories, maxDaysOld, i.nowFunc())
	if i.checkCommits {
		repos = i.filterByRecentCommit(ctx, repos)
	}

	tools := make([]domain.Tool, 0, len(repos))
	for _, repo := range repos {
		tools = append(tools, i.toTool(repo))
	}
	i.log.Info("GitHub 导入完成",
		logger.String("topic", topic),
		logger.Int("found", len(result.Repositories)),
		logger.Int("kept", len(tools)),
	)
	return tools, nil
}

// toTool DTO 转换：GitHub 仓库 -> 目录条目，描述性字段留给补全管道
func (i *Importer) toTool(repo *github.Repository) domain.Tool {
	now := i.nowFunc()
	link := repo.GetHomepage()
	if link == "" {
		link = repo.GetHTMLURL()
	}

	category := "Developer Tools"
	if topics := repo.Topics; len(topics) > 0 {
		category = topics[0]
	}

	t := domain.Tool{
		ID:            fmt.Sprintf("github-%d", repo.GetID()), // 加上前缀防止冲突
		Name:          repo.GetName(),
		URL:           link,
		Category:      category,
		Description:   repo.GetDescription(),
		Logo:          repo.GetOwner().GetAvatarURL(),
		PricingModel:  "Open Source",
		LastVerified:  domain.NewDate(now),
		PublishedDate: domain.NewDate(repo.GetCreatedAt().Time),
		TrendScore:    StarGrowthRate(repo.GetStargazersCount(), repo.GetCreatedAt().Time, now),
	}
	t.Normalize()
	return t
}

// StarGrowthRate 每日 Star 增长速率 = stars / 存活天数
func StarGrowthRate(stars int, createdAt, now time.Time) float64 {
	daysAlive := now.Sub(createdAt).Hours() / 24
	if daysAlive <= 0 {
		return 0
	}
	return float64(stars) / daysAlive
}

// FilterByCreatedAt 过滤掉创建时间超过指定天数的项目
func FilterByCreatedAt(repos []*github.Repository, maxDaysOld int, now time.Time) []*github.Repository {
	if maxDaysOld <= 0 {
		return repos
	}
	maxAge := time.Duration(maxDaysOld) * 24 * time.Hour

	var filtered []*github.Repository
	for _, repo := range repos {
		if now.Sub(repo.GetCreatedAt().Time) <= maxAge {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// classify 4xx (限流除外) 不再重试
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return err
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
			return common.Permanent(err)
		}
	}
	return err
}
