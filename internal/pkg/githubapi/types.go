package githubapi

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRepositoryURL = errors.New("invalid github repository url")
	ErrRepositoryNotFound   = errors.New("repository not found")
	ErrRateLimitExceeded    = errors.New("github api rate limit exceeded")
	ErrUpstreamUnavailable  = errors.New("github api unavailable")
)

// RepoRef 仓库定位信息，由输入 URL 解析一次得到，之后不再变化。
type RepoRef struct {
	Owner     string `json:"owner"`
	Name      string `json:"name"`
	Path      string `json:"path"` // 可选的子目录（tree/blob 形式 URL 携带）
	SourceURL string `json:"source_url"`
}

// Key 返回仓库的稳定标识，用作缓存键的一部分。
func (r RepoRef) Key() string {
	return fmt.Sprintf("github.com/%s/%s", r.Owner, r.Name)
}

func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// TreeEntry 仓库文件清单中的一项（仅 blob）。
type TreeEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

// RepoTree 默认分支的文件清单。
type RepoTree struct {
	SHA       string      `json:"sha"` // tree SHA，标识仓库当前状态
	Branch    string      `json:"branch"`
	Entries   []TreeEntry `json:"entries"`
	Truncated bool        `json:"truncated"`
}

// RateLimitError 速率限制错误，携带建议的重试等待时间。
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("github api rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "github api rate limit exceeded"
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}

// TreeOptions 控制 contents 递归回退的行为。
type TreeOptions struct {
	MaxDepth int
	PruneDir func(name string) bool // 返回 true 时跳过该目录，省 API 调用
}
