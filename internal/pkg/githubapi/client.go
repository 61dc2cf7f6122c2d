package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/codedocapi/backend/config"
	"k8s.io/klog/v2"
)

// Client GitHub REST API 客户端。
// 未配置 token 时匿名访问，配置后用 Bearer 凭证提升速率限额。
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient 创建 GitHub API 客户端。
func NewClient(cfg config.GitHubConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.APIURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListTree 列出仓库默认分支下的全部文件。
// 优先走 git/trees 递归接口（单次调用）；清单被截断时回退到
// contents 接口的有界递归遍历。
func (c *Client) ListTree(ctx context.Context, ref RepoRef, opts TreeOptions) (*RepoTree, error) {
	branch, err := c.defaultBranch(ctx, ref)
	if err != nil {
		return nil, err
	}

	klog.V(6).Infof("拉取仓库文件清单: repo=%s, branch=%s", ref.FullName(), branch)

	var treeResp struct {
		SHA  string `json:"sha"`
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
			Size int64  `json:"size"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.baseURL, ref.Owner, ref.Name, url.PathEscape(branch))
	if err := c.getJSON(ctx, endpoint, &treeResp); err != nil {
		return nil, err
	}

	tree := &RepoTree{
		SHA:       treeResp.SHA,
		Branch:    branch,
		Truncated: treeResp.Truncated,
	}
	for _, item := range treeResp.Tree {
		if item.Type != "blob" {
			continue
		}
		if ref.Path != "" && !underPath(item.Path, ref.Path) {
			continue
		}
		tree.Entries = append(tree.Entries, TreeEntry{
			Path: item.Path,
			Size: item.Size,
			SHA:  item.SHA,
		})
	}

	if tree.Truncated {
		klog.V(6).Infof("trees 接口清单被截断，回退 contents 递归遍历: repo=%s", ref.FullName())
		entries, walkErr := c.walkContents(ctx, ref, ref.Path, 0, opts)
		if walkErr != nil {
			// 截断的清单仍可用，遍历失败不作为致命错误
			klog.V(6).Infof("contents 遍历失败，使用截断清单: %v", walkErr)
		} else {
			tree.Entries = entries
		}
	}

	return tree, nil
}

// FetchContent 抓取单个文件的原始内容。
func (c *Client) FetchContent(ctx context.Context, ref RepoRef, path string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, ref.Owner, ref.Name, escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.raw+json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return string(body), nil
}

// defaultBranch 查询仓库元信息获取默认分支。
func (c *Client) defaultBranch(ctx context.Context, ref RepoRef) (string, error) {
	var repoResp struct {
		DefaultBranch string `json:"default_branch"`
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, ref.Owner, ref.Name)
	if err := c.getJSON(ctx, endpoint, &repoResp); err != nil {
		return "", err
	}
	if repoResp.DefaultBranch == "" {
		return "main", nil
	}
	return repoResp.DefaultBranch, nil
}

// walkContents 通过 contents 接口递归收集文件，深度受限。
// 剪枝由调用方通过 opts.PruneDir 提供，省去无意义的 API 调用。
func (c *Client) walkContents(ctx context.Context, ref RepoRef, path string, depth int, opts TreeOptions) ([]TreeEntry, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 8
	}
	if depth >= maxDepth {
		return nil, nil
	}

	var items []struct {
		Name string `json:"name"`
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
		SHA  string `json:"sha"`
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.baseURL, ref.Owner, ref.Name, escapePath(path))
	if err := c.getJSON(ctx, endpoint, &items); err != nil {
		return nil, err
	}

	var entries []TreeEntry
	for _, item := range items {
		switch item.Type {
		case "file":
			entries = append(entries, TreeEntry{
				Path: item.Path,
				Size: item.Size,
				SHA:  item.SHA,
			})
		case "dir":
			if opts.PruneDir != nil && opts.PruneDir(item.Name) {
				continue
			}
			sub, err := c.walkContents(ctx, ref, item.Path, depth+1, opts)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				// 单个目录失败不终止整体遍历
				klog.V(6).Infof("遍历目录失败，跳过: path=%s, error=%v", item.Path, err)
				continue
			}
			entries = append(entries, sub...)
		}
	}
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// statusError 按 GitHub 的状态码与限流响应头归类错误。
func (c *Client) statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrRepositoryNotFound
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if isRateLimited(resp) {
			return &RateLimitError{RetryAfter: retryAfter(resp)}
		}
		return fmt.Errorf("github api forbidden: status=%d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status=%d", ErrUpstreamUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("github api error: status=%d", resp.StatusCode)
	}
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if reset, err := strconv.ParseInt(v, 10, 64); err == nil {
			if wait := time.Until(time.Unix(reset, 0)); wait > 0 {
				return wait
			}
		}
	}
	return 0
}

// escapePath 对路径逐段转义，保留分隔符。
func escapePath(path string) string {
	if path == "" {
		return ""
	}
	u := &url.URL{Path: path}
	return u.EscapedPath()
}

// underPath 判断 p 是否位于 base 目录下（或等于 base）。
func underPath(p, base string) bool {
	if p == base {
		return true
	}
	return len(p) > len(base) && p[:len(base)] == base && p[len(base)] == '/'
}
