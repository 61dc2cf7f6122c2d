package githubapi

import (
	"fmt"
	"regexp"
	"strings"
)

// 支持的 GitHub URL 形式，依次匹配：
// 带路径的 tree/blob 地址优先（需要提取子路径），其余形式只取 owner/repo，
// 末尾的多余路径段被忽略。
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/tree/[^/]+/(.+?)/?$`),
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/blob/[^/]+/(.+?)/?$`),
	regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?(?:/.*)?$`),
}

// ParseRepoURL 从 GitHub URL 解析 owner/repo，纯函数，不做网络访问。
// 末尾的多余路径段与查询串被忽略；不匹配时返回 ErrInvalidRepositoryURL。
func ParseRepoURL(raw string) (RepoRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RepoRef{}, fmt.Errorf("%w: empty url", ErrInvalidRepositoryURL)
	}

	// 去掉查询串、锚点和末尾斜杠
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	trimmed = strings.TrimSuffix(trimmed, "/")

	for _, pattern := range urlPatterns {
		matches := pattern.FindStringSubmatch(trimmed)
		if matches == nil {
			continue
		}
		ref := RepoRef{
			Owner:     matches[1],
			Name:      matches[2],
			SourceURL: raw,
		}
		if len(matches) > 3 {
			ref.Path = matches[3]
		}
		return ref, nil
	}

	return RepoRef{}, fmt.Errorf("%w: %s", ErrInvalidRepositoryURL, raw)
}
