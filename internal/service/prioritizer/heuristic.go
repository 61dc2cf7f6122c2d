package prioritizer

import (
	"context"
	"path"
	"strings"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
)

// sourceExtensions 主要源码后缀，对应原始项目支持的语言集合。
var sourceExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".cs": true,
	".php": true, ".rb": true, ".go": true, ".rs": true, ".kt": true,
	".scala": true, ".swift": true, ".dart": true, ".r": true, ".sql": true,
}

// entrypointNames 根目录下的入口文件名（不含后缀）。
var entrypointNames = map[string]bool{
	"main": true, "index": true, "app": true, "server": true, "cli": true,
}

// HeuristicScorer 纯启发式评分器，无网络访问，确定性。
// 根目录入口与 README 最高，浅层源码次之，测试/示例再次，构建配置最低。
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Score(_ context.Context, _ githubapi.RepoRef, files []githubapi.TreeEntry) (map[string]int, error) {
	scores := make(map[string]int, len(files))
	for _, f := range files {
		scores[f.Path] = scoreFile(f.Path)
	}
	return scores, nil
}

func scoreFile(filePath string) int {
	base := path.Base(filePath)
	ext := strings.ToLower(path.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, ext))
	depth := strings.Count(filePath, "/")

	// 根目录 README 与入口文件是文档的第一素材
	if depth == 0 && strings.HasPrefix(strings.ToLower(base), "readme") {
		return 5
	}
	if entrypointNames[stem] && sourceExtensions[ext] {
		if depth == 0 {
			return 5
		}
		return 4
	}

	if isTestPath(filePath, stem) {
		return 2
	}

	if sourceExtensions[ext] {
		if depth <= 1 {
			return 4
		}
		return 3
	}

	switch ext {
	case ".md", ".txt":
		return 3
	case ".yaml", ".yml", ".toml", ".json", ".ini":
		// 配置文件通常只有结构没有逻辑
		return 2
	}

	return 1
}

func isTestPath(filePath, stem string) bool {
	lower := strings.ToLower(filePath)
	if strings.Contains(lower, "test/") || strings.Contains(lower, "tests/") ||
		strings.Contains(lower, "__tests__/") || strings.Contains(lower, "examples/") {
		return true
	}
	return strings.HasSuffix(stem, "_test") || strings.HasSuffix(stem, ".test") ||
		strings.HasSuffix(stem, ".spec") || strings.HasPrefix(stem, "test_")
}
