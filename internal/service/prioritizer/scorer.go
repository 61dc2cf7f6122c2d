package prioritizer

import (
	"context"
	"sort"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
)

// 评分取值范围，1 低 5 高。
const (
	MinScore = 1
	MaxScore = 5
)

// ScoredFile 带文档价值评分的候选文件。
type ScoredFile struct {
	githubapi.TreeEntry
	Score int `json:"score"`
}

// Scorer 文件文档价值评分能力。
// 两种实现：纯启发式与模型评分（失败时回退启发式），由配置选择。
type Scorer interface {
	Score(ctx context.Context, ref githubapi.RepoRef, files []githubapi.TreeEntry) (map[string]int, error)
}

// Select 按评分降序选出前 maxFiles 个文件。
// 同分保持输入顺序（稳定排序），评分缺失按最低分处理。
func Select(files []githubapi.TreeEntry, scores map[string]int, maxFiles int) []ScoredFile {
	scored := make([]ScoredFile, 0, len(files))
	for _, f := range files {
		score, ok := scores[f.Path]
		if !ok {
			score = MinScore
		}
		scored = append(scored, ScoredFile{TreeEntry: f, Score: clamp(score)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if maxFiles > 0 && len(scored) > maxFiles {
		scored = scored[:maxFiles]
	}
	return scored
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
