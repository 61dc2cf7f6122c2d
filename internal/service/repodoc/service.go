package repodoc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codedocapi/backend/config"
	"github.com/codedocapi/backend/internal/middleware"
	"github.com/codedocapi/backend/internal/model"
	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/repository"
	"github.com/codedocapi/backend/internal/service/prioritizer"
	"k8s.io/klog/v2"
)

var ErrAllFetchesFailed = errors.New("failed to fetch any repository files")

// GitHubClient 流水线所需的 GitHub 访问能力。
type GitHubClient interface {
	ListTree(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error)
	FetchContent(ctx context.Context, ref githubapi.RepoRef, path string) (string, error)
}

// DocWriter 最终文档写作能力。
type DocWriter interface {
	GenerateRepoDocs(ctx context.Context, prompt string) (string, error)
}

// Service GitHub 仓库文档生成流水线：
// 定位 → 清单 → 过滤 → 评分选取 → 抓取内容 → 装配提示词 → 生成文档。
// 每个请求独立执行，步骤间没有共享可变状态。
type Service struct {
	cfg     *config.Config
	gh      GitHubClient
	scorer  prioritizer.Scorer
	writer  DocWriter
	records repository.GenerationRepository // 为 nil 时关闭缓存
}

// New 创建仓库文档流水线服务。
func New(cfg *config.Config, gh GitHubClient, scorer prioritizer.Scorer, writer DocWriter, records repository.GenerationRepository) *Service {
	return &Service{
		cfg:     cfg,
		gh:      gh,
		scorer:  scorer,
		writer:  writer,
		records: records,
	}
}

// Result 一次生成的结果与过程信息。
type Result struct {
	Markdown  string        `json:"markdown"`
	RepoKey   string        `json:"repo_key"`
	TreeSHA   string        `json:"tree_sha"`
	FileCount int           `json:"file_count"`
	Skipped   []SkippedFile `json:"skipped,omitempty"`
	CacheHit  bool          `json:"cache_hit"`
}

// Generate 为 GitHub 仓库生成文档。
// maxFiles 非法时回退默认值并收敛到上限；URL 校验在任何网络访问之前完成。
func (s *Service) Generate(ctx context.Context, rawURL string, maxFiles int) (*Result, error) {
	ref, err := githubapi.ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	maxFiles = s.normalizeMaxFiles(maxFiles)
	klog.V(6).Infof("开始生成仓库文档: repo=%s, maxFiles=%d", ref.FullName(), maxFiles)

	tree, err := s.gh.ListTree(ctx, ref, githubapi.TreeOptions{
		MaxDepth: s.cfg.Process.MaxTreeDepth,
		PruneDir: SkipDir,
	})
	if err != nil {
		return nil, err
	}

	eligible := FilterEntries(tree.Entries)
	klog.V(6).Infof("文件过滤完成: repo=%s, total=%d, eligible=%d", ref.FullName(), len(tree.Entries), len(eligible))

	if len(eligible) == 0 {
		return &Result{
			Markdown: emptyResultMarkdown(ref, len(tree.Entries)),
			RepoKey:  ref.Key(),
			TreeSHA:  tree.SHA,
		}, nil
	}

	if cached := s.lookupCache(ref, tree.SHA, maxFiles); cached != nil {
		klog.V(6).Infof("缓存命中: repo=%s, treeSHA=%s", ref.FullName(), tree.SHA)
		return &Result{
			Markdown:  cached.Markdown,
			RepoKey:   ref.Key(),
			TreeSHA:   tree.SHA,
			FileCount: cached.FileCount,
			CacheHit:  true,
		}, nil
	}

	scores, err := s.scorer.Score(ctx, ref, eligible)
	if err != nil {
		// 评分环节不允许拖垮请求，退回启发式
		klog.V(6).Infof("评分失败，使用启发式评分: %v", err)
		scores, _ = prioritizer.NewHeuristicScorer().Score(ctx, ref, eligible)
	}
	selected := prioritizer.Select(eligible, scores, maxFiles)

	fetched, skipped := fetchContents(ctx, s.gh, ref, selected,
		s.cfg.Process.FileSizeCeiling, s.cfg.Process.FetchConcurrency)
	if len(fetched) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %d file(s) selected, all failed or skipped", ErrAllFetchesFailed, len(selected))
	}

	prompt := BuildPrompt(ref, fetched)
	body, err := s.writer.GenerateRepoDocs(ctx, prompt)
	if err != nil {
		return nil, err
	}

	markdown := finalizeMarkdown(ref, len(fetched), skipped, body, time.Now())
	s.storeRecord(ctx, ref, tree.SHA, maxFiles, len(fetched), markdown)

	return &Result{
		Markdown:  markdown,
		RepoKey:   ref.Key(),
		TreeSHA:   tree.SHA,
		FileCount: len(fetched),
		Skipped:   skipped,
	}, nil
}

func (s *Service) normalizeMaxFiles(maxFiles int) int {
	if maxFiles <= 0 {
		return s.cfg.Process.DefaultMaxFiles
	}
	if maxFiles > s.cfg.Process.MaxFilesCap {
		klog.V(6).Infof("maxFiles 超过上限，收敛: requested=%d, cap=%d", maxFiles, s.cfg.Process.MaxFilesCap)
		return s.cfg.Process.MaxFilesCap
	}
	return maxFiles
}

func (s *Service) lookupCache(ref githubapi.RepoRef, treeSHA string, maxFiles int) *model.GenerationRecord {
	if s.records == nil || treeSHA == "" {
		return nil
	}
	record, err := s.records.FindLatest(ref.Key(), treeSHA, maxFiles, s.cfg.LLM.Model)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			klog.V(6).Infof("缓存查询失败: %v", err)
		}
		return nil
	}
	if err := s.records.RecordHit(record.ID); err != nil {
		klog.V(6).Infof("记录缓存命中次数失败: %v", err)
	}
	return record
}

func (s *Service) storeRecord(ctx context.Context, ref githubapi.RepoRef, treeSHA string, maxFiles, fileCount int, markdown string) {
	if s.records == nil || treeSHA == "" {
		return
	}
	record := &model.GenerationRecord{
		RequestID: middleware.RequestIDFromContext(ctx),
		RepoKey:   ref.Key(),
		SourceURL: ref.SourceURL,
		TreeSHA:   treeSHA,
		MaxFiles:  maxFiles,
		Model:     s.cfg.LLM.Model,
		FileCount: fileCount,
		Markdown:  markdown,
	}
	if err := s.records.Create(record); err != nil {
		klog.V(6).Infof("写入生成记录失败: %v", err)
	}
}

// finalizeMarkdown 在模型输出前加上元信息头，并标注被跳过的文件。
func finalizeMarkdown(ref githubapi.RepoRef, fileCount int, skipped []SkippedFile, body string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Project Documentation\n\n", ref.FullName())
	fmt.Fprintf(&b, "**Generated on:** %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**AI Analysis:** %d files prioritized and analyzed\n", fileCount)
	if ref.Path != "" {
		fmt.Fprintf(&b, "**Path:** `%s`\n", ref.Path)
	}
	if len(skipped) > 0 {
		paths := make([]string, 0, len(skipped))
		for _, sk := range skipped {
			paths = append(paths, sk.Path)
		}
		fmt.Fprintf(&b, "**Note:** %d file(s) were skipped: %s\n", len(skipped), strings.Join(paths, ", "))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(body)
	return b.String()
}
