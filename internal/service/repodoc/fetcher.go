package repodoc

import (
	"context"
	"fmt"
	"sync"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/service/prioritizer"
	"github.com/panjf2000/ants/v2"
	"k8s.io/klog/v2"
)

// FetchedFile 已取到内容的文件，保留评分与清单信息。
type FetchedFile struct {
	prioritizer.ScoredFile
	Content string `json:"content"`
}

// SkippedFile 被跳过的文件及原因（超限或抓取失败）。
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ContentClient 内容抓取所需的最小 GitHub 能力。
type ContentClient interface {
	FetchContent(ctx context.Context, ref githubapi.RepoRef, path string) (string, error)
}

// fetchContents 并发抓取选中文件的内容，单文件失败只记录不中断。
// 结果按输入顺序写回固定下标，文件身份与顺序不受并发影响。
// 超过 ceiling 的文件直接跳过（不截断），保证进入提示词的内容完整可归属。
func fetchContents(ctx context.Context, client ContentClient, ref githubapi.RepoRef, files []prioritizer.ScoredFile, ceiling int64, concurrency int) ([]FetchedFile, []SkippedFile) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*FetchedFile, len(files))
	failures := make([]*SkippedFile, len(files))

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		klog.Errorf("创建抓取协程池失败，退化为串行: %v", err)
		pool = nil
	} else {
		defer pool.Release()
	}

	var wg sync.WaitGroup
	for i, f := range files {
		if ceiling > 0 && f.Size > ceiling {
			failures[i] = &SkippedFile{
				Path:   f.Path,
				Reason: fmt.Sprintf("file too large (%d bytes, ceiling %d)", f.Size, ceiling),
			}
			klog.V(6).Infof("文件超过大小上限，跳过: path=%s, size=%d", f.Path, f.Size)
			continue
		}

		idx, file := i, f
		task := func() {
			defer wg.Done()
			content, fetchErr := client.FetchContent(ctx, ref, file.Path)
			if fetchErr != nil {
				klog.V(6).Infof("抓取文件内容失败: path=%s, error=%v", file.Path, fetchErr)
				failures[idx] = &SkippedFile{Path: file.Path, Reason: fetchErr.Error()}
				return
			}
			results[idx] = &FetchedFile{ScoredFile: file, Content: content}
		}

		wg.Add(1)
		if pool != nil {
			if submitErr := pool.Submit(task); submitErr != nil {
				task()
			}
		} else {
			task()
		}
	}
	wg.Wait()

	var fetched []FetchedFile
	var skipped []SkippedFile
	for i := range files {
		if results[i] != nil {
			fetched = append(fetched, *results[i])
		} else if failures[i] != nil {
			skipped = append(skipped, *failures[i])
		}
	}
	return fetched, skipped
}
