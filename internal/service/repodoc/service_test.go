package repodoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codedocapi/backend/config"
	"github.com/codedocapi/backend/internal/model"
	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/repository"
	"github.com/codedocapi/backend/internal/service/prioritizer"
)

type mockGitHubClient struct {
	ListTreeFunc     func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error)
	FetchContentFunc func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error)
	listCalls        int
	fetchCalls       int
}

func (m *mockGitHubClient) ListTree(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
	m.listCalls++
	if m.ListTreeFunc != nil {
		return m.ListTreeFunc(ctx, ref, opts)
	}
	return &githubapi.RepoTree{SHA: "tree1", Branch: "main"}, nil
}

func (m *mockGitHubClient) FetchContent(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
	m.fetchCalls++
	if m.FetchContentFunc != nil {
		return m.FetchContentFunc(ctx, ref, path)
	}
	return "content of " + path, nil
}

type mockWriter struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
	lastPrompt   string
}

func (m *mockWriter) GenerateRepoDocs(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "generated documentation body", nil
}

type mockRecordRepo struct {
	records []model.GenerationRecord
	hits    []uint
}

func (m *mockRecordRepo) Create(record *model.GenerationRecord) error {
	record.ID = uint(len(m.records) + 1)
	m.records = append(m.records, *record)
	return nil
}

func (m *mockRecordRepo) FindLatest(repoKey, treeSHA string, maxFiles int, modelName string) (*model.GenerationRecord, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.RepoKey == repoKey && r.TreeSHA == treeSHA && r.MaxFiles == maxFiles && r.Model == modelName {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockRecordRepo) RecordHit(id uint) error {
	m.hits = append(m.hits, id)
	return nil
}

func (m *mockRecordRepo) ListByRepo(repoKey string, limit int) ([]model.GenerationRecord, error) {
	return m.records, nil
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Model: "gemma-3-12b-it"},
		Process: config.ProcessConfig{
			DefaultMaxFiles:  10,
			MaxFilesCap:      50,
			FileSizeCeiling:  262144,
			FetchConcurrency: 2,
			MaxTreeDepth:     8,
		},
	}
}

func treeWith(paths ...string) *githubapi.RepoTree {
	tree := &githubapi.RepoTree{SHA: "tree1", Branch: "main"}
	for _, p := range paths {
		tree.Entries = append(tree.Entries, githubapi.TreeEntry{Path: p, Size: 100, SHA: "s-" + p})
	}
	return tree
}

func TestGenerate(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("README.md", "main.go", "node_modules/react.js", "go.sum"), nil
		},
	}
	writer := &mockWriter{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, nil)

	result, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if result.FileCount != 2 {
		t.Fatalf("expected 2 analyzed files, got %d", result.FileCount)
	}
	if result.RepoKey != "github.com/foo/bar" {
		t.Fatalf("unexpected repo key: %s", result.RepoKey)
	}
	if result.TreeSHA != "tree1" {
		t.Fatalf("unexpected tree sha: %s", result.TreeSHA)
	}
	if result.CacheHit {
		t.Fatalf("expected cache miss")
	}

	if !strings.Contains(result.Markdown, "# foo/bar - Project Documentation") {
		t.Fatalf("missing metadata title:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "**Generated on:**") {
		t.Fatalf("missing generated-on line:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "**AI Analysis:** 2 files prioritized and analyzed") {
		t.Fatalf("missing analysis line:\n%s", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "generated documentation body") {
		t.Fatalf("missing model body:\n%s", result.Markdown)
	}

	// 被排除的文件不进入提示词
	if strings.Contains(writer.lastPrompt, "node_modules") || strings.Contains(writer.lastPrompt, "go.sum") {
		t.Fatalf("excluded files leaked into prompt:\n%s", writer.lastPrompt)
	}
}

func TestGenerateRespectsMaxFiles(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("README.md", "main.go", "a.go", "b.go", "c.go"), nil
		},
	}
	writer := &mockWriter{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, nil)

	result, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 2)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if result.FileCount != 2 {
		t.Fatalf("expected 2 files, got %d", result.FileCount)
	}
	if gh.fetchCalls != 2 {
		t.Fatalf("expected 2 content fetches, got %d", gh.fetchCalls)
	}
}

func TestGenerateInvalidURLBeforeNetwork(t *testing.T) {
	gh := &mockGitHubClient{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), &mockWriter{}, nil)

	_, err := svc.Generate(context.Background(), "https://example.com/not/github", 10)
	if !errors.Is(err, githubapi.ErrInvalidRepositoryURL) {
		t.Fatalf("expected ErrInvalidRepositoryURL, got %v", err)
	}
	if gh.listCalls != 0 || gh.fetchCalls != 0 {
		t.Fatalf("no network access expected on invalid url")
	}
}

func TestGenerateEmptyEligibleSet(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("node_modules/a.js", "dist/bundle.js"), nil
		},
	}
	writer := &mockWriter{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, nil)

	result, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if err != nil {
		t.Fatalf("expected success with explanatory document, got %v", err)
	}
	if !strings.Contains(result.Markdown, "No documentable files") {
		t.Fatalf("missing explanation:\n%s", result.Markdown)
	}
	if writer.calls != 0 {
		t.Fatalf("writer must not be called for empty eligible set")
	}
}

func TestGenerateAllFetchesFailed(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go", "util.go"), nil
		},
		FetchContentFunc: func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
			return "", errors.New("fetch failed")
		},
	}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), &mockWriter{}, nil)

	_, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if !errors.Is(err, ErrAllFetchesFailed) {
		t.Fatalf("expected ErrAllFetchesFailed, got %v", err)
	}
}

func TestGeneratePartialFetchFailure(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go", "broken.go"), nil
		},
		FetchContentFunc: func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
			if path == "broken.go" {
				return "", errors.New("boom")
			}
			return "ok", nil
		},
	}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), &mockWriter{}, nil)

	result, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if result.FileCount != 1 {
		t.Fatalf("expected 1 analyzed file, got %d", result.FileCount)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Path != "broken.go" {
		t.Fatalf("unexpected skipped list: %+v", result.Skipped)
	}
	if !strings.Contains(result.Markdown, "**Note:** 1 file(s) were skipped: broken.go") {
		t.Fatalf("missing skip note:\n%s", result.Markdown)
	}
}

func TestGenerateWriterError(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go"), nil
		},
	}
	wantErr := errors.New("model unavailable")
	writer := &mockWriter{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", wantErr
		},
	}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, nil)

	_, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected writer error passthrough, got %v", err)
	}
}

func TestGenerateCaching(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go"), nil
		},
	}
	writer := &mockWriter{}
	records := &mockRecordRepo{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, records)

	first, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if err != nil {
		t.Fatalf("first Generate error: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("first call must be a cache miss")
	}
	if len(records.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(records.records))
	}

	second, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 10)
	if err != nil {
		t.Fatalf("second Generate error: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("second call must hit the cache")
	}
	if second.Markdown != first.Markdown {
		t.Fatalf("cached markdown differs from stored one")
	}
	if writer.calls != 1 {
		t.Fatalf("writer must run once, ran %d times", writer.calls)
	}
	if len(records.hits) != 1 {
		t.Fatalf("expected 1 recorded hit, got %d", len(records.hits))
	}
}

func TestGenerateCacheMissOnDifferentMaxFiles(t *testing.T) {
	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go", "util.go"), nil
		},
	}
	writer := &mockWriter{}
	records := &mockRecordRepo{}
	svc := New(testConfig(), gh, prioritizer.NewHeuristicScorer(), writer, records)

	if _, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 1); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if _, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 2); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if writer.calls != 2 {
		t.Fatalf("different maxFiles must not share cache entries, writer ran %d times", writer.calls)
	}
}

func TestGenerateMaxFilesNormalization(t *testing.T) {
	cfg := testConfig()
	cfg.Process.DefaultMaxFiles = 1
	cfg.Process.MaxFilesCap = 2

	gh := &mockGitHubClient{
		ListTreeFunc: func(ctx context.Context, ref githubapi.RepoRef, opts githubapi.TreeOptions) (*githubapi.RepoTree, error) {
			return treeWith("main.go", "a.go", "b.go"), nil
		},
	}
	svc := New(cfg, gh, prioritizer.NewHeuristicScorer(), &mockWriter{}, nil)

	// 0 回退默认值
	result, err := svc.Generate(context.Background(), "https://github.com/foo/bar", 0)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if result.FileCount != 1 {
		t.Fatalf("expected default max files 1, got %d", result.FileCount)
	}

	// 超过上限收敛
	result, err = svc.Generate(context.Background(), "https://github.com/foo/bar", 100)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if result.FileCount != 2 {
		t.Fatalf("expected cap 2, got %d", result.FileCount)
	}
}
