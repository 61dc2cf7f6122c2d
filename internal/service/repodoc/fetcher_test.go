package repodoc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/service/prioritizer"
)

type mockContentClient struct {
	mu        sync.Mutex
	calls     []string
	FetchFunc func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error)
}

func (m *mockContentClient) FetchContent(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ref, path)
	}
	return "content of " + path, nil
}

func scoredFiles(paths ...string) []prioritizer.ScoredFile {
	out := make([]prioritizer.ScoredFile, 0, len(paths))
	for _, p := range paths {
		out = append(out, prioritizer.ScoredFile{
			TreeEntry: githubapi.TreeEntry{Path: p, Size: 100},
			Score:     3,
		})
	}
	return out
}

func TestFetchContentsPreservesOrder(t *testing.T) {
	client := &mockContentClient{}
	files := scoredFiles("a.go", "b.go", "c.go")

	fetched, skipped := fetchContents(context.Background(), client, githubapi.RepoRef{Owner: "o", Name: "r"}, files, 0, 2)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped files: %+v", skipped)
	}
	if len(fetched) != 3 {
		t.Fatalf("expected 3 fetched files, got %d", len(fetched))
	}
	for i, want := range []string{"a.go", "b.go", "c.go"} {
		if fetched[i].Path != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, fetched[i].Path)
		}
		if fetched[i].Content != "content of "+want {
			t.Fatalf("content mismatched for %s: %q", want, fetched[i].Content)
		}
	}
}

func TestFetchContentsSkipsOversized(t *testing.T) {
	client := &mockContentClient{}
	files := scoredFiles("small.go", "huge.go")
	files[1].Size = 1 << 20

	fetched, skipped := fetchContents(context.Background(), client, githubapi.RepoRef{Owner: "o", Name: "r"}, files, 1024, 2)
	if len(fetched) != 1 || fetched[0].Path != "small.go" {
		t.Fatalf("expected only small.go fetched, got %+v", fetched)
	}
	if len(skipped) != 1 || skipped[0].Path != "huge.go" {
		t.Fatalf("expected huge.go skipped, got %+v", skipped)
	}
	if !strings.Contains(skipped[0].Reason, "too large") {
		t.Fatalf("unexpected skip reason: %s", skipped[0].Reason)
	}
	for _, p := range client.calls {
		if p == "huge.go" {
			t.Fatalf("oversized file must not be fetched")
		}
	}
}

func TestFetchContentsAbsorbsFailures(t *testing.T) {
	client := &mockContentClient{
		FetchFunc: func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
			if path == "broken.go" {
				return "", errors.New("boom")
			}
			return "ok", nil
		},
	}
	files := scoredFiles("good.go", "broken.go", "fine.go")

	fetched, skipped := fetchContents(context.Background(), client, githubapi.RepoRef{Owner: "o", Name: "r"}, files, 0, 2)
	if len(fetched) != 2 {
		t.Fatalf("expected 2 fetched files, got %+v", fetched)
	}
	if fetched[0].Path != "good.go" || fetched[1].Path != "fine.go" {
		t.Fatalf("unexpected fetched order: %+v", fetched)
	}
	if len(skipped) != 1 || skipped[0].Path != "broken.go" || skipped[0].Reason != "boom" {
		t.Fatalf("unexpected skipped: %+v", skipped)
	}
}

func TestFetchContentsAllFailed(t *testing.T) {
	client := &mockContentClient{
		FetchFunc: func(ctx context.Context, ref githubapi.RepoRef, path string) (string, error) {
			return "", errors.New("down")
		},
	}
	files := scoredFiles("a.go", "b.go")

	fetched, skipped := fetchContents(context.Background(), client, githubapi.RepoRef{Owner: "o", Name: "r"}, files, 0, 2)
	if len(fetched) != 0 {
		t.Fatalf("expected no fetched files, got %+v", fetched)
	}
	if len(skipped) != 2 {
		t.Fatalf("expected 2 skipped files, got %+v", skipped)
	}
}
