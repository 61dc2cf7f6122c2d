package prioritizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/pkg/llm"
	"github.com/codedocapi/backend/internal/utils"
	"k8s.io/klog/v2"
)

// ChatClient 评分所需的最小 LLM 能力。
type ChatClient interface {
	Chat(ctx context.Context, messages []llm.ChatMessage, temperature float64) (string, error)
}

// LLMScorer 模型评分器。
// 把文件清单交给模型打 1-5 分；任何失败（请求、解析）都回退到启发式评分，
// 不让评分环节拖垮整个请求。
type LLMScorer struct {
	client   ChatClient
	fallback Scorer
}

func NewLLMScorer(client ChatClient) *LLMScorer {
	return &LLMScorer{
		client:   client,
		fallback: NewHeuristicScorer(),
	}
}

const scoringTemperature = 0.2

func (s *LLMScorer) Score(ctx context.Context, ref githubapi.RepoRef, files []githubapi.TreeEntry) (map[string]int, error) {
	prompt, err := buildScoringPrompt(ref, files)
	if err != nil {
		klog.V(6).Infof("构建评分提示词失败，回退启发式: %v", err)
		return s.fallback.Score(ctx, ref, files)
	}

	content, err := s.client.Chat(ctx, []llm.ChatMessage{
		{Role: "user", Content: prompt},
	}, scoringTemperature)
	if err != nil {
		klog.V(6).Infof("模型评分失败，回退启发式: repo=%s, error=%v", ref.FullName(), err)
		return s.fallback.Score(ctx, ref, files)
	}

	rankings, err := parseRankings(content)
	if err != nil {
		klog.V(6).Infof("模型评分结果解析失败，回退启发式: %v", err)
		return s.fallback.Score(ctx, ref, files)
	}

	// 模型漏掉的文件用启发式补齐
	heuristic, _ := s.fallback.Score(ctx, ref, files)
	scores := make(map[string]int, len(files))
	for _, f := range files {
		if score, ok := rankings[f.Path]; ok {
			scores[f.Path] = clamp(score)
		} else {
			scores[f.Path] = heuristic[f.Path]
		}
	}

	klog.V(6).Infof("模型评分完成: repo=%s, ranked=%d/%d", ref.FullName(), len(rankings), len(files))
	return scores, nil
}

func buildScoringPrompt(ref githubapi.RepoRef, files []githubapi.TreeEntry) (string, error) {
	type fileSummary struct {
		Path string `json:"path"`
		Size int64  `json:"size"`
	}
	summary := make([]fileSummary, 0, len(files))
	for _, f := range files {
		summary = append(summary, fileSummary{Path: f.Path, Size: f.Size})
	}
	listing, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n\n", ref.FullName())
	b.WriteString("Analyze this repository structure and rank files by documentation importance:\n\n")
	b.WriteString("Files found:\n")
	b.Write(listing)
	b.WriteString(`

Rank each file on importance for documentation (1-5 scale):
5 = Core business logic (main APIs, key components, entry points)
4 = Important supporting code (utilities, services, components)
3 = Secondary code (helpers, configs with logic)
2 = Tests, examples, demos
1 = Build configs, package files

Return ONLY valid JSON in this exact format:
{
    "rankings": {
        "path/to/file.ext": 5,
        "another/file.js": 4
    }
}
`)
	return b.String(), nil
}

func parseRankings(content string) (map[string]int, error) {
	var parsed struct {
		Rankings map[string]int `json:"rankings"`
	}
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rankings: %w", err)
	}
	if len(parsed.Rankings) == 0 {
		return nil, fmt.Errorf("rankings missing from model output")
	}
	return parsed.Rankings, nil
}
