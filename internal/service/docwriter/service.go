package docwriter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/codedocapi/backend/config"
	"github.com/codedocapi/backend/internal/utils"
	"k8s.io/klog/v2"
)

var (
	ErrQuotaExceeded       = errors.New("llm provider quota exceeded")
	ErrUpstreamUnavailable = errors.New("llm provider unavailable")
	ErrEmptyDocument       = errors.New("generated document is empty")
)

const generationTemperature = 0.3

// chatModel 文档生成所需的最小模型能力，便于测试替换。
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Service 文档写作服务。
// 基于 Eino 的 OpenAI 兼容 ChatModel 实现，指向配置的端点
// （默认为 Gemini 的 OpenAI 兼容接口）。瞬时失败做有界退避重试。
type Service struct {
	model      chatModel
	maxRetries int
}

// New 创建文档写作服务实例。
func New(cfg config.LLMConfig) (*Service, error) {
	klog.V(6).Infof("创建文档写作服务: model=%s, baseURL=%s", cfg.Model, cfg.APIURL)

	modelConfig := &openai.ChatModelConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}
	if cfg.APIURL != "" {
		modelConfig.BaseURL = cfg.APIURL
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxTokens = &maxTokens
	}
	if cfg.Timeout > 0 {
		modelConfig.Timeout = cfg.Timeout
	}

	cm, err := openai.NewChatModel(context.Background(), modelConfig)
	if err != nil {
		klog.Errorf("创建 ChatModel 失败: %v", err)
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &Service{
		model:      cm,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// newWithModel 测试用构造。
func newWithModel(cm chatModel, maxRetries int) *Service {
	return &Service{model: cm, maxRetries: maxRetries}
}

// GenerateRepoDocs 根据装配好的仓库提示词生成项目文档。
func (s *Service) GenerateRepoDocs(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, repoDocSystemPrompt, prompt)
}

// GenerateSnippetDocs 为单段代码生成文档。
func (s *Service) GenerateSnippetDocs(ctx context.Context, code string) (string, error) {
	return s.generate(ctx, snippetDocSystemPrompt, code)
}

func (s *Service) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}

	var lastErr error
	attempts := s.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			klog.V(6).Infof("文档生成重试: attempt=%d/%d, backoff=%s", attempt+1, attempts, backoff)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := s.model.Generate(ctx, messages, model.WithTemperature(generationTemperature))
		if err != nil {
			lastErr = classifyErr(ctx, err)
			if errors.Is(lastErr, ErrUpstreamUnavailable) {
				continue
			}
			return "", lastErr
		}

		markdown := utils.StripMarkdownFence(resp.Content)
		if strings.TrimSpace(markdown) == "" {
			return "", ErrEmptyDocument
		}

		klog.V(6).Infof("文档生成完成: length=%d", len(markdown))
		return markdown, nil
	}

	return "", lastErr
}

// classifyErr 把模型调用错误归入配额或瞬时不可用两类。
func classifyErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
