package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/codedocapi/backend/config"
	"k8s.io/klog/v2"
)

var (
	ErrEmptyCode     = errors.New("code cannot be empty")
	ErrInvalidBase64 = errors.New("failed to decode base64 content")
	ErrNotTextFile   = errors.New("file could not be decoded as text")
	ErrFileTooLarge  = errors.New("file too large")
)

// SnippetWriter 单段代码文档写作能力。
type SnippetWriter interface {
	GenerateSnippetDocs(ctx context.Context, code string) (string, error)
}

// DocumentService 处理粘贴代码与上传文件两条输入通道。
type DocumentService struct {
	cfg    *config.Config
	writer SnippetWriter
}

func NewDocumentService(cfg *config.Config, writer SnippetWriter) *DocumentService {
	return &DocumentService{
		cfg:    cfg,
		writer: writer,
	}
}

// GenerateFromCode 为一段代码生成文档，isBase64 为真时先解码。
func (s *DocumentService) GenerateFromCode(ctx context.Context, code string, isBase64 bool) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyCode
	}

	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(code)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
		if !utf8.Valid(decoded) {
			return "", ErrNotTextFile
		}
		code = string(decoded)
	}

	klog.V(6).Infof("生成代码片段文档: length=%d", len(code))
	return s.writer.GenerateSnippetDocs(ctx, code)
}

// GenerateFromUpload 为上传文件生成文档。
// 先校验大小与 UTF-8 可读性，再走片段生成通道。
func (s *DocumentService) GenerateFromUpload(ctx context.Context, filename string, content []byte) (string, error) {
	if maxSize := s.cfg.Process.MaxFileSize; maxSize > 0 && int64(len(content)) > maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(content), maxSize)
	}
	if !utf8.Valid(content) {
		return "", ErrNotTextFile
	}

	klog.V(6).Infof("生成上传文件文档: filename=%s, size=%d", filename, len(content))
	return s.GenerateFromCode(ctx, string(content), false)
}
