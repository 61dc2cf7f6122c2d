package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
	"github.com/codedocapi/backend/internal/service"
	"github.com/codedocapi/backend/internal/service/docwriter"
	"github.com/codedocapi/backend/internal/service/repodoc"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// CodeDocumentationRequest 粘贴代码请求。
type CodeDocumentationRequest struct {
	Code     string `json:"code"`
	IsBase64 bool   `json:"isBase64"`
}

// GitHubDocumentationRequest GitHub 仓库请求。
type GitHubDocumentationRequest struct {
	GitHubURL string `json:"github_url" binding:"required"`
	MaxFiles  int    `json:"max_files"`
}

// DocumentationResponse 统一的生成结果。
type DocumentationResponse struct {
	Markdown string `json:"markdown"`
}

type DocumentHandler struct {
	docService  *service.DocumentService
	repoService *repodoc.Service
	maxFilesCap int
}

func NewDocumentHandler(docService *service.DocumentService, repoService *repodoc.Service, maxFilesCap int) *DocumentHandler {
	return &DocumentHandler{
		docService:  docService,
		repoService: repoService,
		maxFilesCap: maxFilesCap,
	}
}

// Generate 处理 POST /docs/gen。
func (h *DocumentHandler) Generate(c *gin.Context) {
	var req CodeDocumentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	markdown, err := h.docService.GenerateFromCode(c.Request.Context(), req.Code, req.IsBase64)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DocumentationResponse{Markdown: markdown})
}

// GenerateFromUpload 处理 POST /docs/from-upload。
func (h *DocumentHandler) GenerateFromUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	markdown, err := h.docService.GenerateFromUpload(c.Request.Context(), fileHeader.Filename, content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DocumentationResponse{Markdown: markdown})
}

// GenerateFromGitHub 处理 POST /docs/from-github。
func (h *DocumentHandler) GenerateFromGitHub(c *gin.Context) {
	var req GitHubDocumentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxFiles < 0 || req.MaxFiles > h.maxFilesCap {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_files must be between 1 and " + strconv.Itoa(h.maxFilesCap)})
		return
	}

	result, err := h.repoService.Generate(c.Request.Context(), req.GitHubURL, req.MaxFiles)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, DocumentationResponse{Markdown: result.Markdown})
}

// writeError 把各层的哨兵错误映射到 HTTP 状态码。
func (h *DocumentHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) {
		// 客户端已断开，无需响应
		klog.V(6).Infof("请求被取消: %v", err)
		c.Abort()
		return
	}

	var rateErr *githubapi.RateLimitError

	switch {
	case errors.Is(err, githubapi.ErrInvalidRepositoryURL),
		errors.Is(err, service.ErrEmptyCode),
		errors.Is(err, service.ErrInvalidBase64),
		errors.Is(err, service.ErrNotTextFile),
		errors.Is(err, service.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, githubapi.ErrRepositoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, githubapi.ErrRateLimitExceeded):
		if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, docwriter.ErrQuotaExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, githubapi.ErrUpstreamUnavailable),
		errors.Is(err, docwriter.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, repodoc.ErrAllFetchesFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		klog.Errorf("文档生成失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
