package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codedocapi/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// DownloadRequest 下载请求，内容由前端携带此前生成的 Markdown。
type DownloadRequest struct {
	MarkdownContent string `json:"markdown_content"`
	FilenamePrefix  string `json:"filename_prefix"`
	SourceType      string `json:"source_type"` // code, file, github
}

type DownloadHandler struct{}

func NewDownloadHandler() *DownloadHandler {
	return &DownloadHandler{}
}

// Download 处理 POST /docs/download。
// 响应体与传入内容逐字节一致，文件名为 <prefix>_<yyyymmdd_HHMMSS>.md。
func (h *DownloadHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if strings.TrimSpace(req.MarkdownContent) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "markdown content cannot be empty"})
		return
	}

	prefix := req.FilenamePrefix
	if prefix == "" {
		prefix = "documentation"
	}
	filename := utils.TimestampFilename(prefix, ".md", time.Now())

	klog.V(6).Infof("下载文档: filename=%s, source=%s, length=%d", filename, req.SourceType, len(req.MarkdownContent))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(req.MarkdownContent))
}
