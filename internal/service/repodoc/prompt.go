package repodoc

import (
	"fmt"
	"strings"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
)

// BuildPrompt 把仓库标识、文件清单和逐文件内容拼成一个提示词。
// 每个文件用 "=== path (priority N/5) ===" 分隔，模型可以把内容归属到路径。
// 相同输入产出相同结果。
func BuildPrompt(ref githubapi.RepoRef, files []FetchedFile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Repository: %s\n", ref.FullName())
	if ref.Path != "" {
		fmt.Fprintf(&b, "Path: %s\n", ref.Path)
	}

	b.WriteString("\nPROJECT STRUCTURE:\n")
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s (priority %d/5)\n", i+1, f.Path, f.Score)
	}

	b.WriteString("\nCODEBASE CONTENT:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "\n=== %s (priority %d/5) ===\n%s\n", f.Path, f.Score, f.Content)
	}

	return b.String()
}

// emptyResultMarkdown 过滤后没有可文档化文件时返回的说明文档。
// 这是正常结果而不是错误。
func emptyResultMarkdown(ref githubapi.RepoRef, totalFiles int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Project Documentation\n\n", ref.FullName())
	b.WriteString("No documentable files were found in this repository.\n\n")
	fmt.Fprintf(&b, "%d file(s) were listed, but all of them matched the exclusion rules ", totalFiles)
	b.WriteString("(dependency directories, build output, lock files, binary assets).\n")
	return b.String()
}
