package repodoc

import (
	"path"
	"strings"

	"github.com/codedocapi/backend/internal/pkg/githubapi"
)

// skipDirectories 依赖、构建产物与工具目录，不参与文档生成。
var skipDirectories = map[string]bool{
	".git": true, ".github": true, "node_modules": true, "__pycache__": true,
	".vscode": true, "dist": true, "build": true, "target": true, "out": true,
	".idea": true, "logs": true, "tmp": true, ".next": true, ".nuxt": true,
	"coverage": true, ".pytest_cache": true, "vendor": true,
	".env": true, ".venv": true, "venv": true, "env": true,
}

// skipExtensions 二进制、图片与压缩产物后缀。
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".bmp": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".bin": true,
	".pdf": true, ".pyc": true, ".class": true, ".o": true, ".a": true,
	".mp3": true, ".mp4": true, ".wav": true, ".avi": true,
	".db": true, ".sqlite": true,
}

// skipFilenames 锁文件等结构性文件，对文档没有价值。
var skipFilenames = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"go.sum": true, "cargo.lock": true, "poetry.lock": true, "gemfile.lock": true,
	"composer.lock": true, ".ds_store": true,
}

// FilterEntries 按固定排除规则过滤文件清单。
// 纯函数、确定性、幂等；结果可能为空，空不是错误。
func FilterEntries(entries []githubapi.TreeEntry) []githubapi.TreeEntry {
	var kept []githubapi.TreeEntry
	for _, entry := range entries {
		if Excluded(entry.Path) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

// Excluded 判断路径是否命中排除规则。
func Excluded(filePath string) bool {
	for _, segment := range strings.Split(path.Dir(filePath), "/") {
		if SkipDir(segment) {
			return true
		}
	}

	base := strings.ToLower(path.Base(filePath))
	if skipFilenames[base] {
		return true
	}
	if skipExtensions[strings.ToLower(path.Ext(base))] {
		return true
	}
	// 压缩后的前端产物
	if strings.HasSuffix(base, ".min.js") || strings.HasSuffix(base, ".min.css") ||
		strings.HasSuffix(base, ".map") {
		return true
	}
	return false
}

// SkipDir 判断目录名是否在排除清单中，供 contents 遍历剪枝复用。
func SkipDir(name string) bool {
	return skipDirectories[strings.ToLower(name)]
}
