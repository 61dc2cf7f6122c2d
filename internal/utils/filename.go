package utils

import (
	"strings"
	"time"
)

// SafeFilename 去掉文件名中的危险字符，连续下划线折叠为一个。
func SafeFilename(name string) string {
	const unsafe = `<>:"/\|?*`
	var b strings.Builder
	for _, ch := range name {
		if strings.ContainsRune(unsafe, ch) {
			b.WriteByte('_')
		} else {
			b.WriteRune(ch)
		}
	}

	result := b.String()
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	return strings.Trim(result, "_")
}

// TimestampFilename 生成 <prefix>_<yyyymmdd_HHMMSS><ext> 形式的文件名。
func TimestampFilename(prefix, ext string, now time.Time) string {
	return SafeFilename(prefix) + "_" + now.Format("20060102_150405") + ext
}
