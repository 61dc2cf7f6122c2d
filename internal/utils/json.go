package utils

import (
	"strings"
)

// ExtractJSON 从文本中提取第一个配平的 JSON 对象。
// 模型输出常带 ```json 围栏或前后说明文字，这里只取花括号配平的部分。
func ExtractJSON(content string) string {
	start := -1
	end := -1
	depth := 0

	for i, ch := range content {
		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
		} else if ch == '}' {
			depth--
			if depth == 0 && start != -1 {
				end = i + 1
				break
			}
		}
	}

	if start >= 0 && end > start {
		return content[start:end]
	}

	return content
}

// StripMarkdownFence 去掉模型输出外层的 ```markdown / ``` 围栏。
// 没有围栏时原样返回。
func StripMarkdownFence(content string) string {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```markdown") {
		trimmed = strings.TrimSpace(trimmed[len("```markdown"):])
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(trimmed[3:])
	} else {
		return trimmed
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(trimmed[:len(trimmed)-3])
	}
	return trimmed
}
