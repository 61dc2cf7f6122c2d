package model

import (
	"time"
)

// GenerationRecord 一次 GitHub 仓库文档生成的缓存记录。
// 以 repo_key + tree_sha + max_files + model 唯一确定仓库状态下的产物。
type GenerationRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RequestID string    `json:"request_id" gorm:"size:64;index"` // 产生该记录的请求ID（UUID）
	RepoKey   string    `json:"repo_key" gorm:"size:500;index;not null"`
	SourceURL string    `json:"source_url" gorm:"size:500;not null"`
	TreeSHA   string    `json:"tree_sha" gorm:"size:64;index;not null"`
	MaxFiles  int       `json:"max_files" gorm:"not null"`
	Model     string    `json:"model" gorm:"size:100;not null"`
	FileCount int       `json:"file_count" gorm:"default:0"` // 实际进入提示词的文件数
	Markdown  string    `json:"markdown" gorm:"type:text"`
	HitCount  int       `json:"hit_count" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
