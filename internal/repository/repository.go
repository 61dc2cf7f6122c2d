package repository

import (
	"errors"

	"github.com/codedocapi/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type GenerationRepository interface {
	Create(record *model.GenerationRecord) error
	// FindLatest 查找指定仓库状态下的最新缓存记录，未命中返回 ErrNotFound。
	FindLatest(repoKey, treeSHA string, maxFiles int, modelName string) (*model.GenerationRecord, error)
	RecordHit(id uint) error
	ListByRepo(repoKey string, limit int) ([]model.GenerationRecord, error)
}
