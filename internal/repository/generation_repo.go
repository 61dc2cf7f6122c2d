package repository

import (
	"errors"

	"github.com/codedocapi/backend/internal/model"
	"gorm.io/gorm"
)

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Create(record *model.GenerationRecord) error {
	return r.db.Create(record).Error
}

func (r *generationRepository) FindLatest(repoKey, treeSHA string, maxFiles int, modelName string) (*model.GenerationRecord, error) {
	var record model.GenerationRecord
	err := r.db.Where("repo_key = ? AND tree_sha = ? AND max_files = ? AND model = ?",
		repoKey, treeSHA, maxFiles, modelName).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *generationRepository) RecordHit(id uint) error {
	return r.db.Model(&model.GenerationRecord{}).
		Where("id = ?", id).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}

func (r *generationRepository) ListByRepo(repoKey string, limit int) ([]model.GenerationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []model.GenerationRecord
	err := r.db.Where("repo_key = ?", repoKey).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
