package repository

import (
	"minority_game/internal/models"
	"minority_game/internal/storage"
)

type QuestionRepository interface {
	FindRandomExcluding(excludeIDs []uint) (*models.Question, error)
	Count() (int64, error)
	CreateBatch(questions []models.Question) error
}

type questionRepository struct {
	db *storage.PostgresDB
}

func NewQuestionRepository(db *storage.PostgresDB) QuestionRepository {
	return &questionRepository{db: db}
}

// FindRandomExcluding 隨機取得一道題目並帶出選項，排除指定的題目 ID
// 排除後沒有任何題目時回傳 gorm.ErrRecordNotFound，由上層決定是否退回完整題庫
func (r *questionRepository) FindRandomExcluding(excludeIDs []uint) (*models.Question, error) {
	var question models.Question
	query := r.db.Preload("Options").Order("RANDOM()")
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if err := query.First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Count(&count).Error
	return count, err
}

// CreateBatch 批次建立題目，用於初始化預設題庫
func (r *questionRepository) CreateBatch(questions []models.Question) error {
	return r.db.Create(&questions).Error
}
