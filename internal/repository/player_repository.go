package repository

import (
	"errors"

	"gorm.io/gorm"

	"minority_game/internal/models"
	"minority_game/internal/storage"
)

type PlayerRepository interface {
	FindOrCreateByName(name string) (*models.PlayerRecord, error)
}

type playerRepository struct {
	db *storage.PostgresDB
}

func NewPlayerRepository(db *storage.PostgresDB) PlayerRepository {
	return &playerRepository{db: db}
}

// FindOrCreateByName 依名稱取得玩家紀錄，不分大小寫
// 找不到時建立新紀錄，讓同名玩家重複使用同一個身份
func (r *playerRepository) FindOrCreateByName(name string) (*models.PlayerRecord, error) {
	var record models.PlayerRecord
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = models.PlayerRecord{Name: name}
	if err := r.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
