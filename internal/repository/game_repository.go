package repository

import (
	"minority_game/internal/models"
	"minority_game/internal/storage"
)

type GameRepository interface {
	UpsertByCode(code string) (*models.Game, error)
	FindByCode(code string) (*models.Game, error)
}

type gameRepository struct {
	db *storage.PostgresDB
}

func NewGameRepository(db *storage.PostgresDB) GameRepository {
	return &gameRepository{db: db}
}

// UpsertByCode 依房間代碼取得或建立遊戲紀錄
func (r *gameRepository) UpsertByCode(code string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("code = ?", code).FirstOrCreate(&game, models.Game{Code: code}).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) FindByCode(code string) (*models.Game, error) {
	var game models.Game
	err := r.db.Where("code = ?", code).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}
