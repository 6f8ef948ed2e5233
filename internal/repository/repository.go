package repository

import "minority_game/internal/storage"

type Repositories struct {
	Game     GameRepository
	Player   PlayerRepository
	Question QuestionRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Game:     NewGameRepository(db),
		Player:   NewPlayerRepository(db),
		Question: NewQuestionRepository(db),
	}
}
