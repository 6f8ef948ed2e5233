package service

import (
	"errors"

	"gorm.io/gorm"

	"minority_game/internal/models"
	"minority_game/internal/repository"
)

// QuestionService 從題庫供應回合題目
type QuestionService struct {
	questionRepo repository.QuestionRepository
}

func NewQuestionService(questionRepo repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// GetQuestion 隨機取得一道未出過的題目
// 整個題庫都出過時退回完整題庫重抽，題庫全空才回報錯誤
func (s *QuestionService) GetQuestion(excludeIDs map[uint]bool) (*models.Question, error) {
	ids := make([]uint, 0, len(excludeIDs))
	for id, excluded := range excludeIDs {
		if excluded {
			ids = append(ids, id)
		}
	}

	question, err := s.questionRepo.FindRandomExcluding(ids)
	if err == nil {
		return question, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	question, err = s.questionRepo.FindRandomExcluding(nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoQuestions
		}
		return nil, err
	}
	return question, nil
}

// EnsureDefaultQuestions 題庫為空時寫入預設題組，讓新部署能直接開局
func (s *QuestionService) EnsureDefaultQuestions(defaults []models.Question) error {
	count, err := s.questionRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 || len(defaults) == 0 {
		return nil
	}
	return s.questionRepo.CreateBatch(defaults)
}
