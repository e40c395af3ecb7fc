package repository

import (
	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения
type AttemptRepository interface {
	Create(attempt *entity.TestAttempt) error
	GetByID(id uint) (*entity.TestAttempt, error)
	// UpdateScores фиксирует итоговые баллы и интерпретацию попытки
	UpdateScores(attempt *entity.TestAttempt) error
	GetByUserID(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error)
	// GetByTemplateID возвращает все попытки шаблона (для админ-экспорта)
	GetByTemplateID(templateID uint) ([]entity.TestAttempt, error)
	CountByTemplateID(templateID uint) (int64, error)
}
