package repository

import (
	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	// GetByTemplateID возвращает все вопросы шаблона, отсортированные по полю order
	GetByTemplateID(templateID uint) ([]entity.Question, error)
	GetByIDs(ids []uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
	CountByTemplateID(templateID uint) (int64, error)
}
