package repository

import (
	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// TemplateRepository определяет методы для работы с шаблонами опросников
type TemplateRepository interface {
	Create(template *entity.TestTemplate) error
	GetByID(id uint) (*entity.TestTemplate, error)
	GetByKey(key string) (*entity.TestTemplate, error)
	GetByKeyWithQuestions(key string) (*entity.TestTemplate, error)
	List() ([]entity.TestTemplate, error)
	Update(template *entity.TestTemplate) error
	Delete(id uint) error
}
