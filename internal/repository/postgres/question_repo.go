package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает несколько вопросов одной вставкой
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByTemplateID возвращает все вопросы шаблона, отсортированные по полю order.
// order — зарезервированное слово Postgres, поэтому имя колонки в кавычках.
func (r *QuestionRepo) GetByTemplateID(templateID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("template_id = ?", templateID).
		Order(`"order"`).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// GetByIDs возвращает вопросы по списку идентификаторов
func (r *QuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	if len(ids) == 0 {
		return []entity.Question{}, nil
	}
	var questions []entity.Question
	err := r.db.Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update обновляет информацию о вопросе
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Question{}, id).Error
}

// CountByTemplateID возвращает число вопросов шаблона
func (r *QuestionRepo) CountByTemplateID(templateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Question{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}
