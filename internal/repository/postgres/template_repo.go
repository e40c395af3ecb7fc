package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// TemplateRepo реализует repository.TemplateRepository
type TemplateRepo struct {
	db *gorm.DB
}

// NewTemplateRepo создает новый репозиторий шаблонов опросников
func NewTemplateRepo(db *gorm.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// Create создает новый шаблон
func (r *TemplateRepo) Create(template *entity.TestTemplate) error {
	return r.db.Create(template).Error
}

// GetByID возвращает шаблон по ID
func (r *TemplateRepo) GetByID(id uint) (*entity.TestTemplate, error) {
	var template entity.TestTemplate
	err := r.db.First(&template, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByKey возвращает шаблон по символьному ключу
func (r *TemplateRepo) GetByKey(key string) (*entity.TestTemplate, error) {
	var template entity.TestTemplate
	err := r.db.Where("key = ?", key).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByKeyWithQuestions возвращает шаблон вместе с вопросами в порядке order
func (r *TemplateRepo) GetByKeyWithQuestions(key string) (*entity.TestTemplate, error) {
	var template entity.TestTemplate
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order(`"order"`)
	}).Where("key = ?", key).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// List возвращает все шаблоны
func (r *TemplateRepo) List() ([]entity.TestTemplate, error) {
	var templates []entity.TestTemplate
	err := r.db.Order("id").Find(&templates).Error
	return templates, err
}

// Update обновляет информацию о шаблоне
func (r *TemplateRepo) Update(template *entity.TestTemplate) error {
	return r.db.Save(template).Error
}

// Delete удаляет шаблон
func (r *TemplateRepo) Delete(id uint) error {
	return r.db.Delete(&entity.TestTemplate{}, id).Error
}
