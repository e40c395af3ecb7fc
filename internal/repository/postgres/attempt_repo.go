package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток прохождения
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create создает новую попытку
func (r *AttemptRepo) Create(attempt *entity.TestAttempt) error {
	return r.db.Create(attempt).Error
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.TestAttempt, error) {
	var attempt entity.TestAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// UpdateScores точечно фиксирует итоговые баллы, интерпретацию и момент
// завершения попытки без полного Save
func (r *AttemptRepo) UpdateScores(attempt *entity.TestAttempt) error {
	return r.db.Model(&entity.TestAttempt{}).
		Where("id = ?", attempt.ID).
		Updates(map[string]interface{}{
			"raw_score":        attempt.RawScore,
			"normalized_score": attempt.NormalizedScore,
			"interpretation":   attempt.Interpretation,
			"completed_at":     attempt.CompletedAt,
		}).Error
}

// GetByUserID возвращает попытки пользователя с пагинацией и total count
func (r *AttemptRepo) GetByUserID(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error) {
	var attempts []entity.TestAttempt
	var total int64

	query := r.db.Model(&entity.TestAttempt{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// GetByTemplateID возвращает все попытки шаблона для админ-экспорта
func (r *AttemptRepo) GetByTemplateID(templateID uint) ([]entity.TestAttempt, error) {
	var attempts []entity.TestAttempt
	err := r.db.Where("template_id = ?", templateID).
		Order("id").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// CountByTemplateID возвращает число попыток шаблона
func (r *AttemptRepo) CountByTemplateID(templateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.TestAttempt{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}
