package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Upsert записывает ответ с политикой "последний выигрывает": конфликт по
// уникальной паре (attempt_id, question_id) перезаписывает значение.
// Гонка двух конкурентных запросов разрешается на уровне БД без ошибки.
func (r *ResponseRepo) Upsert(response *entity.Response) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      response.Value,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(response).Error
}

// GetByAttemptID возвращает ответы попытки в порядке записи
func (r *ResponseRepo) GetByAttemptID(attemptID uint) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("attempt_id = ?", attemptID).
		Order("id").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// CountByAttemptID возвращает число записанных ответов попытки
func (r *ResponseRepo) CountByAttemptID(attemptID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Response{}).
		Where("attempt_id = ?", attemptID).
		Count(&count).Error
	return count, err
}
