package repository

import (
	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// ResponseRepository определяет методы для работы с ответами.
// Политика записи — upsert по паре (attempt_id, question_id): повторная
// отправка ответа на тот же вопрос перезаписывает значение.
type ResponseRepository interface {
	Upsert(response *entity.Response) error
	// GetByAttemptID возвращает ответы попытки в порядке записи
	GetByAttemptID(attemptID uint) ([]entity.Response, error)
	CountByAttemptID(attemptID uint) (int64, error)
}
