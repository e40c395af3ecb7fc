package entity

import (
	"time"
)

// Response представляет один записанный ответ внутри попытки.
// Пара (attempt_id, question_id) уникальна: повторная отправка ответа на тот
// же вопрос перезаписывает значение (upsert), дубликаты не накапливаются.
type Response struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AttemptID  uint      `gorm:"not null;uniqueIndex:idx_responses_attempt_question" json:"attempt_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_responses_attempt_question" json:"question_id"`
	Value      int       `gorm:"not null" json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Response) TableName() string {
	return "responses"
}

// ResponseValueMap строит карту question_id -> значение ответа.
// Используется движком ветвления для оценки составных правил.
func ResponseValueMap(responses []Response) map[uint]int {
	values := make(map[uint]int, len(responses))
	for i := range responses {
		values[responses[i].QuestionID] = responses[i].Value
	}
	return values
}
