package entity

import (
	"time"
)

// TestAttempt представляет одно прохождение шаблона пользователем
type TestAttempt struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	TemplateID      uint       `gorm:"not null;index" json:"template_id"`
	RawScore        float64    `gorm:"not null;default:0" json:"raw_score"`
	NormalizedScore float64    `gorm:"not null;default:0" json:"normalized_score"`
	Interpretation  string     `gorm:"size:500;not null;default:''" json:"interpretation"`
	CompletedAt     *time.Time `gorm:"type:timestamp" json:"completed_at,omitempty"`
	Responses       []Response `gorm:"foreignKey:AttemptID" json:"responses,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TestAttempt) TableName() string {
	return "test_attempts"
}

// IsCompleted возвращает true, если попытка завершена и баллы зафиксированы
func (a *TestAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}
