package entity

import (
	"time"
)

// TestTemplate представляет определение опросника (WHO-5, DISC и т.д.)
type TestTemplate struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Key         string     `gorm:"size:50;not null;uniqueIndex" json:"key"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"size:500;not null;default:''" json:"description"`
	Questions   []Question `gorm:"foreignKey:TemplateID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TestTemplate) TableName() string {
	return "test_templates"
}

// QuestionCount возвращает количество вопросов шаблона (если они загружены)
func (t *TestTemplate) QuestionCount() int {
	return len(t.Questions)
}

// HasBranching возвращает true, если хотя бы один вопрос шаблона условный
func (t *TestTemplate) HasBranching() bool {
	for i := range t.Questions {
		if t.Questions[i].IsConditional() {
			return true
		}
	}
	return false
}
