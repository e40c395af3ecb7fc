package entity

import (
	"time"
)

// Операторы условий показа, используемые в дереве ветвления
const (
	ConditionOperatorLTE = "lte"
	ConditionOperatorGTE = "gte"
)

// ThresholdDirectionBoundary — граница инференции направления порога:
// значения <= 3 трактуются как верхняя граница (показать при ответе <= порога),
// значения > 3 — как нижняя (показать при ответе >= порога).
const ThresholdDirectionBoundary = 3

// Question представляет один вопрос внутри шаблона опросника.
// ShowIfQuestionID — обратная ссылка на другой вопрос того же шаблона,
// ответ на который открывает данный вопрос (порог в ShowIfValue).
type Question struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	TemplateID     uint    `gorm:"not null;index" json:"template_id"`
	Text           string  `gorm:"size:500;not null" json:"text"`
	Order          int     `gorm:"column:order;not null;default:0" json:"order"`
	MinValue       int     `gorm:"not null;default:1" json:"min_value"`
	MaxValue       int     `gorm:"not null;default:5" json:"max_value"`
	Weight         float64 `gorm:"not null;default:1" json:"weight"`
	DimensionPair  string  `gorm:"size:5;not null;default:''" json:"dimension_pair,omitempty"`
	PositiveLetter string  `gorm:"size:2;not null;default:''" json:"positive_letter,omitempty"`

	ShowIfQuestionID *uint `gorm:"index" json:"show_if_question_id,omitempty"`
	ShowIfValue      *int  `json:"show_if_value,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsConditional возвращает true, если показ вопроса зависит от другого вопроса
func (q *Question) IsConditional() bool {
	return q.ShowIfQuestionID != nil
}

// IsScored возвращает true, если вопрос участвует в подсчёте баллов
// (вес 0 означает чисто информационный вопрос)
func (q *Question) IsScored() bool {
	return q.Weight > 0
}

// HasDimension возвращает true, если вопрос входит в под-шкалу (например, "D" в DISC)
func (q *Question) HasDimension() bool {
	return q.DimensionPair != ""
}

// IsValidValue проверяет, попадает ли ответ в допустимый диапазон вопроса
func (q *Question) IsValidValue(value int) bool {
	return value >= q.MinValue && value <= q.MaxValue
}

// NormalizedValue приводит ответ к шкале 0..1.
// При вырожденном диапазоне (min == max) возвращает 0.
func (q *Question) NormalizedValue(value int) float64 {
	valueRange := q.MaxValue - q.MinValue
	if valueRange <= 0 {
		return 0.0
	}
	return float64(value-q.MinValue) / float64(valueRange)
}

// ConditionOperator возвращает оператор сравнения, выведенный из порога показа.
// Для безусловных вопросов возвращает пустую строку.
func (q *Question) ConditionOperator() string {
	if !q.IsConditional() {
		return ""
	}
	threshold := 0
	if q.ShowIfValue != nil {
		threshold = *q.ShowIfValue
	}
	if threshold <= ThresholdDirectionBoundary {
		return ConditionOperatorLTE
	}
	return ConditionOperatorGTE
}

// TextExcerpt возвращает усечённый текст вопроса для диагностических сообщений.
// Режем по рунам, чтобы не ломать многобайтовые символы.
func (q *Question) TextExcerpt(maxLen int) string {
	runes := []rune(q.Text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return q.Text
	}
	return string(runes[:maxLen]) + "..."
}
