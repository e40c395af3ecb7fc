package dto

import (
	"time"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	"github.com/yourusername/wellbeing-api/internal/service"
	"github.com/yourusername/wellbeing-api/internal/service/branching"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Поля условия показа отдаются как есть: клиент показывает вопросы строго
// по команде сервера и сам условия не оценивает.
type QuestionResponse struct {
	ID               uint    `json:"id"`
	TemplateID       uint    `json:"template_id"`
	Text             string  `json:"text"`
	Order            int     `json:"order"`
	MinValue         int     `json:"min_value"`
	MaxValue         int     `json:"max_value"`
	Weight           float64 `json:"weight"`
	DimensionPair    string  `json:"dimension_pair,omitempty"`
	PositiveLetter   string  `json:"positive_letter,omitempty"`
	ShowIfQuestionID *uint   `json:"show_if_question_id,omitempty"`
	ShowIfValue      *int    `json:"show_if_value,omitempty"`
}

// TemplateResponse представляет шаблон опросника в формате для ответа клиенту
type TemplateResponse struct {
	ID          uint               `json:"id"`
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Questions   []QuestionResponse `json:"questions,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// AttemptResponse представляет попытку в формате для ответа клиенту
type AttemptResponse struct {
	ID              uint       `json:"id"`
	TemplateID      uint       `json:"template_id"`
	RawScore        float64    `json:"raw_score"`
	NormalizedScore float64    `json:"normalized_score"`
	Interpretation  string     `json:"interpretation,omitempty"`
	IsCompleted     bool       `json:"is_completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StartAttemptResponse — ответ на создание попытки
type StartAttemptResponse struct {
	Attempt      AttemptResponse   `json:"attempt"`
	NextQuestion *QuestionResponse `json:"next_question"`
}

// NextQuestionResponse — ответ на запрос следующего вопроса
type NextQuestionResponse struct {
	Question   *QuestionResponse `json:"question"`
	IsComplete bool              `json:"is_complete"`
}

// SubmitAnswerResponse — ответ на запись одного ответа
type SubmitAnswerResponse struct {
	NextQuestion *QuestionResponse   `json:"next_question"`
	Progress     *branching.Progress `json:"progress"`
	IsComplete   bool                `json:"is_complete"`
}

// PaginatedAttemptsResponse — пагинированный список попыток пользователя
type PaginatedAttemptsResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:               q.ID,
		TemplateID:       q.TemplateID,
		Text:             q.Text,
		Order:            q.Order,
		MinValue:         q.MinValue,
		MaxValue:         q.MaxValue,
		Weight:           q.Weight,
		DimensionPair:    q.DimensionPair,
		PositiveLetter:   q.PositiveLetter,
		ShowIfQuestionID: q.ShowIfQuestionID,
		ShowIfValue:      q.ShowIfValue,
	}
}

// NewTemplateResponse создает DTO для шаблона
func NewTemplateResponse(t *entity.TestTemplate, withQuestions bool) *TemplateResponse {
	resp := &TemplateResponse{
		ID:          t.ID,
		Key:         t.Key,
		Name:        t.Name,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
	if withQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(t.Questions))
		for i := range t.Questions {
			resp.Questions = append(resp.Questions, *NewQuestionResponse(&t.Questions[i]))
		}
	}
	return resp
}

// NewListTemplateResponse создает DTO для списка шаблонов
func NewListTemplateResponse(templates []entity.TestTemplate) []*TemplateResponse {
	resp := make([]*TemplateResponse, 0, len(templates))
	for i := range templates {
		resp = append(resp, NewTemplateResponse(&templates[i], false))
	}
	return resp
}

// NewAttemptResponse создает DTO для попытки
func NewAttemptResponse(a *entity.TestAttempt) AttemptResponse {
	return AttemptResponse{
		ID:              a.ID,
		TemplateID:      a.TemplateID,
		RawScore:        a.RawScore,
		NormalizedScore: a.NormalizedScore,
		Interpretation:  a.Interpretation,
		IsCompleted:     a.IsCompleted(),
		CompletedAt:     a.CompletedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// NewSubmitAnswerResponse создает DTO для результата записи ответа
func NewSubmitAnswerResponse(result *service.SubmitResult) *SubmitAnswerResponse {
	return &SubmitAnswerResponse{
		NextQuestion: NewQuestionResponse(result.NextQuestion),
		Progress:     result.Progress,
		IsComplete:   result.IsComplete,
	}
}
