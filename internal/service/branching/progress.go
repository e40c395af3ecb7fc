package branching

import (
	"errors"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// ProgressTracker оценивает продвижение пользователя по попытке.
// Итоговое число вопросов заранее неизвестно: будущие ответы могут открыть
// условные ветки, поэтому трекер даёт оценку, которая монотонно уточняется
// по мере ответов и никогда не показывает больше 100%.
type ProgressTracker struct {
	deps    *Dependencies
	display *DisplayController
}

// NewProgressTracker создает новый трекер прогресса
func NewProgressTracker(deps *Dependencies) *ProgressTracker {
	return &ProgressTracker{
		deps:    deps,
		display: NewDisplayController(deps),
	}
}

// Progress — снимок продвижения по попытке
type Progress struct {
	Percentage          float64 `json:"percentage"`
	AnsweredCount       int     `json:"answered_count"`
	TotalQuestions      int     `json:"total_questions"`
	VisibleQuestions    int     `json:"visible_questions"`
	PotentialAdditional int     `json:"potential_additional"`
	IsComplete          bool    `json:"is_complete"`
}

// PathItem — один пройденный вопрос в хронологии попытки
type PathItem struct {
	QuestionID     uint   `json:"question_id"`
	Order          int    `json:"order"`
	Text           string `json:"text"`
	ResponseValue  int    `json:"response_value"`
	WasConditional bool   `json:"was_conditional"`
	ConditionMet   bool   `json:"condition_met"`
}

// Progress возвращает текущий снимок продвижения по попытке.
// Оценка общего числа вопросов: max(видимые сейчас, отвеченные + 1) —
// пока есть неотвеченный видимый вопрос, знаменатель не даст 100%.
func (t *ProgressTracker) Progress(attemptID uint) (*Progress, error) {
	attempt, err := t.deps.AttemptRepo.GetByID(attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &Progress{}, nil
		}
		return nil, err
	}

	responses, err := t.deps.ResponseRepo.GetByAttemptID(attemptID)
	if err != nil {
		return nil, err
	}

	questions, err := t.deps.QuestionRepo.GetByTemplateID(attempt.TemplateID)
	if err != nil {
		return nil, err
	}

	visibleCount := 0
	hiddenConditional := 0
	for i := range questions {
		if t.display.ShouldShow(&questions[i], responses) {
			visibleCount++
		} else if questions[i].IsConditional() {
			hiddenConditional++
		}
	}

	answeredCount := len(responses)

	next, err := t.display.NextQuestion(attemptID)
	if err != nil {
		return nil, err
	}

	// Консервативная оценка общего числа вопросов: знаменатель всегда
	// хотя бы на единицу больше отвеченного
	estimatedTotal := visibleCount
	if answeredCount+1 > estimatedTotal {
		estimatedTotal = answeredCount + 1
	}

	percentage := 0.0
	if estimatedTotal > 0 {
		percentage = float64(answeredCount) / float64(estimatedTotal) * 100
	}
	if percentage > 100 {
		percentage = 100
	}

	return &Progress{
		Percentage:          percentage,
		AnsweredCount:       answeredCount,
		TotalQuestions:      estimatedTotal,
		VisibleQuestions:    visibleCount,
		PotentialAdditional: hiddenConditional,
		IsComplete:          next == nil,
	}, nil
}

// QuestionPath возвращает пройденный путь по попытке: отвеченные вопросы
// в порядке их следования в шаблоне. Записанный ответ по построению
// означает, что условие показа было выполнено в момент ответа.
func (t *ProgressTracker) QuestionPath(attemptID uint) ([]PathItem, error) {
	attempt, err := t.deps.AttemptRepo.GetByID(attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []PathItem{}, nil
		}
		return nil, err
	}

	responses, err := t.deps.ResponseRepo.GetByAttemptID(attemptID)
	if err != nil {
		return nil, err
	}
	responseValues := entity.ResponseValueMap(responses)

	questions, err := t.deps.QuestionRepo.GetByTemplateID(attempt.TemplateID)
	if err != nil {
		return nil, err
	}

	path := make([]PathItem, 0, len(responses))
	for i := range questions {
		value, answered := responseValues[questions[i].ID]
		if !answered {
			continue
		}
		path = append(path, PathItem{
			QuestionID:     questions[i].ID,
			Order:          questions[i].Order,
			Text:           questions[i].Text,
			ResponseValue:  value,
			WasConditional: questions[i].IsConditional(),
			ConditionMet:   true,
		})
	}

	return path, nil
}
