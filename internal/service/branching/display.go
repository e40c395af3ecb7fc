package branching

import (
	"errors"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// DisplayController решает, какие вопросы показывать в попытке.
// Контроллер не хранит состояния: видимость пересчитывается с нуля при каждом
// вызове по полному списку вопросов и текущим ответам. Это осознанный выбор —
// инкрементальный кеш видимости приносит баги устаревания при поступлении
// новых ответов.
type DisplayController struct {
	deps *Dependencies
}

// NewDisplayController создает новый контроллер показа вопросов
func NewDisplayController(deps *Dependencies) *DisplayController {
	return &DisplayController{deps: deps}
}

// ShouldShow определяет, должен ли вопрос показываться при данных ответах.
// Безусловный вопрос виден всегда; условный — только после того, как
// гейтирующий вопрос отвечен и его значение проходит порог.
func (c *DisplayController) ShouldShow(question *entity.Question, responses []entity.Response) bool {
	if !question.IsConditional() {
		return true
	}

	// Ищем ответ на гейтирующий вопрос
	var gatingValue *int
	for i := range responses {
		if responses[i].QuestionID == *question.ShowIfQuestionID {
			value := responses[i].Value
			gatingValue = &value
			break
		}
	}

	if gatingValue == nil {
		return false // Гейтирующий вопрос ещё не отвечен
	}

	return EvaluateThreshold(gatingValue, question.ShowIfValue)
}

// VisibleQuestions возвращает видимые вопросы шаблона в порядке order
// при текущем наборе ответов. Результат пересчитывается заново при каждом
// вызове.
func (c *DisplayController) VisibleQuestions(templateID uint, responses []entity.Response) ([]entity.Question, error) {
	allQuestions, err := c.deps.QuestionRepo.GetByTemplateID(templateID)
	if err != nil {
		return nil, err
	}

	visible := make([]entity.Question, 0, len(allQuestions))
	for i := range allQuestions {
		if c.ShouldShow(&allQuestions[i], responses) {
			visible = append(visible, allQuestions[i])
		}
	}

	return visible, nil
}

// NextQuestion возвращает первый неотвеченный видимый вопрос попытки
// или nil, если все видимые вопросы отвечены (попытка завершена).
// Для несуществующей попытки возвращает nil без ошибки: перевод в 404 —
// забота вызывающего слоя.
func (c *DisplayController) NextQuestion(attemptID uint) (*entity.Question, error) {
	attempt, err := c.deps.AttemptRepo.GetByID(attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	responses, err := c.deps.ResponseRepo.GetByAttemptID(attemptID)
	if err != nil {
		return nil, err
	}

	answered := make(map[uint]struct{}, len(responses))
	for i := range responses {
		answered[responses[i].QuestionID] = struct{}{}
	}

	visible, err := c.VisibleQuestions(attempt.TemplateID, responses)
	if err != nil {
		return nil, err
	}

	// С каждым записанным ответом ранее скрытые вопросы могут стать видимыми
	// и попасть в эффективную последовательность — поэтому сканируем заново
	for i := range visible {
		if _, ok := answered[visible[i].ID]; !ok {
			return &visible[i], nil
		}
	}

	return nil, nil // Вопросов больше нет
}
