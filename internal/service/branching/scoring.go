package branching

import (
	"errors"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

// ScoreCalculator вычисляет баллы попытки по фактически записанным ответам.
// Пропущенные ветвлением вопросы не создают ответов и потому не участвуют
// в подсчёте — в этом весь смысл скоринга после ветвления, а не по
// фиксированному набору вопросов.
type ScoreCalculator struct {
	deps *Dependencies
}

// NewScoreCalculator создает новый калькулятор баллов
func NewScoreCalculator(deps *Dependencies) *ScoreCalculator {
	return &ScoreCalculator{deps: deps}
}

// DimensionScore — накопленный результат по одной под-шкале
type DimensionScore struct {
	RawScore        float64 `json:"raw_score"`
	NormalizedScore float64 `json:"normalized_score"`
	TotalWeight     float64 `json:"total_weight"`
	QuestionCount   int     `json:"question_count"`
	PositiveLetter  string  `json:"positive_letter"`
}

// RawAndNormalized возвращает сырой и нормализованный (0-100) баллы попытки.
// Функция тотальна: несуществующая попытка и попытка без ответов дают (0, 0),
// что позволяет вызывать её спекулятивно для предпросмотра прогресса.
func (c *ScoreCalculator) RawAndNormalized(attemptID uint) (float64, float64, error) {
	responses, questionMap, err := c.loadResponsesWithQuestions(attemptID)
	if err != nil {
		return 0.0, 0.0, err
	}
	if len(responses) == 0 {
		return 0.0, 0.0, nil
	}

	totalWeightedScore := 0.0
	totalWeight := 0.0

	for i := range responses {
		question := questionMap[responses[i].QuestionID]
		if question == nil {
			continue
		}
		totalWeightedScore += question.NormalizedValue(responses[i].Value) * question.Weight
		totalWeight += question.Weight
	}

	rawScore := totalWeightedScore
	normalizedScore := 0.0
	if totalWeight > 0 {
		normalizedScore = totalWeightedScore / totalWeight * 100
	}

	return rawScore, normalizedScore, nil
}

// DimensionalScores группирует взвешенный подсчёт по под-шкалам
// (dimension_pair). Вопросы без под-шкалы сюда не входят, но продолжают
// учитываться в общем балле RawAndNormalized. Каждая группа нормализуется
// независимо, поэтому результат по шкале "D" не зависит от остальных шкал.
func (c *ScoreCalculator) DimensionalScores(attemptID uint) (map[string]DimensionScore, error) {
	responses, questionMap, err := c.loadResponsesWithQuestions(attemptID)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]DimensionScore)
	if len(responses) == 0 {
		return scores, nil
	}

	for i := range responses {
		question := questionMap[responses[i].QuestionID]
		if question == nil || !question.HasDimension() {
			continue
		}

		dim := scores[question.DimensionPair]
		if dim.QuestionCount == 0 {
			dim.PositiveLetter = question.PositiveLetter
		}
		dim.RawScore += question.NormalizedValue(responses[i].Value) * question.Weight
		dim.TotalWeight += question.Weight
		dim.QuestionCount++
		scores[question.DimensionPair] = dim
	}

	for key, dim := range scores {
		if dim.TotalWeight > 0 {
			dim.NormalizedScore = dim.RawScore / dim.TotalWeight * 100
		}
		scores[key] = dim
	}

	return scores, nil
}

// loadResponsesWithQuestions загружает ответы попытки вместе с их вопросами.
// Для несуществующей попытки возвращает пустой результат без ошибки.
func (c *ScoreCalculator) loadResponsesWithQuestions(attemptID uint) ([]entity.Response, map[uint]*entity.Question, error) {
	if _, err := c.deps.AttemptRepo.GetByID(attemptID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	responses, err := c.deps.ResponseRepo.GetByAttemptID(attemptID)
	if err != nil {
		return nil, nil, err
	}
	if len(responses) == 0 {
		return nil, nil, nil
	}

	questionIDs := make([]uint, 0, len(responses))
	for i := range responses {
		questionIDs = append(questionIDs, responses[i].QuestionID)
	}

	questions, err := c.deps.QuestionRepo.GetByIDs(questionIDs)
	if err != nil {
		return nil, nil, err
	}

	questionMap := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	return responses, questionMap, nil
}
