package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	"github.com/yourusername/wellbeing-api/internal/domain/repository"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
	"github.com/yourusername/wellbeing-api/internal/service/branching"
)

// Время удержания замка на конкурентную отправку ответа в одну попытку
const submitLockTTL = 5 * time.Second

// AttemptService предоставляет методы прохождения опросника: создание
// попытки, выдача следующего вопроса, запись ответов и подведение итогов
type AttemptService struct {
	attemptRepo  repository.AttemptRepository
	responseRepo repository.ResponseRepository
	templateRepo repository.TemplateRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository

	display      *branching.DisplayController
	calculator   *branching.ScoreCalculator
	tracker      *branching.ProgressTracker
	interpreters *InterpreterRegistry
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	responseRepo repository.ResponseRepository,
	templateRepo repository.TemplateRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	interpreters *InterpreterRegistry,
) *AttemptService {
	deps := &branching.Dependencies{
		QuestionRepo: questionRepo,
		ResponseRepo: responseRepo,
		AttemptRepo:  attemptRepo,
	}
	return &AttemptService{
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		templateRepo: templateRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		display:      branching.NewDisplayController(deps),
		calculator:   branching.NewScoreCalculator(deps),
		tracker:      branching.NewProgressTracker(deps),
		interpreters: interpreters,
	}
}

// SubmitResult — результат записи одного ответа
type SubmitResult struct {
	NextQuestion *entity.Question    `json:"next_question"`
	Progress     *branching.Progress `json:"progress"`
	IsComplete   bool                `json:"is_complete"`
}

// AttemptResults — итоги завершенной попытки
type AttemptResults struct {
	AttemptID       uint                                 `json:"attempt_id"`
	TemplateID      uint                                 `json:"template_id"`
	RawScore        float64                              `json:"raw_score"`
	NormalizedScore float64                              `json:"normalized_score"`
	Interpretation  string                               `json:"interpretation"`
	Dimensions      map[string]branching.DimensionScore  `json:"dimensions,omitempty"`
	Path            []branching.PathItem                 `json:"path"`
	CompletedAt     *time.Time                           `json:"completed_at"`
}

// StartAttempt создает новую попытку прохождения шаблона
func (s *AttemptService) StartAttempt(userID uint, templateKey string) (*entity.TestAttempt, *entity.Question, error) {
	template, err := s.templateRepo.GetByKey(templateKey)
	if err != nil {
		return nil, nil, err
	}

	attempt := &entity.TestAttempt{
		UserID:     userID,
		TemplateID: template.ID,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	// Счётчик попыток шаблона — для админ-дашборда, потеря не критична
	if _, err := s.cacheRepo.Increment(fmt.Sprintf("template:%d:attempts", template.ID)); err != nil {
		log.Printf("[AttemptService] Не удалось увеличить счётчик попыток шаблона %d: %v", template.ID, err)
	}

	first, err := s.display.NextQuestion(attempt.ID)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[AttemptService] Пользователь %d начал попытку %d шаблона '%s'", userID, attempt.ID, templateKey)
	return attempt, first, nil
}

// NextQuestion возвращает следующий вопрос попытки или nil при завершении
func (s *AttemptService) NextQuestion(userID, attemptID uint, isAdmin bool) (*entity.Question, error) {
	if _, err := s.authorizedAttempt(userID, attemptID, isAdmin); err != nil {
		return nil, err
	}
	return s.display.NextQuestion(attemptID)
}

// SubmitAnswer записывает ответ на вопрос попытки.
// Конкурентные отправки в одну попытку сериализуются advisory-замком в Redis:
// проигравший запрос получает ErrConflict и повторяет попытку сам.
func (s *AttemptService) SubmitAnswer(userID, attemptID, questionID uint, value int, isAdmin bool) (*SubmitResult, error) {
	attempt, err := s.authorizedAttempt(userID, attemptID, isAdmin)
	if err != nil {
		return nil, err
	}
	if attempt.IsCompleted() {
		return nil, fmt.Errorf("%w: attempt %d is already completed", apperrors.ErrConflict, attemptID)
	}

	lockKey := fmt.Sprintf("attempt:%d:lock", attemptID)
	acquired, err := s.cacheRepo.SetNX(lockKey, userID, submitLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire attempt lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: attempt %d is being updated by another request", apperrors.ErrConflict, attemptID)
	}
	defer func() {
		if err := s.cacheRepo.Delete(lockKey); err != nil {
			log.Printf("[AttemptService] Не удалось снять замок попытки %d: %v", attemptID, err)
		}
	}()

	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.TemplateID != attempt.TemplateID {
		return nil, fmt.Errorf("%w: question %d does not belong to the attempted template", apperrors.ErrValidation, questionID)
	}
	if !question.IsValidValue(value) {
		return nil, fmt.Errorf("%w: value %d is out of question range [%d, %d]",
			apperrors.ErrValidation, value, question.MinValue, question.MaxValue)
	}

	response := &entity.Response{
		AttemptID:  attemptID,
		QuestionID: questionID,
		Value:      value,
	}
	if err := s.responseRepo.Upsert(response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	next, err := s.display.NextQuestion(attemptID)
	if err != nil {
		return nil, err
	}

	if next == nil {
		if err := s.finalizeAttempt(attempt); err != nil {
			return nil, err
		}
	}

	progress, err := s.tracker.Progress(attemptID)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		NextQuestion: next,
		Progress:     progress,
		IsComplete:   next == nil,
	}, nil
}

// SubmitFixedForm записывает все ответы формы разом и завершает попытку.
// Для классических опросников без ветвления, присылаемых одной страницей.
// Ответы на вопросы, скрытые ветвлением при данном наборе значений,
// отбрасываются.
func (s *AttemptService) SubmitFixedForm(userID uint, templateKey string, values map[uint]int) (*AttemptResults, error) {
	template, err := s.templateRepo.GetByKey(templateKey)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetByTemplateID(template.ID)
	if err != nil {
		return nil, err
	}

	// Валидируем все значения до создания попытки: форма атомарна
	questionMap := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}
	for questionID, value := range values {
		q := questionMap[questionID]
		if q == nil {
			return nil, fmt.Errorf("%w: unknown question %d", apperrors.ErrValidation, questionID)
		}
		if !q.IsValidValue(value) {
			return nil, fmt.Errorf("%w: value %d is out of question %d range [%d, %d]",
				apperrors.ErrValidation, value, questionID, q.MinValue, q.MaxValue)
		}
	}

	attempt := &entity.TestAttempt{
		UserID:     userID,
		TemplateID: template.ID,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	// Записываем ответы в порядке следования вопросов, пропуская скрытые:
	// видимость каждого вопроса оценивается по уже записанным ответам
	recorded := make([]entity.Response, 0, len(values))
	for i := range questions {
		value, answered := values[questions[i].ID]
		if !answered {
			continue
		}
		if !s.display.ShouldShow(&questions[i], recorded) {
			continue
		}
		response := entity.Response{
			AttemptID:  attempt.ID,
			QuestionID: questions[i].ID,
			Value:      value,
		}
		if err := s.responseRepo.Upsert(&response); err != nil {
			return nil, fmt.Errorf("failed to save response: %w", err)
		}
		recorded = append(recorded, response)
	}

	next, err := s.display.NextQuestion(attempt.ID)
	if err != nil {
		return nil, err
	}
	if next != nil {
		return nil, fmt.Errorf("%w: form is missing an answer for visible question %d",
			apperrors.ErrValidation, next.ID)
	}

	if err := s.finalizeAttempt(attempt); err != nil {
		return nil, err
	}

	return s.Results(userID, attempt.ID, false)
}

// Progress возвращает снимок продвижения по попытке
func (s *AttemptService) Progress(userID, attemptID uint, isAdmin bool) (*branching.Progress, error) {
	if _, err := s.authorizedAttempt(userID, attemptID, isAdmin); err != nil {
		return nil, err
	}
	return s.tracker.Progress(attemptID)
}

// Results возвращает итоги завершенной попытки.
// Для незавершенной попытки возвращается ErrConflict: частичные итоги
// наружу не отдаются.
func (s *AttemptService) Results(userID, attemptID uint, isAdmin bool) (*AttemptResults, error) {
	attempt, err := s.authorizedAttempt(userID, attemptID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !attempt.IsCompleted() {
		return nil, fmt.Errorf("%w: attempt %d is not completed yet", apperrors.ErrConflict, attemptID)
	}

	dimensions, err := s.calculator.DimensionalScores(attemptID)
	if err != nil {
		return nil, err
	}

	path, err := s.tracker.QuestionPath(attemptID)
	if err != nil {
		return nil, err
	}

	return &AttemptResults{
		AttemptID:       attempt.ID,
		TemplateID:      attempt.TemplateID,
		RawScore:        attempt.RawScore,
		NormalizedScore: attempt.NormalizedScore,
		Interpretation:  attempt.Interpretation,
		Dimensions:      dimensions,
		Path:            path,
		CompletedAt:     attempt.CompletedAt,
	}, nil
}

// ListByUser возвращает попытки пользователя с пагинацией
func (s *AttemptService) ListByUser(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.attemptRepo.GetByUserID(userID, limit, offset)
}

// finalizeAttempt подводит итоги: считает баллы, подбирает интерпретацию
// и фиксирует момент завершения
func (s *AttemptService) finalizeAttempt(attempt *entity.TestAttempt) error {
	raw, normalized, err := s.calculator.RawAndNormalized(attempt.ID)
	if err != nil {
		return err
	}

	dimensions, err := s.calculator.DimensionalScores(attempt.ID)
	if err != nil {
		return err
	}

	template, err := s.templateRepo.GetByID(attempt.TemplateID)
	if err != nil {
		return err
	}

	now := time.Now()
	attempt.RawScore = raw
	attempt.NormalizedScore = normalized
	attempt.Interpretation = s.interpreters.Interpret(template.Key, normalized, dimensions)
	attempt.CompletedAt = &now

	if err := s.attemptRepo.UpdateScores(attempt); err != nil {
		return fmt.Errorf("failed to finalize attempt: %w", err)
	}

	log.Printf("[AttemptService] Попытка %d завершена: балл %.1f", attempt.ID, normalized)
	return nil
}

// authorizedAttempt загружает попытку и проверяет право доступа:
// владелец или администратор
func (s *AttemptService) authorizedAttempt(userID, attemptID uint, isAdmin bool) (*entity.TestAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("%w: attempt %d belongs to another user", apperrors.ErrForbidden, attemptID)
	}
	return attempt, nil
}
