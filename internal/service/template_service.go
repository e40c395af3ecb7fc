package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	"github.com/yourusername/wellbeing-api/internal/domain/repository"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
	"github.com/yourusername/wellbeing-api/internal/service/branching"
)

// Время жизни кешированного результата валидации правил ветвления
const validationCacheTTL = 10 * time.Minute

// ValidationResult — результат проверки правил ветвления шаблона
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// TemplateStats — агрегированная статистика по шаблону для админ-панели
type TemplateStats struct {
	TemplateID     uint    `json:"template_id"`
	Key            string  `json:"key"`
	QuestionCount  int64   `json:"question_count"`
	AttemptCount   int64   `json:"attempt_count"`
	StartedCount   int64   `json:"started_count"`
	CompletedCount int     `json:"completed_count"`
	AverageScore   float64 `json:"average_score"`
}

// TemplateService предоставляет методы для работы с шаблонами опросников
type TemplateService struct {
	templateRepo repository.TemplateRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	cacheRepo    repository.CacheRepository
	validator    *branching.RulesValidator
}

// NewTemplateService создает новый сервис шаблонов
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	cacheRepo repository.CacheRepository,
	validator *branching.RulesValidator,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		cacheRepo:    cacheRepo,
		validator:    validator,
	}
}

// List возвращает все доступные шаблоны опросников
func (s *TemplateService) List() ([]entity.TestTemplate, error) {
	return s.templateRepo.List()
}

// GetByKey возвращает шаблон по символьному ключу вместе с вопросами
func (s *TemplateService) GetByKey(key string) (*entity.TestTemplate, error) {
	return s.templateRepo.GetByKeyWithQuestions(key)
}

// Create создает новый шаблон опросника
func (s *TemplateService) Create(key, name, description string) (*entity.TestTemplate, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: key and name are required", apperrors.ErrValidation)
	}

	// Ключ уникален: повторное создание — конфликт, а не перезапись
	if _, err := s.templateRepo.GetByKey(key); err == nil {
		return nil, fmt.Errorf("%w: template with key '%s' already exists", apperrors.ErrConflict, key)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	template := &entity.TestTemplate{
		Key:         key,
		Name:        name,
		Description: description,
	}
	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	log.Printf("[TemplateService] Создан шаблон '%s' (ID=%d)", key, template.ID)
	return template, nil
}

// LookupOrCreate возвращает шаблон по ключу, создавая его при отсутствии.
// Используется сидером и идемпотентными сценариями развертывания.
func (s *TemplateService) LookupOrCreate(key, name, description string) (*entity.TestTemplate, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err == nil {
		return template, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return s.Create(key, name, description)
}

// AddQuestions добавляет вопросы к шаблону и сбрасывает кешированный
// результат валидации: структура ветвления изменилась
func (s *TemplateService) AddQuestions(key string, questions []entity.Question) ([]entity.Question, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		if err := validateQuestionDefinition(&questions[i]); err != nil {
			return nil, err
		}
		questions[i].TemplateID = template.ID
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, fmt.Errorf("failed to create questions: %w", err)
	}

	if err := s.cacheRepo.Delete(validationCacheKey(template.ID)); err != nil {
		// Кеш не критичен: следующая валидация просто пересчитает заново
		log.Printf("[TemplateService] Не удалось сбросить кеш валидации шаблона %d: %v", template.ID, err)
	}

	log.Printf("[TemplateService] К шаблону '%s' добавлено %d вопросов", key, len(questions))
	return questions, nil
}

// ValidateRules проверяет правила ветвления шаблона. Вердикт кешируется в
// Redis: валидация читает весь граф вопросов, а админ-панель дергает её на
// каждое открытие шаблона.
func (s *TemplateService) ValidateRules(key string) (*ValidationResult, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}

	cacheKey := validationCacheKey(template.ID)
	var cached ValidationResult
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[TemplateService] Ошибка чтения кеша валидации шаблона %d: %v", template.ID, err)
	}

	valid, validationErrs, err := s.validator.Validate(template.ID)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Valid: valid, Errors: validationErrs}
	if err := s.cacheRepo.SetJSON(cacheKey, result, validationCacheTTL); err != nil {
		log.Printf("[TemplateService] Не удалось закешировать результат валидации шаблона %d: %v", template.ID, err)
	}

	return result, nil
}

// BranchingTree возвращает структуру ветвления шаблона для визуализации
func (s *TemplateService) BranchingTree(key string) (*branching.Tree, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	return s.validator.BranchingTree(template.ID)
}

// Stats возвращает агрегированную статистику по шаблону
func (s *TemplateService) Stats(key string) (*TemplateStats, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}

	questionCount, err := s.questionRepo.CountByTemplateID(template.ID)
	if err != nil {
		return nil, err
	}

	attemptCount, err := s.attemptRepo.CountByTemplateID(template.ID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.GetByTemplateID(template.ID)
	if err != nil {
		return nil, err
	}

	completed := 0
	scoreSum := 0.0
	for i := range attempts {
		if attempts[i].IsCompleted() {
			completed++
			scoreSum += attempts[i].NormalizedScore
		}
	}

	stats := &TemplateStats{
		TemplateID:     template.ID,
		Key:            template.Key,
		QuestionCount:  questionCount,
		AttemptCount:   attemptCount,
		StartedCount:   s.startedCounter(template.ID, attemptCount),
		CompletedCount: completed,
	}
	if completed > 0 {
		stats.AverageScore = scoreSum / float64(completed)
	}

	return stats, nil
}

// startedCounter читает Redis-счетчик запущенных попыток шаблона.
// Счетчик ведется с момента включения кеша, поэтому при его отсутствии
// (или сбое Redis) возвращается значение из базы.
func (s *TemplateService) startedCounter(templateID uint, fallback int64) int64 {
	raw, err := s.cacheRepo.Get(fmt.Sprintf("template:%d:attempts", templateID))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TemplateService] Не удалось прочитать счетчик попыток template_id=%d: %v", templateID, err)
		}
		return fallback
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return count
}

// CompletedAttempts возвращает завершенные попытки шаблона для экспорта
func (s *TemplateService) CompletedAttempts(key string) (*entity.TestTemplate, []entity.TestAttempt, error) {
	template, err := s.templateRepo.GetByKey(key)
	if err != nil {
		return nil, nil, err
	}

	attempts, err := s.attemptRepo.GetByTemplateID(template.ID)
	if err != nil {
		return nil, nil, err
	}

	completed := make([]entity.TestAttempt, 0, len(attempts))
	for i := range attempts {
		if attempts[i].IsCompleted() {
			completed = append(completed, attempts[i])
		}
	}

	return template, completed, nil
}

// validateQuestionDefinition проверяет корректность определения вопроса
func validateQuestionDefinition(q *entity.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if q.MinValue >= q.MaxValue {
		return fmt.Errorf("%w: question scale [%d, %d] is invalid", apperrors.ErrValidation, q.MinValue, q.MaxValue)
	}
	if q.Weight < 0 {
		return fmt.Errorf("%w: question weight must be non-negative", apperrors.ErrValidation)
	}
	if q.ShowIfQuestionID == nil && q.ShowIfValue != nil {
		return fmt.Errorf("%w: show_if_value without show_if_question_id", apperrors.ErrValidation)
	}
	return nil
}

// validationCacheKey строит ключ кеша вердикта валидации шаблона
func validationCacheKey(templateID uint) string {
	return fmt.Sprintf("template:%d:validation", templateID)
}
