package branching

import (
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// MockQuestionRepo - мок для QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByTemplateID(templateID uint) ([]entity.Question, error) {
	args := m.Called(templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByIDs(ids []uint) ([]entity.Question, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepo) CountByTemplateID(templateID uint) (int64, error) {
	args := m.Called(templateID)
	return args.Get(0).(int64), args.Error(1)
}

// MockResponseRepo - мок для ResponseRepository
type MockResponseRepo struct {
	mock.Mock
}

func (m *MockResponseRepo) Upsert(response *entity.Response) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockResponseRepo) GetByAttemptID(attemptID uint) ([]entity.Response, error) {
	args := m.Called(attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Response), args.Error(1)
}

func (m *MockResponseRepo) CountByAttemptID(attemptID uint) (int64, error) {
	args := m.Called(attemptID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttemptRepo - мок для AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(attempt *entity.TestAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) GetByID(id uint) (*entity.TestAttempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepo) UpdateScores(attempt *entity.TestAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) GetByUserID(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.TestAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepo) GetByTemplateID(templateID uint) ([]entity.TestAttempt, error) {
	args := m.Called(templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TestAttempt), args.Error(1)
}

func (m *MockAttemptRepo) CountByTemplateID(templateID uint) (int64, error) {
	args := m.Called(templateID)
	return args.Get(0).(int64), args.Error(1)
}

// newTestDeps собирает Dependencies из свежих моков
func newTestDeps() (*Dependencies, *MockQuestionRepo, *MockResponseRepo, *MockAttemptRepo) {
	questionRepo := new(MockQuestionRepo)
	responseRepo := new(MockResponseRepo)
	attemptRepo := new(MockAttemptRepo)
	deps := &Dependencies{
		QuestionRepo: questionRepo,
		ResponseRepo: responseRepo,
		AttemptRepo:  attemptRepo,
	}
	return deps, questionRepo, responseRepo, attemptRepo
}

// Общие помощники для тестов пакета

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

// conditionalQuestion строит условный вопрос с гейтом show_if
func conditionalQuestion(id, templateID uint, order int, gate uint, threshold int) entity.Question {
	return entity.Question{
		ID:               id,
		TemplateID:       templateID,
		Text:             "Conditional question",
		Order:            order,
		MinValue:         1,
		MaxValue:         5,
		Weight:           1.0,
		ShowIfQuestionID: uintPtr(gate),
		ShowIfValue:      intPtr(threshold),
	}
}

// plainQuestion строит безусловный вопрос со шкалой 1-5 и весом 1
func plainQuestion(id, templateID uint, order int) entity.Question {
	return entity.Question{
		ID:         id,
		TemplateID: templateID,
		Text:       "Plain question",
		Order:      order,
		MinValue:   1,
		MaxValue:   5,
		Weight:     1.0,
	}
}
