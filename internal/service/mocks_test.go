package service

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// MockTemplateRepo - мок для TemplateRepository
type MockTemplateRepo struct {
	mock.Mock
}

func (m *MockTemplateRepo) Create(template *entity.TestTemplate) error {
	args := m.Called(template)
	return args.Error(0)
}

func (m *MockTemplateRepo) GetByID(id uint) (*entity.TestTemplate, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TestTemplate), args.Error(1)
}

func (m *MockTemplateRepo) GetByKey(key string) (*entity.TestTemplate, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TestTemplate), args.Error(1)
}

func (m *MockTemplateRepo) GetByKeyWithQuestions(key string) (*entity.TestTemplate, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TestTemplate), args.Error(1)
}

func (m *MockTemplateRepo) List() ([]entity.TestTemplate, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TestTemplate), args.Error(1)
}

func (m *MockTemplateRepo) Update(template *entity.TestTemplate) error {
	args := m.Called(template)
	return args.Error(0)
}

func (m *MockTemplateRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

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

// MockUserRepo - мок для UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

// MockCacheRepo - мок для CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) Increment(key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepo) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }
