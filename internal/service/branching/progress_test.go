package branching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

func TestProgressTracker_Progress_MidAttempt(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		plainQuestion(2, 10, 2),
		conditionalQuestion(3, 10, 3, 2, 4), // скрыт: Q2 не отвечен
		plainQuestion(4, 10, 4),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: 3}}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	progress, err := tracker.Progress(100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, progress.AnsweredCount)
	assert.Equal(t, 3, progress.TotalQuestions, "Оценка: max(видимые, отвеченные+1), а не размер шаблона")
	assert.Equal(t, 3, progress.VisibleQuestions)
	assert.Equal(t, 1, progress.PotentialAdditional, "Скрытый условный Q3 может ещё открыться")
	assert.False(t, progress.IsComplete)
	assert.InDelta(t, 100.0/3.0, progress.Percentage, 0.0001, "1 из 3 видимых")
}

func TestProgressTracker_Progress_Complete(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4), // скрыт: Q1=2 не проходит порог >= 4
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: 2}}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	progress, err := tracker.Progress(100)

	// Assert
	require.NoError(t, err)
	assert.True(t, progress.IsComplete)
	assert.Equal(t, 1, progress.AnsweredCount)
	assert.Equal(t, 1, progress.VisibleQuestions)
	// Формула процента не меняется при завершении: знаменатель
	// max(1, 1+1) = 2 даёт 50% даже при is_complete
	assert.Equal(t, 2, progress.TotalQuestions)
	assert.InDelta(t, 50.0, progress.Percentage, 0.0001)
}

func TestProgressTracker_Progress_NeverExceedsHundred(t *testing.T) {
	// Ответы на гейтирующие вопросы могут скрыть ранее отвеченный сценарий:
	// answered+1 в знаменателе удерживает процент ниже 100 до завершения
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
		plainQuestion(3, 10, 3),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Два ответа, но Q3 ещё не отвечен — попытка не завершена
	responses := []entity.Response{
		{AttemptID: 100, QuestionID: 1, Value: 5},
		{AttemptID: 100, QuestionID: 2, Value: 3},
	}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	progress, err := tracker.Progress(100)

	// Assert
	require.NoError(t, err)
	assert.False(t, progress.IsComplete)
	assert.GreaterOrEqual(t, progress.Percentage, 0.0)
	assert.Less(t, progress.Percentage, 100.0, "Незавершённая попытка не показывает 100%")
}

func TestProgressTracker_Progress_FreshAttempt(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		plainQuestion(2, 10, 2),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)
	responseRepo.On("GetByAttemptID", uint(100)).Return([]entity.Response{}, nil)

	// Act
	progress, err := tracker.Progress(100)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress.Percentage)
	assert.Equal(t, 0, progress.AnsweredCount)
	assert.False(t, progress.IsComplete)
}

func TestProgressTracker_Progress_AttemptNotFound(t *testing.T) {
	// Arrange
	deps, _, _, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)
	attemptRepo.On("GetByID", uint(999)).Return(nil, apperrors.ErrNotFound)

	// Act
	progress, err := tracker.Progress(999)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &Progress{}, progress, "Несуществующая попытка даёт нулевой снимок")
}

func TestProgressTracker_QuestionPath(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	q1 := plainQuestion(1, 10, 1)
	q1.Text = "Как часто вы чувствовали себя бодрым?"
	q2 := conditionalQuestion(2, 10, 2, 1, 4)
	q2.Text = "Что помогает вам сохранять бодрость?"
	q3 := plainQuestion(3, 10, 3)
	questionRepo.On("GetByTemplateID", uint(10)).Return([]entity.Question{q1, q2, q3}, nil)

	responses := []entity.Response{
		{AttemptID: 100, QuestionID: 1, Value: 5},
		{AttemptID: 100, QuestionID: 2, Value: 3},
	}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	path, err := tracker.QuestionPath(100)

	// Assert
	require.NoError(t, err)
	require.Len(t, path, 2, "Неотвеченный Q3 в путь не входит")

	assert.Equal(t, uint(1), path[0].QuestionID)
	assert.Equal(t, 5, path[0].ResponseValue)
	assert.False(t, path[0].WasConditional)

	assert.Equal(t, uint(2), path[1].QuestionID)
	assert.True(t, path[1].WasConditional)
	assert.True(t, path[1].ConditionMet, "Записанный ответ означает выполненное условие показа")
}

func TestProgressTracker_QuestionPath_AttemptNotFound(t *testing.T) {
	// Arrange
	deps, _, _, attemptRepo := newTestDeps()
	tracker := NewProgressTracker(deps)
	attemptRepo.On("GetByID", uint(999)).Return(nil, apperrors.ErrNotFound)

	// Act
	path, err := tracker.QuestionPath(999)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, path)
}
