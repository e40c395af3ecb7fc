package branching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
)

func TestDisplayController_ShouldShow_Unconditional(t *testing.T) {
	// Arrange
	deps, _, _, _ := newTestDeps()
	controller := NewDisplayController(deps)
	question := plainQuestion(1, 10, 1)

	// Act & Assert
	assert.True(t, controller.ShouldShow(&question, nil), "Безусловный вопрос виден всегда")
}

func TestDisplayController_ShouldShow_GateNotAnswered(t *testing.T) {
	// Arrange
	deps, _, _, _ := newTestDeps()
	controller := NewDisplayController(deps)
	question := conditionalQuestion(2, 10, 2, 1, 4)

	// Act & Assert
	assert.False(t, controller.ShouldShow(&question, []entity.Response{}),
		"Условный вопрос скрыт, пока гейтирующий не отвечен")
}

func TestDisplayController_ShouldShow_ThresholdDirections(t *testing.T) {
	deps, _, _, _ := newTestDeps()
	controller := NewDisplayController(deps)

	testCases := []struct {
		name      string
		threshold int
		gateValue int
		expected  bool
	}{
		{"низкий порог, значение проходит", 2, 1, true},
		{"низкий порог, значение не проходит", 2, 3, false},
		{"высокий порог, значение проходит", 4, 5, true},
		{"высокий порог, значение не проходит", 4, 3, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			question := conditionalQuestion(2, 10, 2, 1, tc.threshold)
			responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: tc.gateValue}}

			assert.Equal(t, tc.expected, controller.ShouldShow(&question, responses))
		})
	}
}

func TestDisplayController_VisibleQuestions_FiltersAndKeepsOrder(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	controller := NewDisplayController(deps)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4), // показывается при Q1 >= 4
		plainQuestion(3, 10, 3),
		conditionalQuestion(4, 10, 4, 3, 2), // показывается при Q3 <= 2
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	responses := []entity.Response{
		{AttemptID: 100, QuestionID: 1, Value: 5},
		{AttemptID: 100, QuestionID: 3, Value: 4},
	}

	// Act
	visible, err := controller.VisibleQuestions(10, responses)

	// Assert
	require.NoError(t, err)
	require.Len(t, visible, 3, "Q4 скрыт: Q3=4 не проходит порог <= 2")
	assert.Equal(t, uint(1), visible[0].ID)
	assert.Equal(t, uint(2), visible[1].ID)
	assert.Equal(t, uint(3), visible[2].ID)
}

func TestDisplayController_NextQuestion_FirstUnansweredVisible(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	controller := NewDisplayController(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
		plainQuestion(3, 10, 3),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: 5}}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	next, err := controller.NextQuestion(100)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, uint(2), next.ID, "Ответ Q1=5 открыл условный Q2, он следующий по порядку")
}

func TestDisplayController_NextQuestion_BranchSkipped(t *testing.T) {
	// Ответ Q1=2 не проходит порог >= 4: условный Q2 пропускается
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	controller := NewDisplayController(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
		plainQuestion(3, 10, 3),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: 2}}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	next, err := controller.NextQuestion(100)

	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, uint(3), next.ID, "Q2 скрыт, следующим идёт Q3")
}

func TestDisplayController_NextQuestion_Complete(t *testing.T) {
	// Arrange
	deps, questionRepo, responseRepo, attemptRepo := newTestDeps()
	controller := NewDisplayController(deps)

	attempt := &entity.TestAttempt{ID: 100, UserID: 1, TemplateID: 10}
	attemptRepo.On("GetByID", uint(100)).Return(attempt, nil)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Q1=2 скрывает Q2, единственный видимый вопрос отвечен
	responses := []entity.Response{{AttemptID: 100, QuestionID: 1, Value: 2}}
	responseRepo.On("GetByAttemptID", uint(100)).Return(responses, nil)

	// Act
	next, err := controller.NextQuestion(100)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, next, "Все видимые вопросы отвечены — попытка завершена")
}

func TestDisplayController_NextQuestion_AttemptNotFound(t *testing.T) {
	// Arrange
	deps, _, _, attemptRepo := newTestDeps()
	controller := NewDisplayController(deps)
	attemptRepo.On("GetByID", uint(999)).Return(nil, apperrors.ErrNotFound)

	// Act
	next, err := controller.NextQuestion(999)

	// Assert
	require.NoError(t, err, "Несуществующая попытка не является ошибкой движка")
	assert.Nil(t, next)
}
