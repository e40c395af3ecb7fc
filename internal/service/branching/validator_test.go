package branching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

func TestRulesValidator_Validate_ValidTemplate(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
		conditionalQuestion(3, 10, 3, 2, 2),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	valid, errs, err := validator.Validate(10)

	// Assert
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestRulesValidator_Validate_DirectCycle(t *testing.T) {
	// A -> B -> A: обе стороны цикла должны быть диагностированы
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		conditionalQuestion(1, 10, 1, 2, 3),
		conditionalQuestion(2, 10, 2, 1, 3),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	valid, errs, err := validator.Validate(10)

	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1, "Глобальный visited не даёт диагностировать один цикл дважды")
	assert.Contains(t, errs[0], "Circular dependency detected involving question 1")
	assert.Contains(t, errs[0], "2 (", "Сообщение перечисляет обоих участников цикла")
	assert.Contains(t, errs[0], "-> 1", "Цикл замыкается на первом участнике")
}

func TestRulesValidator_Validate_SelfReference(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		conditionalQuestion(1, 10, 1, 1, 3), // вопрос ссылается сам на себя
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	valid, errs, err := validator.Validate(10)

	// Assert
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Circular dependency")
}

func TestRulesValidator_Validate_DanglingReference(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 99, 3), // вопрос 99 не существует
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	valid, errs, err := validator.Validate(10)

	// Assert
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1, "Висячая ссылка диагностируется ровно один раз")
	assert.Contains(t, errs[0], "references non-existent question 99")
}

func TestRulesValidator_Validate_ThresholdOutOfRange(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		plainQuestion(1, 10, 1), // шкала 1-5
		conditionalQuestion(2, 10, 2, 1, 7),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	valid, errs, err := validator.Validate(10)

	// Assert
	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid condition value 7 for referenced question range [1, 5]")
}

func TestRulesValidator_Validate_DanglingDoesNotTriggerRangeCheck(t *testing.T) {
	// Висячая ссылка с порогом вне любой шкалы даёт только одну ошибку:
	// проверка диапазона пропускает несуществующие гейты
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		conditionalQuestion(1, 10, 1, 99, 42),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	valid, errs, err := validator.Validate(10)

	require.NoError(t, err)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "non-existent question 99")
}

func TestRulesValidator_Validate_MultipleErrorsConcatenated(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		conditionalQuestion(1, 10, 1, 1, 3),  // цикл (самоссылка)
		conditionalQuestion(2, 10, 2, 99, 3), // висячая ссылка
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	valid, errs, err := validator.Validate(10)

	// Assert
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Len(t, errs, 2, "Ошибки независимых проходов конкатенируются")
}

func TestRulesValidator_BranchingTree(t *testing.T) {
	// Arrange
	deps, questionRepo, _, _ := newTestDeps()
	validator := NewRulesValidator(deps)

	questions := []entity.Question{
		plainQuestion(1, 10, 1),
		conditionalQuestion(2, 10, 2, 1, 4),
	}
	questionRepo.On("GetByTemplateID", uint(10)).Return(questions, nil)

	// Act
	tree, err := validator.BranchingTree(10)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, uint(10), tree.TemplateID)
	require.Len(t, tree.Questions, 2)

	assert.True(t, tree.Questions[0].AlwaysShown)
	assert.Nil(t, tree.Questions[0].Condition)

	assert.False(t, tree.Questions[1].AlwaysShown)
	require.NotNil(t, tree.Questions[1].Condition)
	assert.Equal(t, uint(1), tree.Questions[1].Condition.DependsOnQuestion)
	assert.Equal(t, 4, *tree.Questions[1].Condition.ThresholdValue)
	assert.Equal(t, "gte", tree.Questions[1].Condition.Operator, "Порог 4 выше границы 3 — нижняя граница")
}
