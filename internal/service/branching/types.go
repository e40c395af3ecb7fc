// Package branching реализует движок условного показа вопросов:
// контроллер видимости, валидатор правил, калькулятор баллов по
// обрезанному ветвлением набору ответов и трекер прогресса.
package branching

import (
	"github.com/yourusername/wellbeing-api/internal/domain/repository"
)

// Dependencies содержит зависимости компонентов движка ветвления
type Dependencies struct {
	QuestionRepo repository.QuestionRepository
	ResponseRepo repository.ResponseRepository
	AttemptRepo  repository.AttemptRepository
}
