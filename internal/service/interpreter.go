package service

import (
	"fmt"
	"sort"

	"github.com/yourusername/wellbeing-api/internal/service/branching"
)

// InterpreterFunc превращает итоговые баллы попытки в текстовую интерпретацию
type InterpreterFunc func(normalizedScore float64, dimensions map[string]branching.DimensionScore) string

// InterpreterRegistry сопоставляет ключу шаблона функцию интерпретации.
// Реестр заполняется при конструировании и дальше не изменяется, поэтому
// безопасен для конкурентного чтения из обработчиков без блокировок.
type InterpreterRegistry struct {
	interpreters map[string]InterpreterFunc
}

// NewInterpreterRegistry создает реестр со встроенными интерпретаторами
func NewInterpreterRegistry() *InterpreterRegistry {
	return &InterpreterRegistry{
		interpreters: map[string]InterpreterFunc{
			"who5": interpretWHO5,
			"disc": interpretDISC,
		},
	}
}

// Interpret возвращает интерпретацию баллов для шаблона с данным ключом.
// Для неизвестного ключа применяется универсальная трактовка по уровню балла.
func (r *InterpreterRegistry) Interpret(templateKey string, normalizedScore float64, dimensions map[string]branching.DimensionScore) string {
	if fn, ok := r.interpreters[templateKey]; ok {
		return fn(normalizedScore, dimensions)
	}
	return interpretGeneric(normalizedScore, dimensions)
}

// interpretWHO5 — трактовка индекса благополучия ВОЗ-5
func interpretWHO5(normalizedScore float64, _ map[string]branching.DimensionScore) string {
	switch {
	case normalizedScore < 50:
		return "Низкий уровень благополучия. Рекомендуется обратить внимание на своё состояние и обсудить его со специалистом."
	case normalizedScore < 75:
		return "Умеренный уровень благополучия. Есть пространство для улучшения баланса работы и отдыха."
	default:
		return "Высокий уровень благополучия. Продолжайте в том же духе."
	}
}

// interpretDISC — определение доминирующей шкалы поведенческого профиля.
// При равенстве баллов выигрывает лексикографически меньший ключ шкалы.
func interpretDISC(_ float64, dimensions map[string]branching.DimensionScore) string {
	if len(dimensions) == 0 {
		return "Недостаточно данных для определения поведенческого профиля."
	}

	keys := make([]string, 0, len(dimensions))
	for key := range dimensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	dominant := keys[0]
	for _, key := range keys[1:] {
		if dimensions[key].NormalizedScore > dimensions[dominant].NormalizedScore {
			dominant = key
		}
	}

	letter := dimensions[dominant].PositiveLetter
	if letter == "" {
		letter = dominant
	}
	return fmt.Sprintf("Доминирующая шкала профиля: %s (%.0f%%).", letter, dimensions[dominant].NormalizedScore)
}

// interpretGeneric — универсальная трактовка для шаблонов без встроенного
// интерпретатора
func interpretGeneric(normalizedScore float64, _ map[string]branching.DimensionScore) string {
	switch {
	case normalizedScore < 33:
		return "Низкий суммарный показатель."
	case normalizedScore < 66:
		return "Средний суммарный показатель."
	default:
		return "Высокий суммарный показатель."
	}
}
