package branching

import (
	"strings"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// Operator — оператор сравнения в явном языке условий.
// Используется составными правилами; простое пер-вопросное ветвление
// обходится одним порогом с выведенным направлением (EvaluateThreshold).
type Operator string

const (
	OpEquals         Operator = "eq"
	OpNotEquals      Operator = "ne"
	OpGreaterThan    Operator = "gt"
	OpGreaterOrEqual Operator = "gte"
	OpLessThan       Operator = "lt"
	OpLessOrEqual    Operator = "lte"
	OpInRange        Operator = "in_range"
	OpNotInRange     Operator = "not_in_range"
)

// Логические связки условий внутри правила
const (
	LogicAnd = "AND"
	LogicOr  = "OR"
)

// EvaluateThreshold — простой вариант условия показа: один порог, направление
// сравнения выводится из его значения (<= 3 — верхняя граница, > 3 — нижняя).
// Функция тотальна: nil-порог означает безусловный показ, nil-ответ (гейтирующий
// вопрос ещё не отвечен) — запрет показа.
func EvaluateThreshold(responseValue *int, threshold *int) bool {
	if threshold == nil {
		return true
	}
	if responseValue == nil {
		return false
	}
	if *threshold <= entity.ThresholdDirectionBoundary {
		return *responseValue <= *threshold
	}
	return *responseValue >= *threshold
}

// Condition представляет одно явное условие составного правила.
// ValueMax задаёт верхнюю границу для диапазонных операторов; если он не
// указан, диапазон вырождается в точку Value.
type Condition struct {
	QuestionID uint     `json:"question_id"`
	Operator   Operator `json:"operator"`
	Value      int      `json:"value"`
	ValueMax   *int     `json:"value_max,omitempty"`
}

// Evaluate оценивает условие против значения ответа.
// nil-ответ (вопрос не отвечен) всегда даёт false.
func (c Condition) Evaluate(responseValue *int) bool {
	if responseValue == nil {
		return false
	}
	v := *responseValue

	switch c.Operator {
	case OpEquals:
		return v == c.Value
	case OpNotEquals:
		return v != c.Value
	case OpGreaterThan:
		return v > c.Value
	case OpGreaterOrEqual:
		return v >= c.Value
	case OpLessThan:
		return v < c.Value
	case OpLessOrEqual:
		return v <= c.Value
	case OpInRange:
		return c.Value <= v && v <= c.rangeMax()
	case OpNotInRange:
		return !(c.Value <= v && v <= c.rangeMax())
	}

	// Неизвестный оператор трактуем как невыполненное условие
	return false
}

func (c Condition) rangeMax() int {
	if c.ValueMax != nil {
		return *c.ValueMax
	}
	return c.Value
}

// Rule представляет составное правило из нескольких условий,
// объединённых логическим оператором AND/OR.
type Rule struct {
	Conditions []Condition `json:"conditions"`
	Logic      string      `json:"logic"`
}

// Evaluate оценивает правило над картой ответов question_id -> значение.
// Пустое правило считается выполненным.
func (r Rule) Evaluate(values map[uint]int) bool {
	if len(r.Conditions) == 0 {
		return true
	}

	results := make([]bool, 0, len(r.Conditions))
	for _, cond := range r.Conditions {
		var responseValue *int
		if v, ok := values[cond.QuestionID]; ok {
			value := v
			responseValue = &value
		}
		results = append(results, cond.Evaluate(responseValue))
	}

	if strings.ToUpper(r.Logic) == LogicOr {
		for _, ok := range results {
			if ok {
				return true
			}
		}
		return false
	}

	// По умолчанию AND
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}
