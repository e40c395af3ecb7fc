package branching

import (
	"fmt"
	"strings"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
)

// Длина фрагмента текста вопроса в сообщениях валидатора
const errorExcerptLen = 50

// RulesValidator выполняет статическую проверку графа зависимостей вопросов
// шаблона. Валидатор диагностический: он не блокирует создание попыток и
// отправку ответов, а предназначен для запуска при авторинге шаблона.
type RulesValidator struct {
	deps *Dependencies
}

// NewRulesValidator создает новый валидатор правил ветвления
func NewRulesValidator(deps *Dependencies) *RulesValidator {
	return &RulesValidator{deps: deps}
}

// Validate проверяет правила ветвления шаблона тремя независимыми проходами:
// циклы зависимостей, висячие ссылки и пороги вне диапазона гейтирующего
// вопроса. Ошибки всех проходов конкатенируются.
func (v *RulesValidator) Validate(templateID uint) (bool, []string, error) {
	questions, err := v.deps.QuestionRepo.GetByTemplateID(templateID)
	if err != nil {
		return false, nil, err
	}

	// Граф представлен картой id -> вопрос: проверки работают над plain
	// идентификаторами, без живых ссылок между объектами
	questionMap := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	errs := make([]string, 0)
	errs = append(errs, v.checkCircularDependencies(questions, questionMap)...)
	errs = append(errs, v.checkDanglingReferences(questions, questionMap)...)
	errs = append(errs, v.checkThresholdRanges(questions, questionMap)...)

	return len(errs) == 0, errs, nil
}

// checkCircularDependencies ищет циклы в графе show_if-ссылок обходом в
// глубину с накоплением пути. Глобальное множество visited гарантирует, что
// уже подтверждённый ацикличным вопрос не диагностируется повторно, поэтому
// каждый цикл даёт ровно одну ошибку — с перечислением всех его участников.
func (v *RulesValidator) checkCircularDependencies(
	questions []entity.Question,
	questionMap map[uint]*entity.Question,
) []string {
	errs := make([]string, 0)
	visited := make(map[uint]struct{}, len(questions))

	// findCycle возвращает участников цикла в порядке обхода или nil
	var findCycle func(questionID uint, path []uint) []uint
	findCycle = func(questionID uint, path []uint) []uint {
		for i := range path {
			if path[i] == questionID {
				return path[i:]
			}
		}
		if _, seen := visited[questionID]; seen {
			return nil
		}
		visited[questionID] = struct{}{}

		if q := questionMap[questionID]; q != nil && q.ShowIfQuestionID != nil {
			return findCycle(*q.ShowIfQuestionID, append(path, questionID))
		}
		return nil
	}

	for i := range questions {
		q := &questions[i]
		if _, seen := visited[q.ID]; seen {
			continue
		}
		if cycle := findCycle(q.ID, nil); len(cycle) > 0 {
			errs = append(errs, fmt.Sprintf(
				"Circular dependency detected involving question %d ('%s'): %s",
				q.ID, q.TextExcerpt(errorExcerptLen), formatCycle(cycle, questionMap),
			))
		}
	}

	return errs
}

// formatCycle перечисляет участников цикла с замыканием на первом вопросе,
// например "1 ('...') -> 2 ('...') -> 1"
func formatCycle(cycle []uint, questionMap map[uint]*entity.Question) string {
	parts := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		if q := questionMap[id]; q != nil {
			parts = append(parts, fmt.Sprintf("%d ('%s')", id, q.TextExcerpt(errorExcerptLen)))
		} else {
			parts = append(parts, fmt.Sprintf("%d", id))
		}
	}
	parts = append(parts, fmt.Sprintf("%d", cycle[0]))
	return strings.Join(parts, " -> ")
}

// checkDanglingReferences ищет ссылки на несуществующие вопросы
func (v *RulesValidator) checkDanglingReferences(
	questions []entity.Question,
	questionMap map[uint]*entity.Question,
) []string {
	errs := make([]string, 0)

	for i := range questions {
		q := &questions[i]
		if q.ShowIfQuestionID == nil {
			continue
		}
		if _, ok := questionMap[*q.ShowIfQuestionID]; !ok {
			errs = append(errs, fmt.Sprintf(
				"Question %d ('%s') references non-existent question %d",
				q.ID, q.TextExcerpt(errorExcerptLen), *q.ShowIfQuestionID,
			))
		}
	}

	return errs
}

// checkThresholdRanges проверяет, что порог показа попадает в допустимый
// диапазон гейтирующего вопроса. Рантайм применяет порог буквально даже вне
// диапазона; здесь это лишь диагностика для автора шаблона.
func (v *RulesValidator) checkThresholdRanges(
	questions []entity.Question,
	questionMap map[uint]*entity.Question,
) []string {
	errs := make([]string, 0)

	for i := range questions {
		q := &questions[i]
		if q.ShowIfQuestionID == nil || q.ShowIfValue == nil {
			continue
		}
		ref := questionMap[*q.ShowIfQuestionID]
		if ref == nil {
			continue // Висячая ссылка диагностируется отдельным проходом
		}
		if *q.ShowIfValue < ref.MinValue || *q.ShowIfValue > ref.MaxValue {
			errs = append(errs, fmt.Sprintf(
				"Question %d has invalid condition value %d for referenced question range [%d, %d]",
				q.ID, *q.ShowIfValue, ref.MinValue, ref.MaxValue,
			))
		}
	}

	return errs
}

// TreeCondition описывает условие показа вопроса в дереве ветвления
type TreeCondition struct {
	DependsOnQuestion uint   `json:"depends_on_question"`
	ThresholdValue    *int   `json:"threshold_value"`
	Operator          string `json:"operator"`
}

// TreeNode — один вопрос в визуализации дерева ветвления
type TreeNode struct {
	ID          uint           `json:"id"`
	Order       int            `json:"order"`
	Text        string         `json:"text"`
	AlwaysShown bool           `json:"always_shown"`
	Condition   *TreeCondition `json:"condition"`
}

// Tree — аннотированный список вопросов шаблона для визуализации ветвления
type Tree struct {
	TemplateID uint       `json:"template_id"`
	Questions  []TreeNode `json:"questions"`
}

// BranchingTree строит представление структуры ветвления шаблона
// для админ-инструмента авторинга
func (v *RulesValidator) BranchingTree(templateID uint) (*Tree, error) {
	questions, err := v.deps.QuestionRepo.GetByTemplateID(templateID)
	if err != nil {
		return nil, err
	}

	tree := &Tree{
		TemplateID: templateID,
		Questions:  make([]TreeNode, 0, len(questions)),
	}

	for i := range questions {
		q := &questions[i]
		node := TreeNode{
			ID:          q.ID,
			Order:       q.Order,
			Text:        q.Text,
			AlwaysShown: !q.IsConditional(),
		}
		if q.IsConditional() {
			node.Condition = &TreeCondition{
				DependsOnQuestion: *q.ShowIfQuestionID,
				ThresholdValue:    q.ShowIfValue,
				Operator:          q.ConditionOperator(),
			}
		}
		tree.Questions = append(tree.Questions, node)
	}

	return tree, nil
}
