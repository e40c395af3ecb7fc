package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	"github.com/yourusername/wellbeing-api/internal/handler/dto"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
	"github.com/yourusername/wellbeing-api/internal/service"
)

// TestHandler обрабатывает запросы, связанные с опросниками и попытками
type TestHandler struct {
	templateService *service.TemplateService
	attemptService  *service.AttemptService
}

// NewTestHandler создает новый обработчик опросников
func NewTestHandler(templateService *service.TemplateService, attemptService *service.AttemptService) *TestHandler {
	return &TestHandler{
		templateService: templateService,
		attemptService:  attemptService,
	}
}

// ListTemplates возвращает список доступных опросников
func (h *TestHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.List()
	if err != nil {
		h.handleTestError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListTemplateResponse(templates))
}

// GetTemplate возвращает опросник с вопросами по ключу
func (h *TestHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateService.GetByKey(c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTemplateResponse(template, true))
}

// StartAttempt создает новую попытку прохождения опросника
func (h *TestHandler) StartAttempt(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	attempt, first, err := h.attemptService.StartAttempt(userID, c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.StartAttemptResponse{
		Attempt:      dto.NewAttemptResponse(attempt),
		NextQuestion: dto.NewQuestionResponse(first),
	})
}

// SubmitFixedFormRequest представляет отправку всей формы одним запросом
type SubmitFixedFormRequest struct {
	// Ключ — идентификатор вопроса, значение — ответ по шкале вопроса
	Answers map[uint]int `json:"answers" binding:"required"`
}

// SubmitFixedForm записывает все ответы формы и сразу возвращает итоги
func (h *TestHandler) SubmitFixedForm(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req SubmitFixedFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers must not be empty"})
		return
	}

	results, err := h.attemptService.SubmitFixedForm(userID, c.Param("key"), req.Answers)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, results)
}

// NextQuestion возвращает следующий вопрос попытки
func (h *TestHandler) NextQuestion(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)
	isAdmin := c.GetBool("is_admin")

	question, err := h.attemptService.NextQuestion(userID, attemptID, isAdmin)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NextQuestionResponse{
		Question:   dto.NewQuestionResponse(question),
		IsComplete: question == nil,
	})
}

// SubmitAnswerRequest представляет запись одного ответа
type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	Value      int  `json:"value"`
}

// SubmitAnswer записывает ответ на вопрос попытки
func (h *TestHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)
	isAdmin := c.GetBool("is_admin")

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.attemptService.SubmitAnswer(userID, attemptID, req.QuestionID, req.Value, isAdmin)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSubmitAnswerResponse(result))
}

// GetProgress возвращает снимок продвижения по попытке
func (h *TestHandler) GetProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)
	isAdmin := c.GetBool("is_admin")

	progress, err := h.attemptService.Progress(userID, attemptID, isAdmin)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetResults возвращает итоги завершенной попытки
func (h *TestHandler) GetResults(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	attemptID := c.MustGet("attemptID").(uint)
	isAdmin := c.GetBool("is_admin")

	results, err := h.attemptService.Results(userID, attemptID, isAdmin)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ListMyAttempts возвращает попытки текущего пользователя с пагинацией
func (h *TestHandler) ListMyAttempts(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	attempts, total, err := h.attemptService.ListByUser(userID, perPage, (page-1)*perPage)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	resp := dto.PaginatedAttemptsResponse{
		Attempts: make([]dto.AttemptResponse, 0, len(attempts)),
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
	for i := range attempts {
		resp.Attempts = append(resp.Attempts, dto.NewAttemptResponse(&attempts[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// CreateTemplateRequest представляет запрос на создание опросника
type CreateTemplateRequest struct {
	Key         string `json:"key" binding:"required,min=2,max=50"`
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

// CreateTemplate создает опросник или возвращает уже существующий с тем же
// ключом (идемпотентно для повторных запросов деплоя)
func (h *TestHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := h.templateService.LookupOrCreate(req.Key, req.Name, req.Description)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTemplateResponse(template, false))
}

// AddQuestionsRequest представляет запрос на добавление вопросов
type AddQuestionsRequest struct {
	Questions []struct {
		Text             string  `json:"text" binding:"required,min=3,max=500"`
		Order            int     `json:"order"`
		MinValue         int     `json:"min_value"`
		MaxValue         int     `json:"max_value" binding:"required"`
		Weight           float64 `json:"weight"`
		DimensionPair    string  `json:"dimension_pair" binding:"omitempty,len=2"`
		PositiveLetter   string  `json:"positive_letter" binding:"omitempty,len=1"`
		ShowIfQuestionID *uint   `json:"show_if_question_id"`
		ShowIfValue      *int    `json:"show_if_value"`
	} `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions добавляет вопросы к опроснику (админ)
func (h *TestHandler) AddQuestions(c *gin.Context) {
	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, entity.Question{
			Text:             q.Text,
			Order:            q.Order,
			MinValue:         q.MinValue,
			MaxValue:         q.MaxValue,
			Weight:           q.Weight,
			DimensionPair:    q.DimensionPair,
			PositiveLetter:   q.PositiveLetter,
			ShowIfQuestionID: q.ShowIfQuestionID,
			ShowIfValue:      q.ShowIfValue,
		})
	}

	created, err := h.templateService.AddQuestions(c.Param("key"), questions)
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	resp := make([]*dto.QuestionResponse, 0, len(created))
	for i := range created {
		resp = append(resp, dto.NewQuestionResponse(&created[i]))
	}
	c.JSON(http.StatusCreated, resp)
}

// ValidateRules проверяет правила ветвления опросника (админ)
func (h *TestHandler) ValidateRules(c *gin.Context) {
	result, err := h.templateService.ValidateRules(c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBranchingTree возвращает структуру ветвления опросника (админ)
func (h *TestHandler) GetBranchingTree(c *gin.Context) {
	tree, err := h.templateService.BranchingTree(c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// GetStats возвращает статистику опросника (админ)
func (h *TestHandler) GetStats(c *gin.Context) {
	stats, err := h.templateService.Stats(c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportResults выгружает завершенные попытки опросника в CSV или XLSX (админ)
func (h *TestHandler) ExportResults(c *gin.Context) {
	template, attempts, err := h.templateService.CompletedAttempts(c.Param("key"))
	if err != nil {
		h.handleTestError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_results_%s", template.Key, time.Now().Format("2006-01-02"))

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, attempts, filename)
	case "csv":
		h.exportCSV(c, attempts, filename)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}

// exportCSV выгружает попытки в CSV
func (h *TestHandler) exportCSV(c *gin.Context, attempts []entity.TestAttempt, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Попытка", "Пользователь", "Сырой балл", "Нормализованный балл", "Интерпретация", "Завершена"})

	for i := range attempts {
		a := &attempts[i]
		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.Format(time.RFC3339)
		}
		writer.Write([]string{
			strconv.FormatUint(uint64(a.ID), 10),
			strconv.FormatUint(uint64(a.UserID), 10),
			strconv.FormatFloat(a.RawScore, 'f', 2, 64),
			strconv.FormatFloat(a.NormalizedScore, 'f', 1, 64),
			sanitizeForExcel(a.Interpretation),
			completedAt,
		})
	}
}

// exportXLSX выгружает попытки в Excel с использованием StreamWriter
func (h *TestHandler) exportXLSX(c *gin.Context, attempts []entity.TestAttempt, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[TestHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Попытка", "Пользователь", "Сырой балл", "Нормализованный балл", "Интерпретация", "Завершена"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[TestHandler] Ошибка записи заголовков: %v", err)
	}

	for i := range attempts {
		a := &attempts[i]
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		completedAt := ""
		if a.CompletedAt != nil {
			completedAt = a.CompletedAt.Format(time.RFC3339)
		}

		row := []interface{}{a.ID, a.UserID, a.RawScore, a.NormalizedScore, sanitizeForExcel(a.Interpretation), completedAt}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[TestHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[TestHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[TestHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleTestError преобразует ошибки сервисного слоя в HTTP статусы
func (h *TestHandler) handleTestError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in TestHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
