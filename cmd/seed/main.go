package main

import (
	"errors"
	"log"
	"os"

	"github.com/yourusername/wellbeing-api/internal/config"
	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
	pgRepo "github.com/yourusername/wellbeing-api/internal/repository/postgres"
	"github.com/yourusername/wellbeing-api/pkg/database"
)

// questionSeed описывает вопрос демонстрационного шаблона.
// GateOrder ссылается на порядковый номер вопроса-условия внутри того же
// шаблона (вопросы создаются последовательно, поэтому ссылка всегда
// разрешается в уже присвоенный ID).
type questionSeed struct {
	Text           string
	Order          int
	MinValue       int
	MaxValue       int
	Weight         float64
	DimensionPair  string
	PositiveLetter string
	GateOrder      int // 0 — безусловный вопрос
	Threshold      int
}

type templateSeed struct {
	Key         string
	Name        string
	Description string
	Questions   []questionSeed
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	userRepo := pgRepo.NewUserRepo(db)
	templateRepo := pgRepo.NewTemplateRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)

	seedUsers(userRepo)

	for _, seed := range sampleTemplates() {
		if err := seedTemplate(templateRepo, questionRepo, seed); err != nil {
			log.Printf("[Seed] Ошибка при создании шаблона key=%s: %v", seed.Key, err)
			os.Exit(1)
		}
	}

	log.Println("[Seed] Демонстрационные данные готовы")
}

// seedUsers создаёт демо-аккаунты администратора и сотрудника.
// Пароли хешируются хуком BeforeSave сущности User.
func seedUsers(userRepo *pgRepo.UserRepo) {
	users := []entity.User{
		{
			Email:    "admin@example.com",
			FullName: "Demo Admin",
			Password: "admin12345",
			Role:     entity.RoleAdmin,
			IsActive: true,
		},
		{
			Email:    "employee@example.com",
			FullName: "Demo Employee",
			Password: "employee12345",
			Role:     entity.RoleEmployee,
			IsActive: true,
		},
	}

	for i := range users {
		if _, err := userRepo.GetByEmail(users[i].Email); err == nil {
			log.Printf("[Seed] Пользователь %s уже существует, пропускаем", users[i].Email)
			continue
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[Seed] Ошибка при проверке пользователя %s: %v", users[i].Email, err)
			os.Exit(1)
		}
		if err := userRepo.Create(&users[i]); err != nil {
			log.Printf("[Seed] Ошибка при создании пользователя %s: %v", users[i].Email, err)
			os.Exit(1)
		}
		log.Printf("[Seed] Создан пользователь %s (role=%s)", users[i].Email, users[i].Role)
	}
}

// seedTemplate создаёт шаблон и его вопросы. Вопросы создаются по одному
// в порядке возрастания Order, чтобы условные ссылки (GateOrder)
// разрешались в уже присвоенные базой идентификаторы.
func seedTemplate(templateRepo *pgRepo.TemplateRepo, questionRepo *pgRepo.QuestionRepo, seed templateSeed) error {
	if _, err := templateRepo.GetByKey(seed.Key); err == nil {
		log.Printf("[Seed] Шаблон key=%s уже существует, пропускаем", seed.Key)
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	template := entity.TestTemplate{
		Key:         seed.Key,
		Name:        seed.Name,
		Description: seed.Description,
	}
	if err := templateRepo.Create(&template); err != nil {
		return err
	}

	idByOrder := make(map[int]uint, len(seed.Questions))
	for _, qs := range seed.Questions {
		question := entity.Question{
			TemplateID:     template.ID,
			Text:           qs.Text,
			Order:          qs.Order,
			MinValue:       qs.MinValue,
			MaxValue:       qs.MaxValue,
			Weight:         qs.Weight,
			DimensionPair:  qs.DimensionPair,
			PositiveLetter: qs.PositiveLetter,
		}
		if qs.GateOrder != 0 {
			gateID, ok := idByOrder[qs.GateOrder]
			if !ok {
				log.Printf("[Seed] Шаблон key=%s: вопрос order=%d ссылается на несозданный order=%d",
					seed.Key, qs.Order, qs.GateOrder)
				os.Exit(1)
			}
			threshold := qs.Threshold
			question.ShowIfQuestionID = &gateID
			question.ShowIfValue = &threshold
		}
		if err := questionRepo.Create(&question); err != nil {
			return err
		}
		idByOrder[qs.Order] = question.ID
	}

	log.Printf("[Seed] Создан шаблон %s (key=%s, вопросов: %d)", seed.Name, seed.Key, len(seed.Questions))
	return nil
}

// sampleTemplates возвращает демонстрационные опросники с ветвлением.
func sampleTemplates() []templateSeed {
	return []templateSeed{
		{
			Key:         "wellbeing_branching",
			Name:        "Adaptive Wellbeing Assessment",
			Description: "Dynamic assessment that adapts based on your responses",
			Questions: []questionSeed{
				{Text: "How are you feeling today?", Order: 1, MinValue: 1, MaxValue: 5, Weight: 1.0},
				{Text: "How often do you exercise per week?", Order: 2, MinValue: 0, MaxValue: 7, Weight: 0.8},
				{Text: "Have you been experiencing persistent sadness or anxiety?", Order: 3,
					MinValue: 1, MaxValue: 4, Weight: 1.5, DimensionPair: "DS", PositiveLetter: "D",
					GateOrder: 1, Threshold: 2},
				{Text: "What activities bring you the most joy and satisfaction?", Order: 4,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "WB", PositiveLetter: "W",
					GateOrder: 1, Threshold: 4},
				{Text: "How would you rate your current physical fitness level?", Order: 5,
					MinValue: 1, MaxValue: 5, Weight: 1.2, DimensionPair: "PF", PositiveLetter: "P",
					GateOrder: 2, Threshold: 3},
				{Text: "Have you considered seeking professional mental health support?", Order: 6,
					MinValue: 1, MaxValue: 3, Weight: 2.0, DimensionPair: "HS", PositiveLetter: "H",
					GateOrder: 3, Threshold: 3},
				{Text: "Overall, how satisfied are you with your current life situation?", Order: 7,
					MinValue: 1, MaxValue: 10, Weight: 1.0, DimensionPair: "OS", PositiveLetter: "O"},
				{Text: "How satisfied are you with your work-life balance?", Order: 8,
					MinValue: 1, MaxValue: 5, Weight: 1.1, DimensionPair: "WL", PositiveLetter: "W",
					GateOrder: 7, Threshold: 5},
			},
		},
		{
			Key:         "personality_adaptive",
			Name:        "Adaptive Personality Assessment",
			Description: "Personality test that adapts based on your responses",
			Questions: []questionSeed{
				{Text: "I prefer spending time in large social gatherings", Order: 1,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "EI", PositiveLetter: "E"},
				{Text: "I am highly organized and methodical in my approach", Order: 2,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "C", PositiveLetter: "C"},
				{Text: "I often take charge in group situations", Order: 3,
					MinValue: 1, MaxValue: 5, Weight: 1.2, DimensionPair: "EI", PositiveLetter: "E",
					GateOrder: 1, Threshold: 4},
				{Text: "I find solitary activities energizing and fulfilling", Order: 4,
					MinValue: 1, MaxValue: 5, Weight: 1.2, DimensionPair: "EI", PositiveLetter: "I",
					GateOrder: 1, Threshold: 2},
				{Text: "I actively seek out new and unusual experiences", Order: 5,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "O", PositiveLetter: "O"},
				{Text: "I always plan activities well in advance", Order: 6,
					MinValue: 1, MaxValue: 5, Weight: 1.3, DimensionPair: "C", PositiveLetter: "C",
					GateOrder: 2, Threshold: 4},
			},
		},
		{
			Key:         "stress_adaptive",
			Name:        "Adaptive Stress Assessment",
			Description: "Stress assessment that focuses on your specific stressors",
			Questions: []questionSeed{
				{Text: "How stressed do you feel on a typical day?", Order: 1,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "GS", PositiveLetter: "S"},
				{Text: "How much stress does your work or studies cause you?", Order: 2,
					MinValue: 1, MaxValue: 5, Weight: 1.2, DimensionPair: "WS", PositiveLetter: "W",
					GateOrder: 1, Threshold: 3},
				{Text: "How much stress do your personal relationships cause you?", Order: 3,
					MinValue: 1, MaxValue: 5, Weight: 1.1, DimensionPair: "RS", PositiveLetter: "R",
					GateOrder: 1, Threshold: 3},
				{Text: "How effectively do you handle stressful situations?", Order: 4,
					MinValue: 1, MaxValue: 5, Weight: 1.0, DimensionPair: "CS", PositiveLetter: "C"},
				{Text: "How much does stress affect your sleep quality?", Order: 5,
					MinValue: 1, MaxValue: 5, Weight: 1.3, DimensionPair: "SI", PositiveLetter: "S",
					GateOrder: 1, Threshold: 4},
			},
		},
	}
}
