package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/wellbeing-api/internal/config"
	"github.com/yourusername/wellbeing-api/internal/handler"
	"github.com/yourusername/wellbeing-api/internal/middleware"
	pgRepo "github.com/yourusername/wellbeing-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/wellbeing-api/internal/repository/redis"
	"github.com/yourusername/wellbeing-api/internal/service"
	"github.com/yourusername/wellbeing-api/internal/service/branching"
	"github.com/yourusername/wellbeing-api/pkg/auth"
	"github.com/yourusername/wellbeing-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	templateRepo := pgRepo.NewTemplateRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем движок ветвления и сервисы
	validator := branching.NewRulesValidator(&branching.Dependencies{
		QuestionRepo: questionRepo,
		ResponseRepo: responseRepo,
		AttemptRepo:  attemptRepo,
	})

	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	userService := service.NewUserService(userRepo)
	templateService := service.NewTemplateService(templateRepo, questionRepo, attemptRepo, cacheRepo, validator)
	attemptService := service.NewAttemptService(
		attemptRepo, responseRepo, templateRepo, questionRepo, cacheRepo,
		service.NewInterpreterRegistry(),
	)

	// Инициализируем обработчики и middleware
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	testHandler := handler.NewTestHandler(templateService, attemptService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.Default()

	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Аутентификация
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Маршруты, требующие аутентификации
		authed := api.Group("/")
		authed.Use(authMiddleware.RequireAuth())
		{
			authed.GET("/users/me", userHandler.GetMe)
			authed.PATCH("/users/me", userHandler.UpdateMe)

			authed.GET("/tests", testHandler.ListTemplates)
			authed.GET("/tests/:key", testHandler.GetTemplate)
			authed.POST("/tests/:key/attempts", testHandler.StartAttempt)
			authed.POST("/tests/:key/submit", testHandler.SubmitFixedForm)

			authed.GET("/attempts", testHandler.ListMyAttempts)

			attempts := authed.Group("/attempts/:id")
			attempts.Use(middleware.ExtractUintParam("id", "attemptID"))
			{
				attempts.GET("/next", testHandler.NextQuestion)
				attempts.POST("/answers", testHandler.SubmitAnswer)
				attempts.GET("/progress", testHandler.GetProgress)
				attempts.GET("/results", testHandler.GetResults)
			}
		}

		// Админ-маршруты
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			admin.POST("/tests", testHandler.CreateTemplate)
			admin.POST("/tests/:key/questions", testHandler.AddQuestions)
			admin.GET("/tests/:key/validate", testHandler.ValidateRules)
			admin.GET("/tests/:key/branching-tree", testHandler.GetBranchingTree)
			admin.GET("/tests/:key/stats", testHandler.GetStats)
			admin.GET("/tests/:key/results/export", testHandler.ExportResults)
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
