package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/wellbeing-api/internal/domain/entity"
	"github.com/yourusername/wellbeing-api/internal/domain/repository"
	apperrors "github.com/yourusername/wellbeing-api/internal/pkg/errors"
	"github.com/yourusername/wellbeing-api/pkg/auth"
)

// AuthService предоставляет методы для работы с аутентификацией
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// RegisterInput содержит данные для регистрации сотрудника
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// AuthResult — результат успешной регистрации или входа
type AuthResult struct {
	User  *entity.User
	Token string
}

// NewAuthService создает новый сервис аутентификации и возвращает ошибку при проблемах
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}, nil
}

// Register регистрирует нового сотрудника и сразу выдает токен
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email '%s' is already registered", apperrors.ErrConflict, email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	user := &entity.User{
		Email:    email,
		FullName: strings.TrimSpace(input.FullName),
		Password: input.Password, // Хешируется в хуке BeforeSave
		Role:     entity.RoleEmployee,
		IsActive: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь %s (ID=%d)", user.Email, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login проверяет учетные данные и выдает токен.
// Несуществующий email и неверный пароль дают одинаковую ошибку:
// перечисление зарегистрированных адресов наружу не утекает.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", apperrors.ErrForbidden)
	}

	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("[AuthService] Вход пользователя %s (ID=%d)", user.Email, user.ID)
	return &AuthResult{User: user, Token: token}, nil
}
