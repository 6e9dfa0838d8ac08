package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/Dosada05/tournament-liveops/repositories"
	"github.com/Dosada05/tournament-liveops/utils"
)

type RegisterOperatorInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterOperatorInput) (*models.Operator, error)
	Login(ctx context.Context, email, password string) (*models.Operator, error)
	GetOperator(ctx context.Context, id int) (*models.Operator, error)
}

type authService struct {
	operators repositories.OperatorRepository
}

func NewAuthService(operators repositories.OperatorRepository) AuthService {
	return &authService{operators: operators}
}

func (s *authService) Register(ctx context.Context, input RegisterOperatorInput) (*models.Operator, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.IsValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidCredentials)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}
	role := input.Role
	if role == "" {
		role = models.RoleViewer
	}
	if role != models.RoleOperator && role != models.RoleViewer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrForbiddenOperation, role)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &models.Operator{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.Operator, error) {
	operator, err := s.operators.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, operator.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return operator, nil
}

func (s *authService) GetOperator(ctx context.Context, id int) (*models.Operator, error) {
	operator, err := s.operators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return operator, nil
}
