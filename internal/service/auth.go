package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"
	"rentmarket-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Signup(ctx context.Context, name, email, phone, password string) (*domain.User, string, string, error) {
	logger.EnterMethod("authService.Signup", "email", email)

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, "", "", domain.NewValidationError("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", "", domain.NewValidationError("email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return nil, "", "", domain.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.ExitMethodWithError("authService.Signup", err, "reason", "hash failed")
		return nil, "", "", domain.NewDependencyError("could not create account", err)
	}

	user := &domain.User{
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: string(hash),
		Name:         name,
		Role:         domain.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			err = domain.NewConflictError("email %s is already registered", email)
		}
		logger.ExitMethodWithError("authService.Signup", err, "email", email)
		return nil, "", "", storageError(err)
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	logger.ExitMethod("authService.Signup", "userID", user.ID)
	return user, access, refresh, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", storageError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != security.TokenTypeAccess {
		return nil, security.ErrWrongTokenType
	}
	p := claims.Principal()
	return &p, nil
}

func (s *authService) generateTokens(user *domain.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", "", domain.NewDependencyError("could not issue token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", domain.NewDependencyError("could not issue token", err)
	}
	return access, refresh, nil
}
