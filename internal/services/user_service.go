package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"leadcrm/internal/apperr"
	"leadcrm/internal/models"
	"leadcrm/internal/repositories"
	"leadcrm/internal/utils"
)

const (
	MinPasswordLength  = 8
	badCredentialsText = "Bad Credentials!"
)

// Session is a signed-in user together with the token bound to it.
type Session struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type UserService interface {
	Register(ctx context.Context, req models.SignupRequest) (*Session, error)
	Login(ctx context.Context, req models.LoginRequest) (*Session, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, req models.SignupRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || fullName == "" || req.Password == "" {
		return nil, apperr.Validation("Fill all the fields.")
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperr.Conflict("User with this email already exists.")
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	id, err := utils.NewObjectID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("User with this email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, exp, err := s.authService.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
			// warn but do not fail signup
			log.WithField("user_id", user.ID).WithError(err).Warn("[auth][signup] welcome email failed")
		}
	}

	log.WithField("user_id", user.ID).Info("[auth][signup] user created")
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// Login answers with the same error for an unknown email and a wrong password.
func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.BadCredentials(badCredentialsText)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Info("[auth][login] unknown email")
			return nil, apperr.BadCredentials(badCredentialsText)
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if err := s.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		log.WithField("user_id", user.ID).Info("[auth][login] password mismatch")
		return nil, apperr.BadCredentials(badCredentialsText)
	}

	token, exp, err := s.authService.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", user.ID).Info("[auth][login] success")
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}
