package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"coinwatch/internal/domain/user"
	"coinwatch/pkg/auth"
	"coinwatch/pkg/errors"
	"coinwatch/pkg/logger"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailAlreadyExists is returned when trying to register with existing email
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound is returned when user doesn't exist
	ErrUserNotFound = errors.New("user not found")
	// ErrUserDeactivated is returned when the account is disabled
	ErrUserDeactivated = errors.New("user account is deactivated")
)

// Service handles authentication logic (Application Layer)
type Service struct {
	userRepo user.Repository
	tokens   auth.TokenService
	log      *logger.Logger
}

// NewService creates a new auth service
func NewService(userRepo user.Repository, tokens auth.TokenService, log *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log.With("service", "auth"),
	}
}

// RegisterInput contains data for user registration
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput contains data for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResponse contains auth result with session token
type AuthResponse struct {
	Token string
	User  *user.User
}

// Register registers a new user with email/password
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return nil, errors.ErrInvalidInput
	}

	// Check if email already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	usr := &user.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: string(passwordHash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, usr); err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}

	token, err := s.tokens.Issue(ctx, usr.ID, usr.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	s.log.Infow("User registered",
		"user_id", usr.ID,
		"email", usr.Email,
	)

	return &AuthResponse{
		Token: token,
		User:  usr,
	}, nil
}

// Login authenticates a user with email/password
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return nil, errors.ErrInvalidInput
	}

	usr, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "failed to get user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(input.Password)); err != nil {
		s.log.Debugw("Failed login attempt", "email", input.Email)
		return nil, ErrInvalidCredentials
	}

	if !usr.IsActive {
		return nil, ErrUserDeactivated
	}

	token, err := s.tokens.Issue(ctx, usr.ID, usr.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}

	s.log.Infow("User logged in",
		"user_id", usr.ID,
		"email", usr.Email,
	)

	return &AuthResponse{
		Token: token,
		User:  usr,
	}, nil
}

// Logout revokes the session token so it stops validating before expiry
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.tokens.Revoke(ctx, token); err != nil {
		// An unparseable token has nothing to revoke
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
			return nil
		}
		return errors.Wrap(err, "failed to revoke token")
	}

	return nil
}

// ValidateToken validates a session token and returns the user
func (s *Service) ValidateToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	usr, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "failed to get user")
	}

	if !usr.IsActive {
		return nil, ErrUserDeactivated
	}

	return usr, nil
}
