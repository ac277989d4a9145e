package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hackr_api/internal/common"
	"hackr_api/internal/common/security"
	"hackr_api/internal/domain/model"
	"hackr_api/internal/domain/repository"

	"github.com/google/uuid"
)

const (
	minEmailLength    = 5
	minPasswordLength = 8
)

// ErrEmailTaken is returned by Register for an email that already has an account.
var ErrEmailTaken = common.NewClientError(common.ErrConflict, "Email already taken")

// ErrBadCredentials covers both an unknown email and a wrong password.
var ErrBadCredentials = common.NewClientError(common.ErrInvalidCredentials, "Email or Password incorrect")

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenService
	// dummyHash is compared against when the email is unknown so both failure
	// paths pay for one bcrypt comparison.
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenService) *AuthService {
	dummy, err := security.HashPassword(uuid.NewString())
	if err != nil {
		slog.Warn("preparing dummy password hash failed", "error", err)
	}
	return &AuthService{userRepo: userRepo, tokens: tokens, dummyHash: dummy}
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"-"`
}

func (req *RegisterRequest) validate() error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.Email == "" || req.Password == "" {
		return common.NewClientError(common.ErrValidation, "firstName, email and password are required")
	}
	if len(req.Email) < minEmailLength || !strings.Contains(req.Email, "@") {
		return common.NewClientError(common.ErrValidation,
			fmt.Sprintf("email must be a valid address of at least %d characters", minEmailLength))
	}
	if len(req.Password) < minPasswordLength {
		return common.NewClientError(common.ErrValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(req.Password) > security.MaxPasswordBytes {
		return common.NewClientError(common.ErrValidation,
			fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordBytes))
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// The unique constraint on users.email is the final arbiter; this lookup
	// only gives the common case a clean answer.
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		FirstName:      req.FirstName,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser, // Default role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.FirstName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear password before returning
	return &AuthResponse{Message: "User registered successfully", Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrBadCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.CheckPasswordHash(req.Password, s.dummyHash)
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.FirstName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{Message: "Logged in successfully", Token: token, User: user}, nil
}

// AdminSeed describes the account created when no admin exists yet.
type AdminSeed struct {
	FirstName string
	Email     string
	Password  string
}

// EnsureDefaultAdmin creates the seed admin unless some admin already exists.
// It reports whether an account was created and is safe to call repeatedly.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	exists, err := s.userRepo.ExistsWithRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("checking for admin: %w", err)
	}
	if exists {
		slog.Info("admin already exists")
		return false, nil
	}

	if seed.FirstName == "" {
		seed.FirstName = "Admin"
	}
	if len(seed.Password) > security.MaxPasswordBytes {
		return false, fmt.Errorf("default admin password longer than %d bytes: %w", security.MaxPasswordBytes, common.ErrValidation)
	}
	hashedPassword, err := security.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.User{
		ID:             uuid.NewString(),
		FirstName:      seed.FirstName,
		Email:          seed.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Another instance won the race with the same seed email.
			slog.Info("admin created concurrently", "email", seed.Email)
			return false, nil
		}
		return false, fmt.Errorf("creating default admin: %w", err)
	}

	slog.Info("default admin created", "email", seed.Email)
	return true, nil
}
