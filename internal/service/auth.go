package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"carrental/internal/domain"
	"carrental/internal/repo"
)

// minPasswordLen matches the storefront's sign-up rule.
const minPasswordLen = 8

// AuthService handles registration, login, and token issuance. Tokens are
// HS256 JWTs carrying the user id, role, and expiry.
type AuthService struct {
	users    repo.UserRepo
	secret   []byte
	tokenTTL time.Duration

	now func() time.Time
}

// NewAuthService constructs an AuthService signing tokens with secret.
// tokenTTL bounds how long an issued token stays valid.
func NewAuthService(users repo.UserRepo, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates an account and returns the user with a fresh token.
// Returns domain.ErrValidation for malformed input and domain.ErrConflict
// when the email is already registered.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: name, email, and password are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return domain.User{}, "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh token.
// Wrong email and wrong password are indistinguishable to the caller:
// both return domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: invalid credentials: %w", domain.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: invalid credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return user, token, nil
}

// issueToken signs an HS256 JWT for the user.
func (s *AuthService) issueToken(user domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
