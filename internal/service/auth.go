package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/auth"
	"github.com/sakif/dev-directory/internal/model"
	"github.com/sakif/dev-directory/internal/repository"
)

const MinPasswordLength = 6

// AuthService handles signup, login, and token validation. It never
// reveals whether a failed login was a bad email or a bad password;
// both collapse into apperror.ErrInvalidCredentials.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup registers a new email/password account and logs it in.
// Returns apperror.ErrConflict if the email is already registered.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email address is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	// The repository owns the duplicate-email check and returns
	// ErrConflict; a pre-flight lookup here would just race it.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies an email/password pair and issues a token.
//
// Any failure along the way, unknown email, OAuth-only account, or a
// wrong password, returns apperror.ErrInvalidCredentials so responses
// don't leak which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.InvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		s.logger.Error("failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// OAuth accounts have no hash and can never pass this check.
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("email", email))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub completes a GitHub OAuth callback: the account
// is looked up by email, created on first login, and a token issued.
// OAuth accounts are created with an empty password hash.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("github user must not be nil")
	}
	if ghUser.Email == "" {
		return nil, apperror.ValidationFailed("email", "github account has no public email")
	}

	user, err := s.users.GetByEmail(ctx, ghUser.Email)
	switch {
	case err == nil:
		// Returning user.
	case errors.Is(err, apperror.ErrNotFound):
		name := ghUser.Name
		if name == "" {
			name = ghUser.Login
		}
		user = &model.User{
			Name:  name,
			Email: ghUser.Email,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating github user: %w", err)
		}
		s.logger.Info("user registered via github",
			slog.String("userID", user.ID),
			slog.String("login", ghUser.Login),
		)
	default:
		return nil, fmt.Errorf("looking up github user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via github", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for an internal id. Used by /api/me
// after the middleware has validated the token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthenticated("no user in request context")
	}
	return s.users.GetByID(ctx, id)
}

// ValidateToken delegates to the token service; callers only need to
// import this package.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	return s.tokens.Validate(tokenStr)
}
