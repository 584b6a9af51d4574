package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/dev-directory/internal/apperror"
	"github.com/sakif/dev-directory/internal/auth"
	"github.com/sakif/dev-directory/internal/model"
)

// =========================================================================
// MOCK USER REPOSITORY
// =========================================================================

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	stored := *u
	return &stored, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			stored := *u
			return &stored, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("user", user.Email)
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

// =========================================================================
// TEST HELPER
// =========================================================================

func newTestAuth(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-test-secret")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(repo, tokens, passwords, logger), repo
}

// =========================================================================
// SIGNUP TESTS
// =========================================================================

func TestSignup_Valid(t *testing.T) {
	svc, _ := newTestAuth(t)

	res, err := svc.Signup(context.Background(), "Dana", "dana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if res.User.ID == "" {
		t.Error("Signup() did not create a user")
	}
	if res.User.PasswordHash == "" {
		t.Error("Signup() stored no password hash")
	}
	if res.Token == "" {
		t.Fatal("Signup() issued no token")
	}

	// The issued token must validate back to the new user.
	userID, err := svc.ValidateToken(res.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if userID != res.User.ID {
		t.Errorf("token subject = %q, want %q", userID, res.User.ID)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Signup(ctx, "Imposter", "DANA@example.com", "different1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Signup() error = %v, want ErrConflict", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@example.com", "secret123"},
		{"bad email", "Dana", "not-an-email", "secret123"},
		{"empty email", "Dana", "", "secret123"},
		{"short password", "Dana", "a@example.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.userName, tt.email, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Signup() error = %v, want ErrValidation", err)
			}
		})
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Valid(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Login(ctx, "dana@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.User.ID != signedUp.User.ID {
		t.Errorf("Login() user = %q, want %q", res.User.ID, signedUp.User.ID)
	}
	if res.Token == "" {
		t.Error("Login() issued no token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Dana", "dana@example.com", "secret123"); err != nil {
		t.Fatal(err)
	}

	res, err := svc.Login(ctx, "dana@example.com", "wrong-password")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if res != nil {
		t.Error("Login() returned a result alongside the error")
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuth(t)

	// Same error as a wrong password, so responses don't reveal which
	// emails are registered.
	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_OAuthAccountHasNoPassword(t *testing.T) {
	svc, repo := newTestAuth(t)
	ctx := context.Background()

	// GitHub accounts are stored with an empty hash.
	if err := repo.Create(ctx, &model.User{Name: "Octo", Email: "octo@example.com"}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Login(ctx, "octo@example.com", "")
	if !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

// =========================================================================
// GITHUB TESTS
// =========================================================================

func TestLoginOrRegisterGitHub(t *testing.T) {
	svc, repo := newTestAuth(t)
	ctx := context.Background()

	ghUser := &auth.GitHubUser{ID: 42, Login: "octo", Name: "Octo Cat", Email: "octo@example.com"}

	first, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if first.User.Name != "Octo Cat" {
		t.Errorf("Name = %q, want the GitHub profile name", first.User.Name)
	}
	if first.User.PasswordHash != "" {
		t.Error("OAuth account was given a password hash")
	}

	// Second login reuses the account instead of creating another.
	second, err := svc.LoginOrRegisterGitHub(ctx, ghUser)
	if err != nil {
		t.Fatalf("second LoginOrRegisterGitHub() error = %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("second login created user %q, want %q", second.User.ID, first.User.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo holds %d users, want 1", len(repo.users))
	}
}

func TestLoginOrRegisterGitHub_NoEmail(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.LoginOrRegisterGitHub(context.Background(), &auth.GitHubUser{ID: 1, Login: "ghost"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// TOKEN / LOOKUP TESTS
// =========================================================================

func TestGetUserByID_EmptyID(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.GetUserByID(context.Background(), "")
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("GetUserByID() error = %v, want ErrUnauthenticated", err)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := newTestAuth(t)

	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("ValidateToken() error = %v, want ErrUnauthenticated", err)
	}
}
