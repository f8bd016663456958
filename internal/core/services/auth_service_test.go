package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/config"
	"hostel-leave-api/internal/core/domain"
	"hostel-leave-api/internal/pkg/jwt"
	"hostel-leave-api/internal/pkg/password"
)

type sentReset struct {
	to, name, url string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentReset{to: to, name: name, url: resetURL})
	return nil
}

func (m *fakeMailer) last() sentReset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		AppMode:       "dev",
		FrontendURL:   "http://localhost:5173",
		ResetTokenTTL: 15 * time.Minute,
	}
}

func newTestAuth(t *testing.T) (*AuthService, *repositories.Store, *fakeMailer) {
	t.Helper()
	store := repositories.NewMemoryStore()
	mailer := &fakeMailer{}
	issuer := jwt.NewHMACIssuer("test-secret", "hostel-leave-api", 7*24*time.Hour)
	return NewAuthService(store.Users, issuer, mailer, testConfig()), store, mailer
}

func registerAlice(t *testing.T, auth *AuthService) *AuthResponse {
	t.Helper()
	resp, err := auth.Register(context.Background(), &RegisterInput{
		Name:     "Alice",
		Email:    "alice@x.com",
		Phone:    "9999999999",
		Password: "secret12",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return resp
}

func TestRegisterDefaultsToStudent(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	resp := registerAlice(t, auth)
	if resp.User.Role != "student" {
		t.Fatalf("role = %q, want student", resp.User.Role)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.User.Password == "secret12" {
		t.Fatalf("password stored in plaintext")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	auth, store, _ := newTestAuth(t)
	registerAlice(t, auth)

	_, err := auth.Register(context.Background(), &RegisterInput{
		Name: "Alice Again", Email: "ALICE@x.com", Password: "another123",
	})
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("err = %v, want ErrUserAlreadyExists", err)
	}

	count, _ := store.Users.CountByRole(context.Background(), "student")
	if count != 1 {
		t.Fatalf("student count = %d, want 1", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	_, err := auth.Register(context.Background(), &RegisterInput{Email: "nope", Password: "short"})
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, field := range []string{"name", "email", "password"} {
		if vErr.Fields[field] == "" {
			t.Fatalf("missing %s in %v", field, vErr.Fields)
		}
	}
}

func TestLoginTokenMatchesUser(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	registered := registerAlice(t, auth)

	resp, err := auth.Login(context.Background(), &LoginInput{Email: "alice@x.com", Password: "secret12"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := auth.tokens.Validate(resp.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != registered.User.ID || claims.Role != "student" || claims.Email != "alice@x.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	registerAlice(t, auth)

	_, err := auth.Login(context.Background(), &LoginInput{Email: "bob@x.com", Password: "secret12"})
	if !errors.Is(err, domain.ErrUnknownCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}

	_, err = auth.Login(context.Background(), &LoginInput{Email: "alice@x.com", Password: "wrongpass"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
}

func TestFederatedLoginCreatesOnceAndReuses(t *testing.T) {
	auth, store, _ := newTestAuth(t)
	ctx := context.Background()
	input := func() *FederatedLoginInput {
		return &FederatedLoginInput{Name: "Gina", Email: "gina@x.com", Avatar: "https://img.example.com/g.png"}
	}

	first, err := auth.FederatedLogin(ctx, input())
	if err != nil {
		t.Fatalf("first FederatedLogin: %v", err)
	}
	second, err := auth.FederatedLogin(ctx, input())
	if err != nil {
		t.Fatalf("second FederatedLogin: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected the same user, got %s and %s", first.User.ID, second.User.ID)
	}
	if first.User.Avatar != "https://img.example.com/g.png" {
		t.Fatalf("avatar = %q", first.User.Avatar)
	}

	stored, _ := store.Users.GetByEmail(ctx, "gina@x.com")
	if password.Verify("", stored.Password) {
		t.Fatalf("placeholder password must not be empty")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	auth, store, mailer := newTestAuth(t)
	ctx := context.Background()
	registerAlice(t, auth)

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	if err := auth.RequestPasswordReset(ctx, "alice@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	sent := mailer.last()
	prefix := "http://localhost:5173/reset-password/"
	if sent.to != "alice@x.com" || sent.name != "Alice" || !strings.HasPrefix(sent.url, prefix) {
		t.Fatalf("sent = %+v", sent)
	}
	token := strings.TrimPrefix(sent.url, prefix)

	stored, _ := store.Users.GetByEmail(ctx, "alice@x.com")
	if stored.ResetTokenExpiry == nil || !stored.ResetTokenExpiry.Equal(now.Add(15*time.Minute)) {
		t.Fatalf("expiry = %v", stored.ResetTokenExpiry)
	}
	if stored.ResetToken == nil || *stored.ResetToken == token {
		t.Fatalf("token should be stored hashed")
	}

	if err := auth.ResetPassword(ctx, token, "NewPass123"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if _, err := auth.Login(ctx, &LoginInput{Email: "alice@x.com", Password: "secret12"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password err = %v", err)
	}
	if _, err := auth.Login(ctx, &LoginInput{Email: "alice@x.com", Password: "NewPass123"}); err != nil {
		t.Fatalf("new password login: %v", err)
	}

	// single use
	if err := auth.ResetPassword(ctx, token, "Another123"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("reuse err = %v", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	auth, _, mailer := newTestAuth(t)
	ctx := context.Background()
	registerAlice(t, auth)

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }
	if err := auth.RequestPasswordReset(ctx, "alice@x.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	token := strings.TrimPrefix(mailer.last().url, "http://localhost:5173/reset-password/")

	now = now.Add(16 * time.Minute)
	if err := auth.ResetPassword(ctx, token, "NewPass123"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("err = %v, want ErrInvalidResetToken", err)
	}
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	if err := auth.RequestPasswordReset(context.Background(), "ghost@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestRequestPasswordResetMailFailureKeepsToken(t *testing.T) {
	auth, store, mailer := newTestAuth(t)
	ctx := context.Background()
	registerAlice(t, auth)
	mailer.err = errors.New("smtp down")

	err := auth.RequestPasswordReset(ctx, "alice@x.com")
	if !errors.Is(err, domain.ErrResetEmailFailed) {
		t.Fatalf("err = %v, want ErrResetEmailFailed", err)
	}

	stored, _ := store.Users.GetByEmail(ctx, "alice@x.com")
	if stored.ResetToken == nil {
		t.Fatalf("token should remain persisted after a dispatch failure")
	}
}
