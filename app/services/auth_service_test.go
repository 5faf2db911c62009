package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/db/testdb"
	"github.com/modaltela/modal-tela-api/app/helpers"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/repositories"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]string{}}
}

func (m *memoryTokenStore) Register(ctx context.Context, jti, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[jti] = userID
	return nil
}

func (m *memoryTokenStore) Consume(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tokens[jti]
	delete(m.tokens, jti)
	return ok, nil
}

func (m *memoryTokenStore) Revoke(ctx context.Context, jti string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, jti)
	return nil
}

func newAuthService(t *testing.T) (*AuthService, *TokenService) {
	t.Helper()
	db := testdb.Open(t)
	tokens := NewTokenService("test-secret", 15*time.Minute, 24*time.Hour, newMemoryTokenStore())
	return NewAuthService(repositories.NewUserRepository(db), tokens), tokens
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:           email,
		FirstName:       "Laura",
		LastName:        "Rios",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, registerInput("Laura@Example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "laura@example.com" || user.Role != models.RoleCustomer || !user.IsActive {
		t.Fatalf("unexpected registered user %+v", user)
	}

	if _, err := auth.Register(ctx, registerInput("laura@example.com")); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	result, err := auth.Login(ctx, LoginInput{Email: "LAURA@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Access == "" || result.Refresh == "" || result.User.ID != user.ID {
		t.Fatalf("unexpected login result %+v", result)
	}

	authed, err := auth.Authenticate(ctx, result.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, authed.ID)
	}
	if _, err := auth.Authenticate(ctx, result.Refresh); !apperrors.Is(err, apperrors.KindAuthentication) {
		t.Fatalf("expected refresh token to be refused as access token, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	auth, _ := newAuthService(t)
	in := registerInput("x@example.com")
	in.PasswordConfirm = "different"

	_, err := auth.Register(context.Background(), in)
	if _, ok := apperrors.PublicFields(err)["password_confirm"]; !ok {
		t.Fatalf("expected password_confirm error, got %v", err)
	}
}

func TestAuthService_LoginFailuresShareMessage(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	if _, err := auth.Register(ctx, registerInput("laura@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPass := auth.Login(ctx, LoginInput{Email: "laura@example.com", Password: "nope-nope"})
	_, unknown := auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "nope-nope"})
	for _, err := range []error{wrongPass, unknown} {
		if !apperrors.Is(err, apperrors.KindAuthentication) || apperrors.PublicMessage(err) != invalidCredentials {
			t.Fatalf("expected %q, got %v", invalidCredentials, err)
		}
	}
}

func TestAuthService_RefreshRotates(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	if _, err := auth.Register(ctx, registerInput("laura@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	login, err := auth.Login(ctx, LoginInput{Email: "laura@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	pair, err := auth.Refresh(ctx, login.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.Refresh == login.Refresh {
		t.Fatalf("expected a new refresh token")
	}
	if _, err := auth.Refresh(ctx, login.Refresh); !apperrors.Is(err, apperrors.KindAuthentication) {
		t.Fatalf("expected reuse of a refresh token to fail, got %v", err)
	}

	if err := auth.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.Refresh(ctx, pair.Refresh); !apperrors.Is(err, apperrors.KindAuthentication) {
		t.Fatalf("expected revoked refresh token to fail, got %v", err)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Minute, time.Hour, nil)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }
	user := &models.User{ID: "u1", Email: "a@example.com", Role: models.RoleCustomer}

	pair, err := tokens.IssuePair(context.Background(), user)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := tokens.Parse(pair.Access, TokenTypeAccess); err != nil {
		t.Fatalf("expected fresh token to parse: %v", err)
	}

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := tokens.Parse(pair.Access, TokenTypeAccess); !apperrors.Is(err, apperrors.KindAuthentication) {
		t.Fatalf("expected expired access token to fail, got %v", err)
	}

	other := NewTokenService("other-secret", time.Minute, time.Hour, nil)
	other.now = func() time.Time { return issued }
	if _, err := other.Parse(pair.Access, TokenTypeAccess); !apperrors.Is(err, apperrors.KindAuthentication) {
		t.Fatalf("expected token signed with another secret to fail, got %v", err)
	}
}

func TestAuthService_ChangePasswordAndProfile(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()
	user, err := auth.Register(ctx, registerInput("laura@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	err = auth.ChangePassword(ctx, user, ChangePasswordInput{OldPassword: "wrong-one", NewPassword: "brand-new-pass"})
	if _, ok := apperrors.PublicFields(err)["old_password"]; !ok {
		t.Fatalf("expected old_password error, got %v", err)
	}
	if err := auth.ChangePassword(ctx, user, ChangePasswordInput{OldPassword: "s3cret-pass", NewPassword: "brand-new-pass"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := auth.Login(ctx, LoginInput{Email: "laura@example.com", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	if !helpers.PasswordCompare(user.Password, []byte("brand-new-pass")) {
		t.Fatalf("expected in-memory user to carry the new hash")
	}

	phone := " 3015550000 "
	updated, err := auth.UpdateProfile(ctx, user, ProfileInput{Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Phone != "3015550000" || updated.FirstName != "Laura" {
		t.Fatalf("unexpected profile %+v", updated)
	}
}
