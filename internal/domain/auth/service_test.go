package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
)

type mockUserRepo struct {
	byID    map[id.ID]*User
	byEmail map[string]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[id.ID]*User),
		byEmail: make(map[string]*User),
	}
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	cp := *user
	m.byID[user.ID] = &cp
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *User) error {
	cp := *user
	m.byID[user.ID] = &cp
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *mockUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

type mockTokenRepo struct {
	byHash map[string]*RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{byHash: make(map[string]*RefreshToken)}
}

func (m *mockTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	cp := *token
	m.byHash[token.TokenHash] = &cp
	return nil
}

func (m *mockTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := m.byHash[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", tokenHash)
	}
	cp := *t
	return &cp, nil
}

func (m *mockTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	now := time.Now()
	for _, t := range m.byHash {
		if t.ID == tokenID {
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (m *mockTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	now := time.Now()
	for _, t := range m.byHash {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (m *mockTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func newTestService() (*Service, *mockUserRepo, *mockTokenRepo) {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	svc := NewService(userRepo, tokenRepo, jwtService, DefaultServiceConfig())
	return svc, userRepo, tokenRepo
}

func TestService_Register(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
		Name:     "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password2"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestService_Register_ShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.com", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Login(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	tokens, user, err := svc.Login(ctx, Credentials{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotNil(t, user.LastLoginAt)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "wrong"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	for i := 0; i < svc.config.MaxLoginAttempts; i++ {
		_, _, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "wrong"})
		require.Error(t, err)
	}

	stored, err := userRepo.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsLocked())

	// The right password does not help while locked out.
	_, _, err = svc.Login(ctx, Credentials{Email: "a@b.com", Password: "password1"})
	require.Error(t, err)
}

func TestService_RefreshToken_RotatesExactlyOnce(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	tokens, _, err := svc.Login(ctx, Credentials{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The consumed token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestService_Logout_RevokesAllTokens(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	tokens, _, err := svc.Login(ctx, Credentials{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	require.Error(t, err)
}

func TestJWTService_RoundTrip(t *testing.T) {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	userID := id.New()

	token, expiresAt, err := jwtService.GenerateAccessToken(userID, "a@b.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issued := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issued.GenerateAccessToken(id.New(), "a@b.com")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}
