package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	refreshTokens    map[string]*models.RefreshToken
	refreshTokenErr  error
	auditLogs        []*models.AuditLog
	passwordAudits   []*models.PasswordAuditEntry
	lastLoginUpdated bool
	sessionsRevoked  bool
	updatedHash      string
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.updatedHash = passwordHash
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.sessionsRevoked = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.refreshTokens == nil {
		m.refreshTokens = make(map[string]*models.RefreshToken)
	}
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.refreshTokenErr != nil {
		return nil, m.refreshTokenErr
	}
	rt, ok := m.refreshTokens[token]
	if !ok {
		return nil, errors.New("not found")
	}
	return rt, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, token := range m.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func (m *mockAuthRepo) CreatePasswordAudit(ctx context.Context, entry *models.PasswordAuditEntry) error {
	m.passwordAudits = append(m.passwordAudits, entry)
	return nil
}

type mockCSRFIssuer struct{}

func (m *mockCSRFIssuer) Issue(userID string) string {
	return "csrf-" + userID
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "test",
		SingleSession:      true,
	}
}

func activeUser(t *testing.T) *models.User {
	dept := "dept-sot"
	return &models.User{
		ID:           "u1",
		Email:        "dean@example.com",
		PasswordHash: hashPassword(t, "password123"),
		FullName:     "Dean User",
		Role:         models.RoleDean,
		DepartmentID: &dept,
		Active:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "dean@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "csrf-u1", resp.CSRFToken)
	assert.Equal(t, models.RoleDean, resp.User.Role)
	require.NotNil(t, resp.User.DepartmentID)
	assert.Equal(t, "dept-sot", *resp.User.DepartmentID)
	assert.True(t, repo.lastLoginUpdated)
	assert.True(t, repo.sessionsRevoked)
	assert.Len(t, repo.auditLogs, 1)
}

func TestLoginSurfacesMustChangePassword(t *testing.T) {
	user := activeUser(t)
	user.MustChangePassword = true
	repo := &mockAuthRepo{userByEmail: user}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "dean@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, resp.User.MustChangePassword)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "dean@example.com", Password: "wrong-pass1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	repo := &mockAuthRepo{userByEmail: user}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "dean@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	user := activeUser(t)
	repo := &mockAuthRepo{
		userByID: user,
		refreshTokens: map[string]*models.RefreshToken{
			"old-token": {ID: "rt1", UserID: "u1", Token: "old-token", ExpiresAt: time.Now().Add(time.Hour)},
		},
	}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.True(t, repo.refreshTokens["old-token"].Revoked)
}

func TestRefreshTokenExpired(t *testing.T) {
	repo := &mockAuthRepo{
		userByID: activeUser(t),
		refreshTokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().Add(-time.Hour)},
		},
	}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordMissingFields(t *testing.T) {
	repo := &mockAuthRepo{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{NewPassword: "", ConfirmPassword: ""})
	require.Error(t, err)
	assert.Equal(t, "All required fields must be filled", appErrors.FromError(err).Message)
}

func TestChangePasswordMismatch(t *testing.T) {
	repo := &mockAuthRepo{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{NewPassword: "newpass123", ConfirmPassword: "different123"})
	require.Error(t, err)
	assert.Equal(t, "New password and confirmation do not match", appErrors.FromError(err).Message)
}

func TestChangePasswordPolicy(t *testing.T) {
	repo := &mockAuthRepo{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	cases := []string{"short1", "onlyletters", "12345678"}
	for _, password := range cases {
		err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{NewPassword: password, ConfirmPassword: password})
		require.Error(t, err, password)
		assert.Equal(t, appErrors.ErrPasswordPolicy.Code, appErrors.FromError(err).Code, password)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	repo := &mockAuthRepo{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "not-the-password1",
		NewPassword:     "newpass123",
		ConfirmPassword: "newpass123",
	})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", appErrors.FromError(err).Message)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := &mockAuthRepo{userByID: activeUser(t)}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpass123",
		ConfirmPassword: "newpass123",
	})
	require.NoError(t, err)
	assert.True(t, repo.sessionsRevoked)
	assert.NotEmpty(t, repo.updatedHash)
	require.Len(t, repo.passwordAudits, 1)
	assert.Equal(t, models.PasswordAuditSelfChange, repo.passwordAudits[0].Action)
}

func TestChangePasswordForcedSkipsCurrentCheck(t *testing.T) {
	user := activeUser(t)
	user.MustChangePassword = true
	repo := &mockAuthRepo{userByID: user}
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		NewPassword:     "newpass123",
		ConfirmPassword: "newpass123",
	})
	require.NoError(t, err)
	require.Len(t, repo.passwordAudits, 1)
	assert.Equal(t, models.PasswordAuditForcedFirst, repo.passwordAudits[0].Action)
	assert.True(t, repo.sessionsRevoked)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser(t)}
	svc := NewAuthService(repo, &mockCSRFIssuer{}, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "dean@example.com", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleDean, claims.Role)
	assert.Equal(t, "dept-sot", claims.DepartmentID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
