package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

func csrfRequest(t *testing.T, tokens *CSRFTokens, method, token string, claims *models.JWTClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", nil)
	if token != "" {
		c.Request.Header.Set(CSRFHeader, token)
	}
	if claims != nil {
		c.Set(ContextUserKey, claims)
	}
	CSRF(tokens)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return w
}

func TestCSRFIssueVerifyRoundTrip(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)

	token := tokens.Issue("u1")
	assert.True(t, tokens.Verify("u1", token))
	assert.False(t, tokens.Verify("u2", token))
	assert.False(t, tokens.Verify("u1", token+"x"))
	assert.False(t, tokens.Verify("u1", "garbage"))
}

func TestCSRFVerifyExpired(t *testing.T) {
	tokens := NewCSRFTokens("secret", -2*time.Hour)
	// negative ttl falls back to the default, so build an expired window
	tokens.ttl = -time.Hour

	token := tokens.Issue("u1")
	assert.False(t, tokens.Verify("u1", token))
}

func TestCSRFMiddlewareAllowsValidToken(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)
	claims := &models.JWTClaims{UserID: "u1"}

	w := csrfRequest(t, tokens, http.MethodPost, tokens.Issue("u1"), claims)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddlewareRejectsMissingToken(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)
	claims := &models.JWTClaims{UserID: "u1"}

	w := csrfRequest(t, tokens, http.MethodPost, "", claims)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid security token")
}

func TestCSRFMiddlewareRejectsForeignToken(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)
	claims := &models.JWTClaims{UserID: "u1"}

	w := csrfRequest(t, tokens, http.MethodPost, tokens.Issue("someone-else"), claims)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFMiddlewareSkipsReads(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)

	w := csrfRequest(t, tokens, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddlewareRequiresAuth(t *testing.T) {
	tokens := NewCSRFTokens("secret", time.Hour)

	w := csrfRequest(t, tokens, http.MethodPost, "anything", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
