package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

// CSRFHeader is the request header carrying the double-submit token.
const CSRFHeader = "X-CSRF-Token"

// CSRFTokens issues and verifies per-user HMAC tokens. The token is handed
// out at login and must accompany every mutating request, so a forged
// cross-site request that only carries the cookie-stored credential fails.
type CSRFTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewCSRFTokens constructs a token manager.
func NewCSRFTokens(secret string, ttl time.Duration) *CSRFTokens {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CSRFTokens{secret: []byte(secret), ttl: ttl}
}

// Issue returns a token bound to the user and the configured expiry window.
func (t *CSRFTokens) Issue(userID string) string {
	expiry := time.Now().UTC().Add(t.ttl).Unix()
	return fmt.Sprintf("%d.%s", expiry, t.sign(userID, expiry))
}

// Verify checks the token signature, user binding and expiry.
func (t *CSRFTokens) Verify(userID, token string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}
	expiry, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return false
	}
	if time.Now().UTC().Unix() > expiry {
		return false
	}
	expected := t.sign(userID, expiry)
	return hmac.Equal([]byte(expected), []byte(parts[1]))
}

func (t *CSRFTokens) sign(userID string, expiry int64) string {
	mac := hmac.New(sha256.New, t.secret)
	fmt.Fprintf(mac, "%s:%d", userID, expiry)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CSRF rejects mutating requests that lack a valid double-submit token.
// Must run after JWT so the user binding is available.
func CSRF(tokens *CSRFTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			c.Next()
			return
		}

		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		token := c.GetHeader(CSRFHeader)
		if token == "" || !tokens.Verify(claims.UserID, token) {
			response.Error(c, appErrors.ErrInvalidCSRF)
			c.Abort()
			return
		}
		c.Next()
	}
}
