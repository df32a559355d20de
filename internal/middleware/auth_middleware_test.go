package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// whoami отдает ID пользователя, который middleware положил в контекст
func whoami(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", middleware.JWTAuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(middleware.UserIDKey)})
	})
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

// signed подписывает произвольные claims, минуя Issuer
func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthMiddleware_StoresCanonicalUserID(t *testing.T) {
	// Arrange: тот же секрет, что передан в middleware
	secret := "board-" + uuid.NewString()
	userID := uuid.New()
	token, err := auth.NewIssuer(secret, time.Hour).GenerateToken(strings.ToUpper(userID.String()))
	require.NoError(t, err)

	// Act: схема без учета регистра
	resp := get(whoami(secret), "bearer "+token)

	// Assert: в контексте UUID в канонической форме, он же ключ в likedBy
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, userID.String(), body.UserID)
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	secret := "board-secret"
	valid, err := auth.NewIssuer("another-deployment", time.Hour).GenerateToken(uuid.NewString())
	require.NoError(t, err)

	cases := []struct {
		name          string
		authorization string
		message       string
	}{
		{"без заголовка", "", "Authorization header is required"},
		{"чужая схема", "Token abc", "Authorization header format must be Bearer {token}"},
		{"пустой токен", "Bearer ", "Authorization header format must be Bearer {token}"},
		{"мусор вместо токена", "Bearer not-a-jwt", "Invalid or expired token"},
		// токен другого развертывания не проходит с нашим секретом
		{"чужой секрет", "Bearer " + valid, "Invalid or expired token"},
		{"истекший", "Bearer " + signed(t, secret, jwt.MapClaims{
			"user_id": uuid.NewString(),
			"exp":     time.Now().Add(-time.Minute).Unix(),
		}), "Invalid or expired token"},
		{"без exp", "Bearer " + signed(t, secret, jwt.MapClaims{
			"user_id": uuid.NewString(),
		}), "Invalid or expired token"},
		{"без user_id", "Bearer " + signed(t, secret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}), "Invalid or expired token"},
		// user_id становится ключом карты likedBy, поэтому только UUID
		{"user_id не UUID", "Bearer " + signed(t, secret, jwt.MapClaims{
			"user_id": "likedBy.hack",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}), "Invalid user ID in token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			resp := get(whoami(secret), tc.authorization)

			// Assert
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Contains(t, resp.Body.String(), tc.message)
			assert.NotContains(t, resp.Body.String(), "user_id")
		})
	}
}
