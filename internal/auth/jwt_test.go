package auth_test

import (
	"testing"
	"time"

	"taskboard/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, 24*time.Hour)

	// Генерируем токен
	userID := "test-user-id"
	token, err := issuer.GenerateToken(userID)

	// Проверяем, что токен создан без ошибок
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Парсим токен
	parsedUserID, err := issuer.ParseToken(token)

	// Проверяем, что из токена извлечен правильный ID пользователя
	assert.NoError(t, err)
	assert.Equal(t, userID, parsedUserID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)

	// Пытаемся парсить неверный токен
	_, err := issuer.ParseToken("invalid-token")

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.NewIssuer("other-secret", time.Hour).GenerateToken("u1")

	_, err := auth.NewIssuer(testSecret, time.Hour).ParseToken(token)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)

	// Создаем токен с истекшим сроком действия
	claims := jwt.MapClaims{
		"user_id": "test-user-id",
		"exp":     time.Now().Add(-1 * time.Hour).Unix(), // Токен истек 1 час назад
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	expiredToken, _ := token.SignedString([]byte(testSecret))

	_, err := issuer.ParseToken(expiredToken)

	assert.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_MissingClaims(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)

	// Создаем токен без ID пользователя
	claims := jwt.MapClaims{
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenWithoutUserID, _ := token.SignedString([]byte(testSecret))

	_, err := issuer.ParseToken(tokenWithoutUserID)

	assert.Error(t, err)
	assert.Equal(t, "invalid claims", err.Error())
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)
	claims := jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(time.Hour).Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, _ := token.SignedString([]byte(testSecret))

	_, err := issuer.ParseToken(signed)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
