package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"workstation/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func userClaims(userID uint, exp time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": time.Now().Add(exp).Unix(),
	}
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer " + signToken(t, testSecret, userClaims(123, time.Hour), jwt.SigningMethodHS256),
			expectedStatus: http.StatusOK,
			expectedUserID: 123,
		},
		{name: "missing header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Token abc", expectedStatus: http.StatusUnauthorized},
		{
			name:           "expired",
			authHeader:     "Bearer " + signToken(t, testSecret, userClaims(1, -time.Hour), jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong secret",
			authHeader:     "Bearer " + signToken(t, "another-secret", userClaims(1, time.Hour), jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "non numeric subject",
			authHeader: "Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "alice", "exp": time.Now().Add(time.Hour).Unix(),
			}, jwt.SigningMethodHS256),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Bearer")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
