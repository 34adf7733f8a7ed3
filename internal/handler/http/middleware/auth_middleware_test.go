package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
)

// MockTokenVerifier is a mock implementation of service.TokenVerifier.
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) ValidateAccessToken(token string) (*service.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionClaims), args.Error(1)
}

func newAuthTestRouter(verifier service.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(verifier, zap.NewNop()))
	router.GET("/protected", func(c *gin.Context) {
		claims := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID.String()})
	})
	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	userID := uuid.New()
	verifier.On("ValidateAccessToken", "good-token").Return(&service.SessionClaims{
		UserID:    userID,
		SessionID: "s1",
		Role:      models.RoleUser,
	}, nil)

	router := newAuthTestRouter(verifier)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newAuthTestRouter(new(MockTokenVerifier))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newAuthTestRouter(new(MockTokenVerifier))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := new(MockTokenVerifier)
	verifier.On("ValidateAccessToken", "bad-token").Return(nil, domainErrors.ErrUnauthorized)

	router := newAuthTestRouter(verifier)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
