package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainErrors "github.com/shoplite/auth-service/internal/domain/errors"
	"github.com/shoplite/auth-service/internal/domain/models"
	"github.com/shoplite/auth-service/internal/domain/service"
	"github.com/shoplite/auth-service/internal/handler/http/middleware"
)

// MockEnrollmentService is a mock implementation of service.EnrollmentService.
type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) Setup(ctx context.Context, userID uuid.UUID, factorType models.MFAType) (*service.EnrollmentResult, error) {
	args := m.Called(ctx, userID, factorType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EnrollmentResult), args.Error(1)
}

func (m *MockEnrollmentService) Resend(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error {
	args := m.Called(ctx, userID, factorType)
	return args.Error(0)
}

func (m *MockEnrollmentService) Disable(ctx context.Context, userID uuid.UUID, factorType models.MFAType) error {
	args := m.Called(ctx, userID, factorType)
	return args.Error(0)
}

// MockVerificationService is a mock implementation of service.VerificationService.
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Submit(ctx context.Context, session *service.SessionClaims, userID uuid.UUID, factorType models.MFAType, code string) (*service.VerifyResult, error) {
	args := m.Called(ctx, session, userID, factorType, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerifyResult), args.Error(1)
}

// MockBackupCodeService is a mock implementation of service.BackupCodeService.
type MockBackupCodeService struct {
	mock.Mock
}

func (m *MockBackupCodeService) Generate(ctx context.Context, userID uuid.UUID, count int) ([]string, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBackupCodeService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockBackupCodeService) Redeem(ctx context.Context, session *service.SessionClaims, code string) (*service.VerifyResult, error) {
	args := m.Called(ctx, session, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerifyResult), args.Error(1)
}

type mfaHandlerFixture struct {
	router       *gin.Engine
	enrollment   *MockEnrollmentService
	verification *MockVerificationService
	backup       *MockBackupCodeService
	session      *service.SessionClaims
}

func newMFAHandlerFixture(t *testing.T, session *service.SessionClaims) *mfaHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &mfaHandlerFixture{
		enrollment:   new(MockEnrollmentService),
		verification: new(MockVerificationService),
		backup:       new(MockBackupCodeService),
		session:      session,
	}

	handler := NewMFAHandler(f.enrollment, f.verification, f.backup, "test", zap.NewNop())

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		if f.session != nil {
			c.Set(middleware.GinContextClaimsKey, f.session)
			c.Set(middleware.GinContextUserIDKey, f.session.UserID)
		}
		c.Next()
	})
	mfa := f.router.Group("/api/v1/auth/mfa")
	mfa.POST("/setup", handler.Setup)
	mfa.POST("/verify", handler.Verify)
	mfa.POST("/resend", handler.Resend)
	mfa.POST("/disable", handler.Disable)
	mfa.POST("/backup-codes", handler.BackupCodes)
	return f
}

func doJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestMFASetup_App(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1", Role: models.RoleUser})

	f.enrollment.On("Setup", mock.Anything, userID, models.MFATypeApp).Return(&service.EnrollmentResult{
		Type:       models.MFATypeApp,
		Secret:     "JBSWY3DPEHPK3PXP",
		OTPAuthURL: "otpauth://totp/ShopLite:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=ShopLite&algorithm=SHA1&digits=6&period=30",
		QRCode:     "data:image/png;base64,abc",
	}, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/setup", gin.H{"type": "app"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "JBSWY3DPEHPK3PXP", resp["secret"])
	assert.Contains(t, resp["otpauthUrl"], "secret=JBSWY3DPEHPK3PXP")
	assert.NotEmpty(t, resp["qrCode"])
}

func TestMFASetup_SMS(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1", Role: models.RoleUser})

	f.enrollment.On("Setup", mock.Anything, userID, models.MFATypeSMS).Return(&service.EnrollmentResult{
		Type:    models.MFATypeSMS,
		Message: "verification code sent to your phone",
	}, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/setup", gin.H{"type": "sms"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "secret")
	assert.NotEmpty(t, resp["message"])
}

func TestMFASetup_BadType(t *testing.T) {
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: uuid.New(), SessionID: "s1"})

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/setup", gin.H{"type": "carrier-pigeon"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.enrollment.AssertNotCalled(t, "Setup", mock.Anything, mock.Anything, mock.Anything)
}

func TestMFASetup_Unauthenticated(t *testing.T) {
	f := newMFAHandlerFixture(t, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/setup", gin.H{"type": "app"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMFASetup_AlreadyVerified(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.enrollment.On("Setup", mock.Anything, userID, models.MFATypeApp).
		Return(nil, domainErrors.ErrFactorAlreadyVerified)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/setup", gin.H{"type": "app"})

	assert.Equal(t, http.StatusConflict, rec.Code)
	var resp ResponseError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conflict", resp.Code)
}

func TestMFAVerify_SetsElevationCookie(t *testing.T) {
	userID := uuid.New()
	session := &service.SessionClaims{UserID: userID, SessionID: "s1", Role: models.RoleUser}
	f := newMFAHandlerFixture(t, session)

	expiresAt := time.Now().Add(24 * time.Hour)
	f.verification.On("Submit", mock.Anything, session, userID, models.MFATypeApp, "123456").
		Return(&service.VerifyResult{ElevationToken: "elevation-token", ExpiresAt: expiresAt, EnabledNow: true}, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/verify", gin.H{
		"userId": userID.String(),
		"type":   "app",
		"code":   "123456",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var elevation *http.Cookie
	for _, c := range cookies {
		if c.Name == middleware.ElevationCookieName {
			elevation = c
		}
	}
	require.NotNil(t, elevation, "mfa_verified cookie must be set")
	assert.Equal(t, "elevation-token", elevation.Value)
	assert.True(t, elevation.HttpOnly)
	assert.Equal(t, "/", elevation.Path)
	assert.InDelta(t, 24*time.Hour.Seconds(), float64(elevation.MaxAge), 10)
	assert.False(t, elevation.Secure, "secure is only set in production")
}

func TestMFAVerify_InvalidCode(t *testing.T) {
	userID := uuid.New()
	session := &service.SessionClaims{UserID: userID, SessionID: "s1"}
	f := newMFAHandlerFixture(t, session)

	f.verification.On("Submit", mock.Anything, session, userID, models.MFATypeSMS, "000000").
		Return(nil, domainErrors.ErrInvalidCode)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/verify", gin.H{
		"userId": userID.String(),
		"type":   "sms",
		"code":   "000000",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ResponseError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_code", resp.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestMFAVerify_UserMismatch(t *testing.T) {
	session := &service.SessionClaims{UserID: uuid.New(), SessionID: "s1"}
	f := newMFAHandlerFixture(t, session)
	otherID := uuid.New()

	f.verification.On("Submit", mock.Anything, session, otherID, models.MFATypeApp, "123456").
		Return(nil, domainErrors.ErrForbidden)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/verify", gin.H{
		"userId": otherID.String(),
		"type":   "app",
		"code":   "123456",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMFAVerify_NoFactor(t *testing.T) {
	userID := uuid.New()
	session := &service.SessionClaims{UserID: userID, SessionID: "s1"}
	f := newMFAHandlerFixture(t, session)

	f.verification.On("Submit", mock.Anything, session, userID, models.MFATypeApp, "123456").
		Return(nil, domainErrors.ErrFactorNotFound)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/verify", gin.H{
		"userId": userID.String(),
		"type":   "app",
		"code":   "123456",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMFAVerify_MissingFields(t *testing.T) {
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: uuid.New(), SessionID: "s1"})

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/verify", gin.H{"type": "app"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.verification.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMFADisable_ClearsCookie(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.enrollment.On("Disable", mock.Anything, userID, models.MFATypeApp).Return(nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/disable", gin.H{"type": "app"})

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.ElevationCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must be expired")
}

func TestMFABackupCodes_Generate(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.backup.On("Generate", mock.Anything, userID, 10).
		Return([]string{"JBSWY3DP-EHPK3PXP", "MFRGGZDF-MZTWQ2LK"}, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{"action": "generate", "count": 10})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Len(t, resp["backupCodes"], 2)
}

func TestMFABackupCodes_Count(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.backup.On("Count", mock.Anything, userID).Return(4, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{"action": "count"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp["count"])
}

func TestMFABackupCodes_VerifySetsElevationCookie(t *testing.T) {
	userID := uuid.New()
	session := &service.SessionClaims{UserID: userID, SessionID: "s1"}
	f := newMFAHandlerFixture(t, session)

	expiresAt := time.Now().Add(24 * time.Hour)
	f.backup.On("Redeem", mock.Anything, session, "JBSWY3DP-EHPK3PXP").
		Return(&service.VerifyResult{ElevationToken: "elevation-token", ExpiresAt: expiresAt}, nil)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{
		"action": "verify",
		"code":   "JBSWY3DP-EHPK3PXP",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.ElevationCookieName, cookies[0].Name)
	assert.Equal(t, "elevation-token", cookies[0].Value)
}

func TestMFABackupCodes_VerifyWithoutCode(t *testing.T) {
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: uuid.New(), SessionID: "s1"})

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{"action": "verify"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.backup.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything)
}

func TestMFABackupCodes_UnknownAction(t *testing.T) {
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: uuid.New(), SessionID: "s1"})

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{"action": "shred"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMFABackupCodes_NotEnabled(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.backup.On("Generate", mock.Anything, userID, 0).
		Return(nil, domainErrors.ErrMFANotEnabled)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/backup-codes", gin.H{"action": "generate"})

	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	var resp ResponseError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "precondition_failed", resp.Code)
}

func TestMFAResend_RateLimited(t *testing.T) {
	userID := uuid.New()
	f := newMFAHandlerFixture(t, &service.SessionClaims{UserID: userID, SessionID: "s1"})

	f.enrollment.On("Resend", mock.Anything, userID, models.MFATypeEmail).
		Return(domainErrors.ErrRateLimited)

	rec := doJSON(t, f.router, "/api/v1/auth/mfa/resend", gin.H{"type": "email"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
