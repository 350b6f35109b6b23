package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-school-api/internal/handler"
	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/repository"
	"github.com/noah-isme/language-school-api/internal/service"
	"github.com/noah-isme/language-school-api/pkg/response"
)

const testSecret = "router-test-secret"

type testEnv struct {
	engine *gin.Engine
	mock   sqlmock.Sqlmock
	auth   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db := sqlx.NewDb(sqlDB, "sqlmock")

	users := repository.NewUserRepository(db)
	classes := repository.NewClassRepository(db)
	selections := repository.NewSelectionRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	auth := service.NewAuthService(nil, nil, service.AuthConfig{AccessTokenSecret: testSecret, AccessTokenExpiry: time.Hour})
	metrics := service.NewMetricsService()

	r := gin.New()
	RegisterRoutes(r, RouteConfig{
		Auth:       handler.NewAuthHandler(auth),
		Users:      handler.NewUserHandler(service.NewUserService(users, nil, nil, nil)),
		Classes:    handler.NewClassHandler(service.NewClassService(classes, nil, nil, nil)),
		Selections: handler.NewSelectionHandler(service.NewSelectionService(selections, nil, nil)),
		Enrollment: handler.NewEnrollmentHandler(service.NewEnrollmentService(enrollments, nil, metrics, "usd", nil, nil)),
		Payments:   handler.NewPaymentHandler(service.NewPaymentService(nil, "usd", metrics, nil, nil)),
		Ops:        handler.NewMetricsHandler(metrics, nil),
		Tokens:     auth,
		Roles:      service.NewRoleGuard(users, nil),
	})
	return &testEnv{engine: r, mock: mock, auth: auth}
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()
	res, err := e.auth.IssueToken(context.Background(), models.TokenRequest{Email: email})
	require.NoError(t, err)
	return res.Token
}

func (e *testEnv) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterRoutesCoversSurface(t *testing.T) {
	env := newTestEnv(t)

	registered := map[string]bool{}
	for _, route := range env.engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /jwt",
		"PUT /students",
		"POST /students",
		"GET /students/:email",
		"GET /instructors",
		"GET /classes",
		"POST /select_classes",
		"GET /selectedItems/:email",
		"DELETE /selectedItems/:id",
		"POST /add_class",
		"GET /classes/:email",
		"GET /users",
		"PATCH /users/:email",
		"GET /users/role/:email",
		"GET /myClasses/:id",
		"GET /enrolledClasses/:email",
		"GET /payment_history/:email",
		"GET /payment_history/:email/export",
		"PATCH /classes/:id",
		"POST /create_payment_intent",
		"POST /payment",
		"PUT /classes/:id",
		"PATCH /feedback/classes/:id",
		"DELETE /classes/:id",
		"GET /health",
		"GET /ready",
		"GET /",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered["GET /metrics"])
	assert.False(t, registered["GET /docs/*any"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/select_classes"},
		{http.MethodGet, "/selectedItems/amy@example.com"},
		{http.MethodPost, "/add_class"},
		{http.MethodGet, "/users"},
		{http.MethodPost, "/payment"},
		{http.MethodPut, "/classes/7d1f0b7e-5a43-4c1e-9a8f-1c2b3d4e5f60"},
	} {
		rec := env.do(tc.method, tc.path, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
		body := decode(t, rec)
		assert.True(t, body.Error)
		assert.Equal(t, "unauthorized access", body.Message)
	}

	rec := env.do(http.MethodGet, "/enrolledClasses/amy@example.com", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSelfScopedRouteRejectsOtherEmail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/payment_history/bob@example.com", env.token(t, "amy@example.com"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden access", decode(t, rec).Message)
}

func TestAdminRouteRejectsStudentRole(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1 LIMIT 1").
		WithArgs("amy@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "photo_url", "role", "students", "created_at", "updated_at"}).
			AddRow("u-1", "amy@example.com", "Amy", "", "", 0, now, now))

	rec := env.do(http.MethodGet, "/users", env.token(t, "amy@example.com"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden message", decode(t, rec).Message)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestPublicRoutesAnswerWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Language School is running", rec.Body.String())

	rec = env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/create_payment_intent", "")
	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}
