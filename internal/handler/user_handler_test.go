package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type userServiceMock struct {
	upsertResp  *models.UpdateResult
	createResp  *models.InsertResult
	existed     bool
	getResp     *models.User
	listResp    []models.User
	roleResp    *models.RoleStatus
	err         error
	lastLimit   int
	lastEmail   string
	lastRoleReq service.UpdateRoleRequest
}

func (m *userServiceMock) Upsert(ctx context.Context, req service.UpsertUserRequest) (*models.UpdateResult, error) {
	m.lastEmail = req.Email
	return m.upsertResp, m.err
}

func (m *userServiceMock) CreateIfAbsent(ctx context.Context, req service.UpsertUserRequest) (*models.InsertResult, bool, error) {
	m.lastEmail = req.Email
	return m.createResp, m.existed, m.err
}

func (m *userServiceMock) Get(ctx context.Context, email string) (*models.User, error) {
	m.lastEmail = email
	return m.getResp, m.err
}

func (m *userServiceMock) List(ctx context.Context) ([]models.User, error) {
	return m.listResp, m.err
}

func (m *userServiceMock) ListInstructors(ctx context.Context, limit int) ([]models.User, error) {
	m.lastLimit = limit
	return m.listResp, m.err
}

func (m *userServiceMock) SetRole(ctx context.Context, email string, req service.UpdateRoleRequest) (*models.UpdateResult, error) {
	m.lastEmail = email
	m.lastRoleReq = req
	return m.upsertResp, m.err
}

func (m *userServiceMock) RoleStatus(ctx context.Context, email string) (*models.RoleStatus, error) {
	m.lastEmail = email
	return m.roleResp, m.err
}

func newJSONContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestUserHandlerCreateStudentExisting(t *testing.T) {
	mockSvc := &userServiceMock{existed: true}
	handler := NewUserHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/students", `{"email":"amy@example.com","name":"Amy"}`)
	handler.CreateStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"user already exists"}`, w.Body.String())
	assert.Equal(t, "amy@example.com", mockSvc.lastEmail)
}

func TestUserHandlerCreateStudentInserted(t *testing.T) {
	mockSvc := &userServiceMock{createResp: &models.InsertResult{Acknowledged: true, InsertedID: "u-1"}}
	handler := NewUserHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/students", `{"email":"amy@example.com"}`)
	handler.CreateStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"insertedId":"u-1"}`, w.Body.String())
}

func TestUserHandlerUpsertInvalidBody(t *testing.T) {
	handler := NewUserHandler(&userServiceMock{})

	c, w := newJSONContext(http.MethodPut, "/students", `{"email":`)
	handler.UpsertStudent(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["error"])
	assert.Equal(t, appErrors.ErrValidation.Code, body["code"])
}

func TestUserHandlerGetStudentAbsentReturnsNull(t *testing.T) {
	handler := NewUserHandler(&userServiceMock{})

	c, w := newJSONContext(http.MethodGet, "/students/ghost@example.com", "")
	c.Params = gin.Params{{Key: "email", Value: "ghost@example.com"}}
	handler.GetStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestUserHandlerListInstructorsLimit(t *testing.T) {
	mockSvc := &userServiceMock{listResp: []models.User{{Email: "ines@example.com", Role: models.RoleInstructor}}}
	handler := NewUserHandler(mockSvc)

	c, w := newJSONContext(http.MethodGet, "/instructors?limit=6", "")
	handler.ListInstructors(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, mockSvc.lastLimit)

	c, _ = newJSONContext(http.MethodGet, "/instructors?limit=abc", "")
	handler.ListInstructors(c)
	assert.Equal(t, 0, mockSvc.lastLimit)
}

func TestUserHandlerSetRole(t *testing.T) {
	mockSvc := &userServiceMock{upsertResp: &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}}
	handler := NewUserHandler(mockSvc)

	c, w := newJSONContext(http.MethodPatch, "/users/amy@example.com", `{"role":"instructor"}`)
	c.Params = gin.Params{{Key: "email", Value: "amy@example.com"}}
	handler.SetRole(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "amy@example.com", mockSvc.lastEmail)
	assert.Equal(t, models.RoleInstructor, mockSvc.lastRoleReq.Role)
}

func TestUserHandlerRoleStatusError(t *testing.T) {
	handler := NewUserHandler(&userServiceMock{err: appErrors.ErrInternal})

	c, w := newJSONContext(http.MethodGet, "/users/role/amy@example.com", "")
	c.Params = gin.Params{{Key: "email", Value: "amy@example.com"}}
	handler.RoleStatus(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type tokenIssuerMock struct {
	resp *models.TokenResponse
	err  error
	last models.TokenRequest
}

func (m *tokenIssuerMock) IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error) {
	m.last = req
	return m.resp, m.err
}

func TestAuthHandlerIssueToken(t *testing.T) {
	issuer := &tokenIssuerMock{resp: &models.TokenResponse{Token: "signed"}}
	handler := NewAuthHandler(issuer)

	c, w := newJSONContext(http.MethodPost, "/jwt", `{"email":"amy@example.com","name":"Amy"}`)
	handler.IssueToken(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"signed"`)
	assert.Equal(t, "Amy", issuer.last.Name)
}

func TestAuthHandlerIssueTokenValidationError(t *testing.T) {
	issuer := &tokenIssuerMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid token payload")}
	handler := NewAuthHandler(issuer)

	c, w := newJSONContext(http.MethodPost, "/jwt", `{"name":"Amy"}`)
	handler.IssueToken(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
