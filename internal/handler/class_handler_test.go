package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/language-school-api/internal/middleware"
	"github.com/noah-isme/language-school-api/internal/models"
	"github.com/noah-isme/language-school-api/internal/service"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type classServiceMock struct {
	classes     []models.Class
	class       *models.Class
	insert      *models.InsertResult
	update      *models.UpdateResult
	remove      *models.DeleteResult
	err         error
	lastQuery   service.ClassQuery
	lastCreate  service.CreateClassRequest
	lastID      string
	lastStatus  service.UpdateClassStatusRequest
	lastEmail   string
	createCalls int
}

func (m *classServiceMock) List(ctx context.Context, query service.ClassQuery) ([]models.Class, error) {
	m.lastQuery = query
	return m.classes, m.err
}

func (m *classServiceMock) ListByInstructor(ctx context.Context, email string) ([]models.Class, error) {
	m.lastEmail = email
	return m.classes, m.err
}

func (m *classServiceMock) Get(ctx context.Context, id string) (*models.Class, error) {
	m.lastID = id
	return m.class, m.err
}

func (m *classServiceMock) Create(ctx context.Context, req service.CreateClassRequest) (*models.InsertResult, error) {
	m.createCalls++
	m.lastCreate = req
	return m.insert, m.err
}

func (m *classServiceMock) Update(ctx context.Context, id string, req service.UpdateClassRequest) (*models.UpdateResult, error) {
	m.lastID = id
	return m.update, m.err
}

func (m *classServiceMock) SetStatus(ctx context.Context, id string, req service.UpdateClassStatusRequest) (*models.UpdateResult, error) {
	m.lastID = id
	m.lastStatus = req
	return m.update, m.err
}

func (m *classServiceMock) SetFeedback(ctx context.Context, id string, req service.ClassFeedbackRequest) (*models.UpdateResult, error) {
	m.lastID = id
	return m.update, m.err
}

func (m *classServiceMock) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	m.lastID = id
	return m.remove, m.err
}

func TestClassHandlerListPassesQuery(t *testing.T) {
	mockSvc := &classServiceMock{classes: []models.Class{{ID: "c-1", Name: "Spanish A1", Enrolled: 12}}}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodGet, "/classes?limit=6&status=approved", "")
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, mockSvc.lastQuery.Limit)
	assert.Equal(t, models.ClassStatusApproved, mockSvc.lastQuery.Status)
	assert.Contains(t, w.Body.String(), `"_id":"c-1"`)
}

func TestClassHandlerCreateFillsInstructorFromToken(t *testing.T) {
	mockSvc := &classServiceMock{insert: &models.InsertResult{Acknowledged: true, InsertedID: "c-9"}}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/add_class", `{"name":"French B2","seats":20,"price":99.5}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "ines@example.com", Name: "Ines"})
	handler.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ines@example.com", mockSvc.lastCreate.InstructorEmail)
	assert.Equal(t, "Ines", mockSvc.lastCreate.InstructorName)
	assert.Equal(t, 20, mockSvc.lastCreate.Seats)
}

func TestClassHandlerCreateRejectsOtherInstructor(t *testing.T) {
	mockSvc := &classServiceMock{insert: &models.InsertResult{Acknowledged: true, InsertedID: "c-9"}}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/add_class", `{"name":"French B2","instructor_email":"ana@example.com","seats":20}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "ines@example.com", Name: "Ines"})
	handler.Create(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden access")
	assert.Zero(t, mockSvc.createCalls)
}

func TestClassHandlerCreateWithoutClaims(t *testing.T) {
	mockSvc := &classServiceMock{}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/add_class", `{"name":"French B2","seats":20}`)
	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, mockSvc.createCalls)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	mockSvc := &classServiceMock{}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/add_class", `{"name":`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, mockSvc.createCalls)
}

func TestClassHandlerGetAbsentReturnsNull(t *testing.T) {
	mockSvc := &classServiceMock{}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodGet, "/myClasses/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
	assert.Equal(t, "abc", mockSvc.lastID)
}

func TestClassHandlerSetStatus(t *testing.T) {
	mockSvc := &classServiceMock{update: &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodPatch, "/classes/c-1", `{"status":"denied"}`)
	c.Params = gin.Params{{Key: "id", Value: "c-1"}}
	handler.SetStatus(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ClassStatusDenied, mockSvc.lastStatus.Status)
	assert.JSONEq(t, `{"acknowledged":true,"matchedCount":1,"modifiedCount":1}`, w.Body.String())
}

func TestClassHandlerDeleteValidationError(t *testing.T) {
	mockSvc := &classServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "invalid class id")}
	handler := NewClassHandler(mockSvc)

	c, w := newJSONContext(http.MethodDelete, "/classes/nope", "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	handler.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid class id")
}

type selectionServiceMock struct {
	insert     *models.InsertResult
	items      []models.Selection
	remove     *models.DeleteResult
	err        error
	lastCaller string
	lastReq    service.CreateSelectionRequest
}

func (m *selectionServiceMock) Create(ctx context.Context, callerEmail string, req service.CreateSelectionRequest) (*models.InsertResult, error) {
	m.lastCaller = callerEmail
	m.lastReq = req
	return m.insert, m.err
}

func (m *selectionServiceMock) ListByEmail(ctx context.Context, email string) ([]models.Selection, error) {
	return m.items, m.err
}

func (m *selectionServiceMock) Delete(ctx context.Context, id string) (*models.DeleteResult, error) {
	return m.remove, m.err
}

func TestSelectionHandlerCreateUsesCaller(t *testing.T) {
	mockSvc := &selectionServiceMock{insert: &models.InsertResult{Acknowledged: true, InsertedID: "s-1"}}
	handler := NewSelectionHandler(mockSvc)

	c, w := newJSONContext(http.MethodPost, "/select_classes", `{"class_id":"c-1","name":"Spanish A1","price":40}`)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Email: "amy@example.com"})
	handler.Create(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "amy@example.com", mockSvc.lastCaller)
	assert.Equal(t, "Spanish A1", mockSvc.lastReq.ClassName)
}

func TestSelectionHandlerCreateWithoutClaims(t *testing.T) {
	handler := NewSelectionHandler(&selectionServiceMock{})

	c, w := newJSONContext(http.MethodPost, "/select_classes", `{"class_id":"c-1"}`)
	handler.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSelectionHandlerListEmpty(t *testing.T) {
	handler := NewSelectionHandler(&selectionServiceMock{items: []models.Selection{}})

	c, w := newJSONContext(http.MethodGet, "/selectedItems/amy@example.com", "")
	c.Params = gin.Params{{Key: "email", Value: "amy@example.com"}}
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
