package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type mockUserRepo struct {
	users       map[string]*models.User
	findErr     error
	listErr     error
	lastFilter  models.UserFilter
	listCalls   int
	upsertCalls int
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if user, ok := m.users[email]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *models.User) (*models.UpdateResult, error) {
	m.upsertCalls++
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	if existing, ok := m.users[user.Email]; ok {
		existing.Name = user.Name
		existing.PhotoURL = user.PhotoURL
		return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
	user.ID = "id-" + user.Email
	copy := *user
	m.users[user.Email] = &copy
	return &models.UpdateResult{Acknowledged: true, UpsertedID: user.ID}, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	user.ID = "id-" + user.Email
	copy := *user
	m.users[user.Email] = &copy
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	m.listCalls++
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	users := make([]models.User, 0)
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, email string, role models.UserRole) (*models.UpdateResult, error) {
	user, ok := m.users[email]
	if !ok {
		return &models.UpdateResult{Acknowledged: true}, nil
	}
	user.Role = role
	return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

type memoryCacheRepo struct {
	store   map[string]interface{}
	deletes []string
}

func (m *memoryCacheRepo) Load(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]models.User:
		*d = value.([]models.User)
	case *[]models.Class:
		*d = value.([]models.Class)
	}
	return nil
}

func (m *memoryCacheRepo) Store(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = make(map[string]interface{})
	}
	m.store[key] = value
	return nil
}

func (m *memoryCacheRepo) Purge(ctx context.Context, pattern string) (int, error) {
	m.deletes = append(m.deletes, pattern)
	n := len(m.store)
	m.store = nil
	return n, nil
}

func TestUserServiceUpsertThenGet(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, zap.NewNop())

	res, err := svc.Upsert(context.Background(), UpsertUserRequest{Email: "a@x.com", Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "id-a@x.com", res.UpsertedID)

	res, err = svc.Upsert(context.Background(), UpsertUserRequest{Email: "a@x.com", Name: "A2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ModifiedCount)

	user, err := svc.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "A2", user.Name)
}

func TestUserServiceUpsertValidatesEmail(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil, nil)
	_, err := svc.Upsert(context.Background(), UpsertUserRequest{Email: "not-an-email"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceGetMissingReturnsNil(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil, nil)
	user, err := svc.Get(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserServiceGetStoreFailure(t *testing.T) {
	svc := NewUserService(&mockUserRepo{findErr: errors.New("db down")}, nil, nil, nil)
	_, err := svc.Get(context.Background(), "a@x.com")
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestUserServiceCreateIfAbsent(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewUserService(repo, nil, nil, nil)

	res, existed, err := svc.CreateIfAbsent(context.Background(), UpsertUserRequest{Email: "a@x.com"})
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, "id-a@x.com", res.InsertedID)

	res, existed, err = svc.CreateIfAbsent(context.Background(), UpsertUserRequest{Email: "a@x.com"})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Nil(t, res)
}

func TestUserServiceListInstructorsUsesCache(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"i@x.com": {Email: "i@x.com", Role: models.RoleInstructor, Students: 4},
		"s@x.com": {Email: "s@x.com"},
	}}
	cacheRepo := &memoryCacheRepo{}
	cache := NewCacheService(cacheRepo, NewMetricsService(), time.Minute, nil, true)
	svc := NewUserService(repo, cache, nil, nil)

	first, err := svc.ListInstructors(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 6, repo.lastFilter.Limit)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleInstructor, *repo.lastFilter.Role)

	second, err := svc.ListInstructors(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)

	_, err = svc.SetRole(context.Background(), "s@x.com", UpdateRoleRequest{Role: models.RoleInstructor})
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deletes, "catalog:instructors:*")

	third, err := svc.ListInstructors(context.Background(), 6)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestUserServiceSetRoleRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil, nil)
	_, err := svc.SetRole(context.Background(), "a@x.com", UpdateRoleRequest{Role: "owner"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUserServiceRoleStatus(t *testing.T) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"admin@x.com": {Email: "admin@x.com", Role: models.RoleAdmin},
	}}
	svc := NewUserService(repo, nil, nil, nil)

	status, err := svc.RoleStatus(context.Background(), "admin@x.com")
	require.NoError(t, err)
	assert.True(t, status.Admin)
	assert.False(t, status.Instructor)

	status, err = svc.RoleStatus(context.Background(), "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, status.Admin)
	assert.False(t, status.Instructor)
}
