package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/language-school-api/internal/models"
	appErrors "github.com/noah-isme/language-school-api/pkg/errors"
)

type roleLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// RoleGuard authorizes a verified identity against the role stored on its user record.
// Every check reads the store; roles are never cached.
type RoleGuard struct {
	repo   roleLookup
	logger *zap.Logger
}

// NewRoleGuard constructs a RoleGuard.
func NewRoleGuard(repo roleLookup, logger *zap.Logger) *RoleGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoleGuard{repo: repo, logger: logger}
}

// Check returns nil when the user exists and its role equals the required one.
func (g *RoleGuard) Check(ctx context.Context, email string, role models.UserRole) error {
	user, err := g.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrRoleForbidden, "")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user role")
	}
	if user.Role != role {
		g.logger.Debug("role check denied", zap.String("email", email), zap.String("required", string(role)), zap.String("actual", string(user.Role)))
		return appErrors.Clone(appErrors.ErrRoleForbidden, "")
	}
	return nil
}
