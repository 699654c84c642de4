package scope

import (
	"context"
	"errors"

	"maturity_backend/internals/constants"
	accessModel "maturity_backend/internals/features/access/model"

	"gorm.io/gorm"
)

// Enhanced reads grants from roles / role_permissions.
type Enhanced struct {
	db *gorm.DB
}

func NewEnhanced(db *gorm.DB) *Enhanced { return &Enhanced{db: db} }

func (*Enhanced) Name() string { return "enhanced" }

// ScopeOf: actor attribute, then the role row's niveau_acces, then a role default.
func (e *Enhanced) ScopeOf(ctx context.Context, actor Actor) (DataScope, error) {
	if s, ok := explicitScope(actor); ok {
		return s, nil
	}

	var role accessModel.RoleModel
	err := e.db.WithContext(ctx).
		Where("nom_role = ?", constants.NormalizeRole(actor.Role)).
		Take(&role).Error
	switch {
	case err == nil:
		if role.AccessLevel != nil {
			if s, ok := ParseDataScope(*role.AccessLevel); ok {
				return s, nil
			}
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}
	return defaultScope(actor.Role), nil
}

func defaultScope(role string) DataScope {
	switch {
	case constants.InRoles(role, constants.GlobalRoles):
		return ScopeGlobal
	case constants.InRoles(role, []string{constants.RoleAdmin, constants.RoleManager}):
		return ScopeEnterpriseFull
	default:
		return ScopeEnterprisePersonal
	}
}

func (e *Enhanced) CanAccessModule(ctx context.Context, actor Actor, module, action string) (bool, error) {
	role := constants.NormalizeRole(actor.Role)
	if role == constants.RoleSuperAdmin {
		return true, nil
	}
	var grant accessModel.RolePermissionModel
	err := e.db.WithContext(ctx).
		Where("nom_role = ? AND code_module = ?", role, module).
		Take(&grant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return grant.Allows(action), nil
}
