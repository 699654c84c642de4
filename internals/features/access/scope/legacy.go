package scope

import (
	"context"

	"maturity_backend/internals/constants"
)

// Legacy is the original boolean model: SUPER_ADMIN and CONSULTANT see everything,
// everybody else is confined to their enterprise.
type Legacy struct{}

func NewLegacy() *Legacy { return &Legacy{} }

func (*Legacy) Name() string { return "legacy" }

func HasGlobalAccess(role string) bool {
	return constants.InRoles(role, constants.GlobalRoles)
}

func (*Legacy) ScopeOf(_ context.Context, actor Actor) (DataScope, error) {
	if s, ok := explicitScope(actor); ok {
		return s, nil
	}
	if HasGlobalAccess(actor.Role) {
		return ScopeGlobal, nil
	}
	return ScopeEnterpriseFull, nil
}

// CanAccessModule: reads are open to every known role, writes on maturity grids
// need an admin role, other writes a known role.
func (*Legacy) CanAccessModule(_ context.Context, actor Actor, module, action string) (bool, error) {
	if !constants.IsKnownRole(actor.Role) {
		return false, nil
	}
	if HasGlobalAccess(actor.Role) || action == "view" {
		return true, nil
	}
	switch module {
	case ModuleNiveaux:
		return constants.InRoles(actor.Role, constants.AdminOnly), nil
	case ModuleEntreprises, ModuleInvitations:
		return constants.InRoles(actor.Role, constants.ManagerAndAbove), nil
	}
	return true, nil
}
