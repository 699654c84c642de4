package constants

import (
	"fmt"
	"strings"
)

// Role error message templates
const (
	ErrOnlyManagersCanAccess = "❌ Seuls les managers ou administrateurs peuvent accéder à %s."
	ErrOnlyAdminsCanAccess   = "❌ Seuls les administrateurs peuvent accéder à %s."
)

func RoleErrorManager(feature string) string {
	return fmt.Sprintf(ErrOnlyManagersCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

// Role names as stored in acteurs.role (normalized with NormalizeRole).
const (
	RoleSuperAdmin  = "SUPER_ADMIN"
	RoleConsultant  = "CONSULTANT"
	RoleAdmin       = "ADMIN"
	RoleManager     = "MANAGER"
	RoleIntervenant = "INTERVENANT"
	RoleEvaluateur  = "EVALUATEUR"
)

// Access-level tags (acteurs.niveau_acces).
const (
	AccessGlobal             = "GLOBAL"
	AccessEnterpriseFull     = "ENTERPRISE_FULL"
	AccessEnterprisePersonal = "ENTERPRISE_PERSONAL"
)

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleSuperAdmin,
		RoleConsultant,
		RoleAdmin,
		RoleManager,
		RoleIntervenant,
		RoleEvaluateur,
	}

	// legacy allow-list: these roles see every enterprise
	GlobalRoles = []string{
		RoleSuperAdmin,
		RoleConsultant,
	}

	ManagerAndAbove = []string{
		RoleSuperAdmin,
		RoleConsultant,
		RoleAdmin,
		RoleManager,
	}

	AdminOnly = []string{
		RoleSuperAdmin,
		RoleAdmin,
	}
)

// NormalizeRole maps "Manager", "super admin", "super-admin" to the stored form.
func NormalizeRole(role string) string {
	r := strings.ToUpper(strings.TrimSpace(role))
	r = strings.NewReplacer(" ", "_", "-", "_").Replace(r)
	return r
}

func IsKnownRole(role string) bool {
	return InRoles(role, AllRoles)
}

func InRoles(role string, roles []string) bool {
	r := NormalizeRole(role)
	for _, it := range roles {
		if it == r {
			return true
		}
	}
	return false
}
