// Package scope decides which enterprises, evaluations and forms an actor may see or change.
//
// Two permission models coexist: the legacy role allow-list and the grant-based
// role_permissions table. Both implement AccessScope; one is chosen at startup and
// every call site goes through Principal.
package scope

import (
	"context"
	"strings"

	"maturity_backend/internals/constants"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DataScope string

const (
	ScopeGlobal             DataScope = constants.AccessGlobal
	ScopeEnterpriseFull     DataScope = constants.AccessEnterpriseFull
	ScopeEnterprisePersonal DataScope = constants.AccessEnterprisePersonal
)

// ParseDataScope accepts the stored tags case-insensitively; ok=false for anything else.
func ParseDataScope(s string) (DataScope, bool) {
	switch DataScope(strings.ToUpper(strings.TrimSpace(s))) {
	case ScopeGlobal:
		return ScopeGlobal, true
	case ScopeEnterpriseFull:
		return ScopeEnterpriseFull, true
	case ScopeEnterprisePersonal:
		return ScopeEnterprisePersonal, true
	}
	return "", false
}

// Module codes used by permission checks.
const (
	ModuleEvaluations = "evaluations"
	ModuleEntreprises = "entreprises"
	ModuleNiveaux     = "niveaux"
	ModuleBenchmarks  = "benchmarks"
	ModuleInvitations = "invitations"
)

type Actor struct {
	ID           uuid.UUID
	Role         string
	EnterpriseID *uuid.UUID
	// AccessLevel is the explicit niveau_acces attribute; it wins over role derivation.
	AccessLevel *string
}

// AccessScope is one permission model.
type AccessScope interface {
	Name() string
	ScopeOf(ctx context.Context, actor Actor) (DataScope, error)
	CanAccessModule(ctx context.Context, actor Actor, module, action string) (bool, error)
}

// Principal is a resolved actor: identity plus data scope.
type Principal struct {
	Actor Actor
	Scope DataScope
	model AccessScope
}

func Resolve(ctx context.Context, m AccessScope, actor Actor) (Principal, error) {
	s, err := m.ScopeOf(ctx, actor)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Actor: actor, Scope: s, model: m}, nil
}

func explicitScope(actor Actor) (DataScope, bool) {
	if actor.AccessLevel == nil {
		return "", false
	}
	return ParseDataScope(*actor.AccessLevel)
}

// CanAccessEnterprise: GLOBAL, or member of that enterprise.
func (p Principal) CanAccessEnterprise(enterpriseID uuid.UUID) bool {
	if p.Scope == ScopeGlobal {
		return true
	}
	return p.Actor.EnterpriseID != nil && *p.Actor.EnterpriseID == enterpriseID
}

// CanMutate additionally restricts ENTERPRISE_PERSONAL actors to their own resources.
func (p Principal) CanMutate(enterpriseID, ownerID uuid.UUID) bool {
	if !p.CanAccessEnterprise(enterpriseID) {
		return false
	}
	return p.Scope != ScopeEnterprisePersonal || p.Actor.ID == ownerID
}

// CanView is CanMutate for reads of owned resources: personal scope only sees its own.
func (p Principal) CanView(enterpriseID, ownerID uuid.UUID) bool {
	return p.CanMutate(enterpriseID, ownerID)
}

func (p Principal) EnsureEnterprise(enterpriseID uuid.UUID) error {
	if !p.CanAccessEnterprise(enterpriseID) {
		return apperror.AccessDenied("access to enterprise %s denied", enterpriseID)
	}
	return nil
}

func (p Principal) EnsureMutate(enterpriseID, ownerID uuid.UUID) error {
	if !p.CanMutate(enterpriseID, ownerID) {
		return apperror.AccessDenied("you are not allowed to modify this resource")
	}
	return nil
}

func (p Principal) CanAccessModule(ctx context.Context, module, action string) (bool, error) {
	if p.model == nil {
		return false, nil
	}
	return p.model.CanAccessModule(ctx, p.Actor, module, action)
}

func (p Principal) EnsureModule(ctx context.Context, module, action string) error {
	ok, err := p.CanAccessModule(ctx, module, action)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.AccessDenied("%s on %s is not granted to role %s", action, module, p.Actor.Role)
	}
	return nil
}

// ScopeQuery filters a list query server-side. ownerColumn may be empty when the
// resource has no owning actor; personal scope then falls back to the enterprise filter.
func (p Principal) ScopeQuery(enterpriseColumn, ownerColumn string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Scope == ScopeGlobal {
			return db
		}
		if p.Actor.EnterpriseID == nil {
			return db.Where("1 = 0")
		}
		db = db.Where(enterpriseColumn+" = ?", *p.Actor.EnterpriseID)
		if p.Scope == ScopeEnterprisePersonal && ownerColumn != "" {
			db = db.Where(ownerColumn+" = ?", p.Actor.ID)
		}
		return db
	}
}

// New picks the permission model by name ("enhanced" or anything else for legacy).
func New(name string, db *gorm.DB) AccessScope {
	if strings.EqualFold(strings.TrimSpace(name), "enhanced") {
		return NewEnhanced(db)
	}
	return NewLegacy()
}
