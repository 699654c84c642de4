package scope

import (
	"context"
	"testing"

	"maturity_backend/internals/databases/dbtest"
	accessModel "maturity_backend/internals/features/access/model"
	evaluationModel "maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func TestUnifiedEnterpriseAccess(t *testing.T) {
	x, y := uuid.New(), uuid.New()

	full := Principal{Actor: Actor{ID: uuid.New(), EnterpriseID: &x}, Scope: ScopeEnterpriseFull}
	if err := full.EnsureEnterprise(y); !apperror.Is(err, apperror.KindAccessDenied) {
		t.Fatalf("ENTERPRISE_FULL on another enterprise: got %v", err)
	}
	if err := full.EnsureEnterprise(x); err != nil {
		t.Fatalf("own enterprise denied: %v", err)
	}

	global := Principal{Actor: Actor{ID: uuid.New()}, Scope: ScopeGlobal}
	if err := global.EnsureEnterprise(y); err != nil {
		t.Fatalf("GLOBAL denied: %v", err)
	}

	orphan := Principal{Actor: Actor{ID: uuid.New()}, Scope: ScopeEnterpriseFull}
	if orphan.CanAccessEnterprise(x) {
		t.Fatal("actor without enterprise must not see scoped data")
	}
}

func TestCanMutate(t *testing.T) {
	x := uuid.New()
	me, other := uuid.New(), uuid.New()

	personal := Principal{Actor: Actor{ID: me, EnterpriseID: &x}, Scope: ScopeEnterprisePersonal}
	if !personal.CanMutate(x, me) {
		t.Fatal("personal scope must mutate its own resource")
	}
	if personal.CanMutate(x, other) {
		t.Fatal("personal scope must not mutate a colleague's resource")
	}

	full := Principal{Actor: Actor{ID: me, EnterpriseID: &x}, Scope: ScopeEnterpriseFull}
	if !full.CanMutate(x, other) {
		t.Fatal("enterprise-full scope mutates any resource of its enterprise")
	}
	if full.CanMutate(uuid.New(), me) {
		t.Fatal("no mutation outside the enterprise")
	}
}

func TestLegacyScope(t *testing.T) {
	ctx := context.Background()
	m := NewLegacy()
	cases := []struct {
		actor Actor
		want  DataScope
	}{
		{Actor{Role: "SUPER_ADMIN"}, ScopeGlobal},
		{Actor{Role: "Consultant"}, ScopeGlobal},
		{Actor{Role: "MANAGER"}, ScopeEnterpriseFull},
		{Actor{Role: "EVALUATEUR"}, ScopeEnterpriseFull},
		{Actor{Role: "EVALUATEUR", AccessLevel: ptr("enterprise_personal")}, ScopeEnterprisePersonal},
	}
	for _, tc := range cases {
		got, err := m.ScopeOf(ctx, tc.actor)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ScopeOf(%+v) = %s, want %s", tc.actor, got, tc.want)
		}
	}

	ok, _ := m.CanAccessModule(ctx, Actor{Role: "MANAGER"}, ModuleNiveaux, accessModel.ActionUpdate)
	if ok {
		t.Fatal("manager must not edit maturity grids under the legacy model")
	}
	ok, _ = m.CanAccessModule(ctx, Actor{Role: "ADMIN"}, ModuleNiveaux, accessModel.ActionUpdate)
	if !ok {
		t.Fatal("admin must edit maturity grids")
	}
	ok, _ = m.CanAccessModule(ctx, Actor{Role: "GUEST"}, ModuleEvaluations, accessModel.ActionView)
	if ok {
		t.Fatal("unknown role must be refused")
	}
}

func TestEnhancedScopeAndGrants(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	m := NewEnhanced(db)

	if err := db.Create(&accessModel.RoleModel{Name: "INTERVENANT", AccessLevel: ptr("ENTERPRISE_FULL")}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&accessModel.RolePermissionModel{RoleName: "MANAGER", ModuleCode: ModuleNiveaux, Actions: "view, update"}).Error; err != nil {
		t.Fatal(err)
	}

	scopes := []struct {
		actor Actor
		want  DataScope
	}{
		{Actor{Role: "Intervenant"}, ScopeEnterpriseFull},
		{Actor{Role: "EVALUATEUR"}, ScopeEnterprisePersonal},
		{Actor{Role: "MANAGER"}, ScopeEnterpriseFull},
		{Actor{Role: "CONSULTANT"}, ScopeGlobal},
		{Actor{Role: "MANAGER", AccessLevel: ptr("GLOBAL")}, ScopeGlobal},
	}
	for _, tc := range scopes {
		got, err := m.ScopeOf(ctx, tc.actor)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("ScopeOf(%+v) = %s, want %s", tc.actor, got, tc.want)
		}
	}

	p, err := Resolve(ctx, m, Actor{ID: uuid.New(), Role: "manager"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.EnsureModule(ctx, ModuleNiveaux, accessModel.ActionUpdate); err != nil {
		t.Fatalf("granted action refused: %v", err)
	}
	if err := p.EnsureModule(ctx, ModuleNiveaux, accessModel.ActionDelete); !apperror.Is(err, apperror.KindAccessDenied) {
		t.Fatalf("ungranted action: got %v", err)
	}
	if err := p.EnsureModule(ctx, ModuleBenchmarks, accessModel.ActionView); !apperror.Is(err, apperror.KindAccessDenied) {
		t.Fatalf("module without grant: got %v", err)
	}

	admin, _ := Resolve(ctx, m, Actor{ID: uuid.New(), Role: "SUPER_ADMIN"})
	if err := admin.EnsureModule(ctx, ModuleBenchmarks, accessModel.ActionDelete); err != nil {
		t.Fatalf("super admin refused: %v", err)
	}
}

func TestScopeQueryFiltersServerSide(t *testing.T) {
	db := dbtest.Open(t)
	x := dbtest.Enterprise(t, db, "X", "Banque")
	y := dbtest.Enterprise(t, db, "Y", "Retail")
	ax := dbtest.Actor(t, db, "EVALUATEUR", &x.EnterpriseID)
	bx := dbtest.Actor(t, db, "EVALUATEUR", &x.EnterpriseID)
	ay := dbtest.Actor(t, db, "EVALUATEUR", &y.EnterpriseID)
	dbtest.Evaluation(t, db, ax.ActorID, x.EnterpriseID, evaluationModel.ModelStandard, evaluationModel.EvaluationNew)
	dbtest.Evaluation(t, db, bx.ActorID, x.EnterpriseID, evaluationModel.ModelStandard, evaluationModel.EvaluationNew)
	dbtest.Evaluation(t, db, ay.ActorID, y.EnterpriseID, evaluationModel.ModelStandard, evaluationModel.EvaluationNew)

	count := func(p Principal) int64 {
		var n int64
		if err := db.Model(&evaluationModel.EvaluationModel{}).Scopes(p.ScopeQuery("id_entreprise", "id_acteur")).Count(&n).Error; err != nil {
			t.Fatal(err)
		}
		return n
	}

	if n := count(Principal{Scope: ScopeGlobal}); n != 3 {
		t.Fatalf("global sees %d, want 3", n)
	}
	if n := count(Principal{Actor: Actor{ID: ax.ActorID, EnterpriseID: &x.EnterpriseID}, Scope: ScopeEnterpriseFull}); n != 2 {
		t.Fatalf("enterprise-full sees %d, want 2", n)
	}
	if n := count(Principal{Actor: Actor{ID: ax.ActorID, EnterpriseID: &x.EnterpriseID}, Scope: ScopeEnterprisePersonal}); n != 1 {
		t.Fatalf("personal sees %d, want 1", n)
	}
	if n := count(Principal{Actor: Actor{ID: uuid.New()}, Scope: ScopeEnterpriseFull}); n != 0 {
		t.Fatalf("actor without enterprise sees %d, want 0", n)
	}
}

func TestNewSelectsModel(t *testing.T) {
	if New("enhanced", nil).Name() != "enhanced" {
		t.Fatal("enhanced not selected")
	}
	if New("", nil).Name() != "legacy" || New("legacy", nil).Name() != "legacy" {
		t.Fatal("legacy must be the default")
	}
}
