package route

import (
	"testing"
	"time"

	"maturity_backend/internals/databases/dbtest"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/middlewares"
	"maturity_backend/internals/middlewares/auth"
	"maturity_backend/internals/middlewares/auth/authtest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	authtest.UseSecret(t)
	db := dbtest.Open(t)
	app := middlewares.NewApp()
	api := app.Group("/api", auth.AuthMiddleware(db, scope.NewLegacy()))
	EvaluationRoutes(api, db)
	return app, db
}

func TestStatusCheckContract(t *testing.T) {
	app, db := newApp(t)
	dbtest.SeedReferential(t, db)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	actor := dbtest.Actor(t, db, "EVALUATEUR", &ent.EnterpriseID)
	inv := dbtest.Invitation(t, db, actor.ActorID, &ent.EnterpriseID, model.InvitationPending, time.Now().Add(24*time.Hour), nil)

	status, body := authtest.Do(t, app, "GET", "/api/evaluation-status/check/"+actor.ActorID.String(), actor.ActorID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", status, body)
	}
	for _, k := range []string{"hasEvaluation", "status", "message", "redirectTo"} {
		if _, ok := body[k]; !ok {
			t.Fatalf("missing %q in %v", k, body)
		}
	}
	if body["status"] != "PENDING_ACCEPTANCE" || body["redirectTo"] != "/invitation/accept/"+inv.Token {
		t.Fatalf("body = %v", body)
	}

	other := dbtest.Enterprise(t, db, "Other", "Services")
	outsider := dbtest.Actor(t, db, "MANAGER", &other.EnterpriseID)
	if status, _ := authtest.Do(t, app, "GET", "/api/evaluation-status/check/"+actor.ActorID.String(), outsider.ActorID, nil); status != fiber.StatusForbidden {
		t.Fatalf("outsider: %d", status)
	}
	if status, _ := authtest.Do(t, app, "GET", "/api/evaluation-status/check/not-a-uuid", actor.ActorID, nil); status != fiber.StatusUnprocessableEntity {
		t.Fatalf("bad id: %d", status)
	}
}

func TestEvaluationHTTPFlow(t *testing.T) {
	app, db := newApp(t)
	ref := dbtest.SeedReferential(t, db)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	actor := dbtest.Actor(t, db, "EVALUATEUR", &ent.EnterpriseID)
	inv := dbtest.Invitation(t, db, actor.ActorID, &ent.EnterpriseID, model.InvitationPending, time.Now().Add(24*time.Hour), nil)

	status, body := authtest.Do(t, app, "POST", "/api/invitations/"+inv.Token+"/accept", actor.ActorID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("accept: %d %v", status, body)
	}
	data := body["data"].(map[string]any)
	evID := data["evaluation"].(map[string]any)["id_evaluation"].(string)
	base := "/api/maturity-evaluation/" + evID

	status, body = authtest.Do(t, app, "POST", base+"/submit", actor.ActorID, map[string]any{})
	if status != fiber.StatusConflict {
		t.Fatalf("submit without responses: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "POST", base+"/responses-batch", actor.ActorID, map[string]any{
		"responses": []map[string]any{{"valeur": 3}},
	})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("missing id_question: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "POST", base+"/responses-batch", actor.ActorID, map[string]any{
		"responses": []map[string]any{
			{"id_question": ref.Q1.QuestionID.String(), "valeur": 1},
			{"id_question": ref.Q2.QuestionID.String(), "valeur": 3},
		},
	})
	if status != fiber.StatusOK || body["count"] != float64(2) {
		t.Fatalf("batch: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "GET", base+"/responses", actor.ActorID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("responses: %d %v", status, body)
	}
	if rows := body["data"].([]any); len(rows) != 2 {
		t.Fatalf("responses = %v", rows)
	}

	status, body = authtest.Do(t, app, "POST", "/api/evaluation-status/update-progress", actor.ActorID, map[string]any{
		"id_evaluation": evID,
		"responses":     []map[string]any{{"id_question": ref.Q3.QuestionID.String(), "valeur": 9}},
		"currentStep":   1,
		"totalSteps":    2,
	})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("out of scale value: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "POST", base+"/submit", actor.ActorID, map[string]any{
		"scores":        map[string]float64{ref.Strategie.FonctionID.String(): 7},
		"duree_minutes": 12,
	})
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("client score above 5: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "POST", base+"/submit", actor.ActorID, map[string]any{"duree_minutes": 12})
	if status != fiber.StatusOK || body["success"] != true {
		t.Fatalf("submit: %d %v", status, body)
	}
	scores := body["scores"].(map[string]any)
	if scores["score_global"] != 2.5 {
		t.Fatalf("score_global = %v", scores["score_global"])
	}

	status, body = authtest.Do(t, app, "GET", base+"/results", actor.ActorID, nil)
	if status != fiber.StatusOK || body["data"].(map[string]any)["score_global"] != 2.5 {
		t.Fatalf("results: %d %v", status, body)
	}

	status, _ = authtest.Do(t, app, "PUT", base+"/responses/"+ref.Q3.QuestionID.String(), actor.ActorID, map[string]any{"valeur": 2})
	if status != fiber.StatusConflict {
		t.Fatalf("write after submit: %d", status)
	}

	status, body = authtest.Do(t, app, "GET", "/api/evaluation-status/check/"+actor.ActorID.String(), actor.ActorID, nil)
	if status != fiber.StatusOK || body["status"] != "COMPLETED" || body["hasEvaluation"] != true {
		t.Fatalf("status after submit: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "GET", "/api/maturity-evaluation?statut=COMPLETED", actor.ActorID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: %d %v", status, body)
	}
	if p := body["pagination"].(map[string]any); p["total"] != float64(1) {
		t.Fatalf("pagination = %v", p)
	}
}

func TestUpdateProgressContract(t *testing.T) {
	app, db := newApp(t)
	ref := dbtest.SeedReferential(t, db)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	actor := dbtest.Actor(t, db, "MANAGER", &ent.EnterpriseID)
	ev := dbtest.Evaluation(t, db, actor.ActorID, ent.EnterpriseID, model.ModelGlobal, model.EvaluationNew)

	status, body := authtest.Do(t, app, "POST", "/api/evaluation-status/update-progress", actor.ActorID, map[string]any{
		"id_evaluation": ev.EvaluationID.String(),
		"responses": []map[string]any{
			{"id_question": ref.T1.QuestionID.String(), "valeur": 5},
			{"id_question": ref.T2.QuestionID.String(), "valeur": 3},
		},
		"currentStep": 2,
		"totalSteps":  2,
	})
	if status != fiber.StatusOK || body["success"] != true || body["isCompleted"] != true {
		t.Fatalf("update-progress: %d %v", status, body)
	}

	status, body = authtest.Do(t, app, "GET", "/api/evaluation-status/check/"+actor.ActorID.String(), actor.ActorID, nil)
	if status != fiber.StatusOK || body["status"] != "NO_INVITATION" {
		t.Fatalf("no invitation wins: %d %v", status, body)
	}

	status, _ = authtest.Do(t, app, "GET", "/api/maturity-evaluation/"+uuid.NewString(), actor.ActorID, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("unknown evaluation: %d", status)
	}
}
