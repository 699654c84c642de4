package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"maturity_backend/internals/databases/dbtest"
	"maturity_backend/internals/features/evaluations/model"
	refModel "maturity_backend/internals/features/referential/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *Store
	ref   dbtest.Referential
	ev    model.EvaluationModel
	now   time.Time
}

func setup(t *testing.T, mt model.ModelType) fixture {
	t.Helper()
	db := dbtest.Open(t)
	ref := dbtest.SeedReferential(t, db)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	actor := dbtest.Actor(t, db, "EVALUATEUR", &ent.EnterpriseID)
	ev := dbtest.Evaluation(t, db, actor.ActorID, ent.EnterpriseID, mt, model.EvaluationNew)
	now := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	return fixture{
		db:    db,
		store: New(db).WithClock(func() time.Time { return now }),
		ref:   ref,
		ev:    ev,
		now:   now,
	}
}

func countResponses(t *testing.T, db *gorm.DB, evaluationID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.ResponseModel{}).Where("id_evaluation = ?", evaluationID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestUpsertResponseIsIdempotent(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(3)}); err != nil {
			t.Fatalf("upsert #%d: %v", i, err)
		}
	}
	if n := countResponses(t, f.db, f.ev.EvaluationID); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}

	comment := "revu"
	got, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(4), Comment: &comment})
	if err != nil {
		t.Fatal(err)
	}
	if got.Value == nil || *got.Value != 4 || got.Comment == nil || *got.Comment != "revu" {
		t.Fatalf("latest write not kept: %+v", got)
	}
	if got.Score == nil || *got.Score != 4 {
		t.Fatalf("normalized score = %v", got.Score)
	}
	if n := countResponses(t, f.db, f.ev.EvaluationID); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestFirstResponseMovesEvaluationInProgress(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()
	if _, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(2)}); err != nil {
		t.Fatal(err)
	}
	ev, err := f.store.GetEvaluation(ctx, f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Status != model.EvaluationInProgress || ev.StartedAt == nil {
		t.Fatalf("evaluation = %+v", ev)
	}
}

func TestUpsertResponsesBatchIsAtomic(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	_, err := f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(3)},
		{QuestionID: f.ref.Q2.QuestionID, Value: dbtest.F64(9)},
	})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n := countResponses(t, f.db, f.ev.EvaluationID); n != 0 {
		t.Fatalf("partial batch persisted: %d rows", n)
	}

	_, err = f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(3)},
		{QuestionID: uuid.New(), Value: dbtest.F64(1)},
	})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if n := countResponses(t, f.db, f.ev.EvaluationID); n != 0 {
		t.Fatalf("partial batch persisted: %d rows", n)
	}

	n, err := f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(1)},
		{QuestionID: f.ref.Q2.QuestionID, Value: dbtest.F64(2)},
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(5)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("saved = %d, want 2", n)
	}
	values, err := f.store.AnsweredValues(ctx, f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if values[f.ref.Q1.QuestionID] != 5 {
		t.Fatalf("last duplicate must win, got %v", values[f.ref.Q1.QuestionID])
	}
}

func TestQuestionOfOtherModelIsRejected(t *testing.T) {
	f := setup(t, model.ModelStandard)
	_, err := f.store.UpsertResponse(context.Background(), f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.T1.QuestionID, Value: dbtest.F64(3)})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found for a GLOBAL question on a STANDARD evaluation, got %v", err)
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	p, err := f.store.ComputeProgress(ctx, f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Answered != 0 || p.Total != 3 {
		t.Fatalf("initial progress = %+v", p)
	}

	last := 0
	for _, q := range []refModel.QuestionModel{f.ref.Q1, f.ref.Q2, f.ref.Q3} {
		if _, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: q.QuestionID, Value: dbtest.F64(2)}); err != nil {
			t.Fatal(err)
		}
		p, err := f.store.ComputeProgress(ctx, f.ev.EvaluationID)
		if err != nil {
			t.Fatal(err)
		}
		if p.Answered < last {
			t.Fatalf("answered decreased from %d to %d", last, p.Answered)
		}
		if p.Answered > p.Total {
			t.Fatalf("answered %d > total %d", p.Answered, p.Total)
		}
		last = p.Answered
	}
	if last != 3 {
		t.Fatalf("answered = %d, want 3", last)
	}
}

func TestProgressIgnoresNullValuesAndRetiredQuestions(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	note := "à compléter"
	if _, err := f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(4)},
		{QuestionID: f.ref.Q2.QuestionID, Comment: &note},
		{QuestionID: f.ref.Q3.QuestionID, Value: dbtest.F64(1)},
	}); err != nil {
		t.Fatal(err)
	}
	dbtest.Retire(t, f.db, f.ref.Q3.QuestionID)

	p, err := f.store.ComputeProgress(ctx, f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Answered != 1 || p.Total != 2 {
		t.Fatalf("progress = %+v, want 1/2", p)
	}
}

func TestGlobalModelProgress(t *testing.T) {
	f := setup(t, model.ModelGlobal)
	p, err := f.store.ComputeProgress(context.Background(), f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Total != 2 {
		t.Fatalf("total = %d, want 2 function-level questions", p.Total)
	}
}

func TestFinalize(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	if _, err := f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(4)},
		{QuestionID: f.ref.Q2.QuestionID, Value: dbtest.F64(2)},
	}); err != nil {
		t.Fatal(err)
	}
	inv := dbtest.Invitation(t, f.db, f.ev.ActorID, &f.ev.EnterpriseID, model.InvitationAccepted, f.now.Add(time.Hour), &f.ev.EvaluationID)

	minutes := 42
	client, _ := json.Marshal(map[string]float64{"global": 99})
	ev, tree, err := f.store.Finalize(ctx, f.ev.EvaluationID, FinalizeInput{DurationMinutes: &minutes, ClientScores: datatypes.JSON(client)})
	if err != nil {
		t.Fatal(err)
	}
	if ev.Status != model.EvaluationCompleted || ev.CompletedAt == nil {
		t.Fatalf("evaluation = %+v", ev)
	}
	if ev.GlobalScore == nil || *ev.GlobalScore != 2.5 || tree.Score != 2.5 {
		t.Fatalf("global score = %v / %v, want 2.5 (client value ignored)", ev.GlobalScore, tree.Score)
	}
	if ev.DurationMinutes == nil || *ev.DurationMinutes != 42 {
		t.Fatalf("duration = %v", ev.DurationMinutes)
	}
	if len(ev.FonctionScores) != 1 || ev.FonctionScores[0].FonctionID != f.ref.Strategie.FonctionID {
		t.Fatalf("function scores = %+v", ev.FonctionScores)
	}

	var got model.InvitationModel
	if err := f.db.Where("id_invitation = ?", inv.InvitationID).Take(&got).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != model.InvitationCompleted {
		t.Fatalf("invitation status = %s", got.Status)
	}

	if _, _, err := f.store.Finalize(ctx, f.ev.EvaluationID, FinalizeInput{}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("second finalize: expected conflict, got %v", err)
	}
	if _, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.Q3.QuestionID, Value: dbtest.F64(1)}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("upsert after completion: expected conflict, got %v", err)
	}
}

func TestConcurrentFinalizeCompletesOnce(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()
	if _, err := f.store.UpsertResponses(ctx, f.ev.EvaluationID, []ResponseInput{
		{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(4)},
		{QuestionID: f.ref.Q2.QuestionID, Value: dbtest.F64(2)},
	}); err != nil {
		t.Fatal(err)
	}

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.store.Finalize(ctx, f.ev.EvaluationID, FinalizeInput{})
		}(i)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperror.Is(err, apperror.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("ok=%d conflicts=%d", ok, conflicts)
	}

	var rows, distinct int64
	f.db.Model(&model.EvaluationFonctionScoreModel{}).Where("id_evaluation = ?", f.ev.EvaluationID).Count(&rows)
	f.db.Model(&model.EvaluationFonctionScoreModel{}).Where("id_evaluation = ?", f.ev.EvaluationID).Distinct("id_fonction").Count(&distinct)
	if rows == 0 || rows != distinct {
		t.Fatalf("function score rows = %d for %d functions", rows, distinct)
	}
}

func TestFinalizeIgnoresRetiredAnswers(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()
	if _, err := f.store.UpsertResponse(ctx, f.ev.EvaluationID, ResponseInput{QuestionID: f.ref.Q1.QuestionID, Value: dbtest.F64(4)}); err != nil {
		t.Fatal(err)
	}
	dbtest.Retire(t, f.db, f.ref.Q1.QuestionID)

	if _, _, err := f.store.Finalize(ctx, f.ev.EvaluationID, FinalizeInput{}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	ev, err := f.store.GetEvaluation(ctx, f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Status == model.EvaluationCompleted {
		t.Fatal("evaluation completed with no scorable answer")
	}
}

func TestFinalizeWithoutResponsesIsRejected(t *testing.T) {
	f := setup(t, model.ModelStandard)
	_, _, err := f.store.Finalize(context.Background(), f.ev.EvaluationID, FinalizeInput{})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	ev, err := f.store.GetEvaluation(context.Background(), f.ev.EvaluationID)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Status == model.EvaluationCompleted {
		t.Fatal("evaluation must not be completed without responses")
	}
}

func TestAcceptInvitation(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()
	ent := f.ev.EnterpriseID

	pending := dbtest.Invitation(t, f.db, f.ev.ActorID, &ent, model.InvitationPending, f.now.Add(24*time.Hour), nil)
	inv, ev, err := f.store.AcceptInvitation(ctx, AcceptInput{Token: pending.Token, ActorID: f.ev.ActorID, ModelType: model.ModelStandard})
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != model.InvitationAccepted || inv.EvaluationID == nil || *inv.EvaluationID != ev.EvaluationID {
		t.Fatalf("invitation = %+v", inv)
	}
	if ev.Status != model.EvaluationNew || ev.EnterpriseID != ent {
		t.Fatalf("evaluation = %+v", ev)
	}

	_, again, err := f.store.AcceptInvitation(ctx, AcceptInput{Token: pending.Token, ActorID: f.ev.ActorID})
	if err != nil || again.EvaluationID != ev.EvaluationID {
		t.Fatalf("re-accept must return the linked evaluation, got %v / %v", again, err)
	}

	if _, _, err := f.store.AcceptInvitation(ctx, AcceptInput{Token: pending.Token, ActorID: uuid.New()}); !apperror.Is(err, apperror.KindAccessDenied) {
		t.Fatalf("other actor: expected access denied, got %v", err)
	}

	overdue := dbtest.Invitation(t, f.db, f.ev.ActorID, &ent, model.InvitationPending, f.now.Add(-time.Hour), nil)
	if _, _, err := f.store.AcceptInvitation(ctx, AcceptInput{Token: overdue.Token, ActorID: f.ev.ActorID}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("overdue: expected conflict, got %v", err)
	}
	if _, _, err := f.store.AcceptInvitation(ctx, AcceptInput{Token: "nope", ActorID: f.ev.ActorID}); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("unknown token: expected not found, got %v", err)
	}
}

func TestExpirePendingInvitations(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ent := f.ev.EnterpriseID
	dbtest.Invitation(t, f.db, f.ev.ActorID, &ent, model.InvitationPending, f.now.Add(-time.Minute), nil)
	dbtest.Invitation(t, f.db, f.ev.ActorID, &ent, model.InvitationPending, f.now.Add(time.Hour), nil)
	dbtest.Invitation(t, f.db, f.ev.ActorID, &ent, model.InvitationAccepted, f.now.Add(-time.Hour), &f.ev.EvaluationID)

	n, err := f.store.ExpirePendingInvitations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}
}

func TestStartEvaluationReusesOpenOne(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	ev, created, err := f.store.StartEvaluation(ctx, StartInput{ActorID: f.ev.ActorID, EnterpriseID: f.ev.EnterpriseID, ModelType: model.ModelStandard})
	if err != nil {
		t.Fatal(err)
	}
	if created || ev.EvaluationID != f.ev.EvaluationID || ev.Status != model.EvaluationInProgress {
		t.Fatalf("expected the open evaluation to be resumed, got created=%v %+v", created, ev)
	}

	ev2, created, err := f.store.StartEvaluation(ctx, StartInput{ActorID: f.ev.ActorID, EnterpriseID: f.ev.EnterpriseID, ModelType: model.ModelGlobal})
	if err != nil {
		t.Fatal(err)
	}
	if !created || ev2.ModelType != model.ModelGlobal {
		t.Fatalf("expected a new GLOBAL evaluation, got created=%v %+v", created, ev2)
	}
}

func TestEnterpriseRollup(t *testing.T) {
	f := setup(t, model.ModelStandard)
	ctx := context.Background()

	other := dbtest.Actor(t, f.db, "EVALUATEUR", &f.ev.EnterpriseID)
	ev2 := dbtest.Evaluation(t, f.db, other.ActorID, f.ev.EnterpriseID, model.ModelStandard, model.EvaluationNew)

	for _, tc := range []struct {
		id uuid.UUID
		v  float64
	}{{f.ev.EvaluationID, 4}, {ev2.EvaluationID, 2}} {
		if _, err := f.store.UpsertResponse(ctx, tc.id, ResponseInput{QuestionID: f.ref.Q3.QuestionID, Value: dbtest.F64(tc.v)}); err != nil {
			t.Fatal(err)
		}
		if _, _, err := f.store.Finalize(ctx, tc.id, FinalizeInput{}); err != nil {
			t.Fatal(err)
		}
	}
	open := dbtest.Evaluation(t, f.db, other.ActorID, f.ev.EnterpriseID, model.ModelStandard, model.EvaluationNew)
	if _, err := f.store.UpsertResponse(ctx, open.EvaluationID, ResponseInput{QuestionID: f.ref.Q3.QuestionID, Value: dbtest.F64(0)}); err != nil {
		t.Fatal(err)
	}

	r, err := f.store.EnterpriseRollup(ctx, f.ev.EnterpriseID)
	if err != nil {
		t.Fatal(err)
	}
	if r.Evaluations != 2 {
		t.Fatalf("evaluations = %d", r.Evaluations)
	}
	if len(r.Tree.Fonctions) != 2 {
		t.Fatalf("fonctions = %d", len(r.Tree.Fonctions))
	}
	strat := r.Tree.Fonctions[0]
	if strat.Score != 3 {
		t.Fatalf("Stratégie = %v, want mean of completed answers (3)", strat.Score)
	}
	if strat.Level == nil || strat.Level.Recommendation == "" {
		t.Fatalf("level with recommendation expected, got %+v", strat.Level)
	}
	if r.Tree.Fonctions[1].Level != nil {
		t.Fatal("unanswered function must not carry a level")
	}
}
