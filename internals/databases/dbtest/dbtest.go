// Package dbtest opens migrated in-memory SQLite databases and seeds fixtures for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	database "maturity_backend/internals/databases"
	enterpriseModel "maturity_backend/internals/features/enterprises/model"
	evaluationModel "maturity_backend/internals/features/evaluations/model"
	refModel "maturity_backend/internals/features/referential/model"
	actorModel "maturity_backend/internals/features/users/actors/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh, migrated database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func Enterprise(t testing.TB, db *gorm.DB, name, sector string) enterpriseModel.EnterpriseModel {
	t.Helper()
	e := enterpriseModel.EnterpriseModel{Name: name, Sector: sector}
	must(t, db.Create(&e).Error)
	return e
}

func Actor(t testing.TB, db *gorm.DB, role string, enterpriseID *uuid.UUID) actorModel.ActorModel {
	t.Helper()
	a := actorModel.ActorModel{
		Email:        uuid.NewString() + "@example.test",
		FullName:     "Test " + role,
		Role:         role,
		EnterpriseID: enterpriseID,
		IsActive:     true,
	}
	must(t, db.Create(&a).Error)
	return a
}

func Fonction(t testing.TB, db *gorm.DB, name string, order int, weight *float64) refModel.FonctionModel {
	t.Helper()
	f := refModel.FonctionModel{Name: name, Order: order, Weight: weight, IsActive: true}
	must(t, db.Create(&f).Error)
	return f
}

func Theme(t testing.TB, db *gorm.DB, fonctionID uuid.UUID, name string, order int) refModel.ThemeModel {
	t.Helper()
	th := refModel.ThemeModel{FonctionID: fonctionID, Name: name, Order: order, IsActive: true}
	must(t, db.Create(&th).Error)
	return th
}

func Question(t testing.TB, db *gorm.DB, fonctionID uuid.UUID, themeID *uuid.UUID, weight float64) refModel.QuestionModel {
	t.Helper()
	q := refModel.QuestionModel{
		FonctionID: fonctionID,
		ThemeID:    themeID,
		Text:       "Question " + uuid.NewString()[:8],
		Weight:     weight,
		ScaleMax:   refModel.DefaultScaleMax,
		IsActive:   true,
	}
	must(t, db.Create(&q).Error)
	return q
}

// Retire flags a question inactive (a bool false would be swallowed by the column default on create).
func Retire(t testing.TB, db *gorm.DB, questionID uuid.UUID) {
	t.Helper()
	must(t, db.Model(&refModel.QuestionModel{}).Where("id_question = ?", questionID).Update("actif", false).Error)
}

func Evaluation(t testing.TB, db *gorm.DB, actorID, enterpriseID uuid.UUID, mt evaluationModel.ModelType, status evaluationModel.EvaluationStatus) evaluationModel.EvaluationModel {
	t.Helper()
	ev := evaluationModel.EvaluationModel{ActorID: actorID, EnterpriseID: enterpriseID, ModelType: mt, Status: status}
	must(t, db.Create(&ev).Error)
	return ev
}

func Invitation(t testing.TB, db *gorm.DB, actorID uuid.UUID, enterpriseID *uuid.UUID, status evaluationModel.InvitationStatus, expiresAt time.Time, evaluationID *uuid.UUID) evaluationModel.InvitationModel {
	t.Helper()
	inv := evaluationModel.InvitationModel{
		ActorID:      actorID,
		EnterpriseID: enterpriseID,
		EvaluationID: evaluationID,
		Status:       status,
		ExpiresAt:    expiresAt,
	}
	must(t, db.Create(&inv).Error)
	return inv
}

// Referential is a small two-function questionnaire:
// Stratégie (STANDARD: themes Vision{Q1 w1, Q2 w3} and Gouvernance{Q3 w1})
// and Technologie (GLOBAL: T1 w1, T2 w1).
type Referential struct {
	Strategie   refModel.FonctionModel
	Technologie refModel.FonctionModel
	Vision      refModel.ThemeModel
	Gouvernance refModel.ThemeModel
	Q1, Q2, Q3  refModel.QuestionModel
	T1, T2      refModel.QuestionModel
}

func SeedReferential(t testing.TB, db *gorm.DB) Referential {
	t.Helper()
	var r Referential
	r.Strategie = Fonction(t, db, "Stratégie", 1, nil)
	r.Technologie = Fonction(t, db, "Technologie", 2, nil)
	r.Vision = Theme(t, db, r.Strategie.FonctionID, "Vision", 1)
	r.Gouvernance = Theme(t, db, r.Strategie.FonctionID, "Gouvernance", 2)
	r.Q1 = Question(t, db, r.Strategie.FonctionID, &r.Vision.ThemeID, 1)
	r.Q2 = Question(t, db, r.Strategie.FonctionID, &r.Vision.ThemeID, 3)
	r.Q3 = Question(t, db, r.Strategie.FonctionID, &r.Gouvernance.ThemeID, 1)
	r.T1 = Question(t, db, r.Technologie.FonctionID, nil, 1)
	r.T2 = Question(t, db, r.Technologie.FonctionID, nil, 1)
	return r
}

func F64(v float64) *float64 { return &v }
