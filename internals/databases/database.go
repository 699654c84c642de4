package database

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"maturity_backend/internals/configs"
	accessModel "maturity_backend/internals/features/access/model"
	benchmarkModel "maturity_backend/internals/features/benchmarks/model"
	enterpriseModel "maturity_backend/internals/features/enterprises/model"
	evaluationModel "maturity_backend/internals/features/evaluations/model"
	referentialModel "maturity_backend/internals/features/referential/model"
	actorModel "maturity_backend/internals/features/users/actors/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB opens PostgreSQL when DATABASE_URL or DB_HOST is set, SQLite otherwise.
func ConnectDB(cfg configs.AppConfig) {
	gcfg := &gorm.Config{Logger: configs.NewGormLogger(cfg.DBLogLevel)}

	var (
		db  *gorm.DB
		err error
	)
	if dsn := postgresDSN(cfg); dsn != "" {
		log.Println("🔌 Connecting to PostgreSQL...")
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
	} else {
		log.Printf("🔌 Opening SQLite at %s...", cfg.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath+"?_foreign_keys=on&_busy_timeout=5000"), gcfg)
	}
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	DB = db
	log.Printf("✅ DB connected (%s).", db.Dialector.Name())
}

func postgresDSN(cfg configs.AppConfig) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	if cfg.DBHost == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=maturity&options=%s",
		url.QueryEscape(cfg.DBUser),
		url.QueryEscape(cfg.DBPassword),
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
		url.QueryEscape("-c statement_timeout=5000"),
	)
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	if IsSQLite(DB) {
		// single writer
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func IsSQLite(db *gorm.DB) bool {
	return strings.EqualFold(db.Dialector.Name(), "sqlite")
}

// Models lists every table owned by the service, in creation order.
func Models() []interface{} {
	return []interface{}{
		&enterpriseModel.EnterpriseModel{},
		&actorModel.ActorModel{},
		&accessModel.RoleModel{},
		&accessModel.ModuleModel{},
		&accessModel.RolePermissionModel{},
		&referentialModel.FonctionModel{},
		&referentialModel.ThemeModel{},
		&referentialModel.QuestionModel{},
		&referentialModel.MaturityLevelModel{},
		&evaluationModel.EvaluationModel{},
		&evaluationModel.EvaluationFonctionScoreModel{},
		&evaluationModel.ResponseModel{},
		&evaluationModel.InvitationModel{},
		&benchmarkModel.BenchmarkCacheModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
