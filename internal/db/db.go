package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NobreTrajes/os-control/internal/config"
	"github.com/NobreTrajes/os-control/internal/domain/order"
	"github.com/NobreTrajes/os-control/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.PersonType{},
		&models.City{},
		&models.Person{},
		&models.PersonContact{},
		&models.PersonAddress{},
		&models.User{},
		&models.Product{},
		&models.TemporaryProduct{},
		&models.ServiceOrderPhase{},
		&models.RefusalReason{},
		&models.Event{},
		&models.EventParticipant{},
		&models.ServiceOrder{},
		&models.ServiceOrderItem{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	seed(db)

	return db
}

// seed garante as linhas fixas de fases e tipos de pessoa. Upserts
// idempotentes: reiniciar a API não duplica nada.
func seed(db *gorm.DB) {
	for _, name := range order.StoredPhases {
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.ServiceOrderPhase{Name: name})
	}

	for _, t := range []string{
		models.PersonTypeAdmin,
		models.PersonTypeClient,
		models.PersonTypeAttendant,
		models.PersonTypeReception,
	} {
		db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}},
			DoNothing: true,
		}).Create(&models.PersonType{Type: t})
	}
}
