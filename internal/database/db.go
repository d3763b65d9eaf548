package database

import (
	"log"

	"butterbakery-backend/internal/config"
	"butterbakery-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	db, err := Open(postgres.Open(cfg.DatabaseDSN))
	if err != nil {
		log.Fatalf("could not connect to the database: %v", err)
	}
	DB = db
	log.Println("database connection established, migration complete")
}

// Open connects with the given dialector and runs migrations. Split out
// from Init so tests can build the same schema on sqlite.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.BranchCashBox{},
		&models.CashBoxTransaction{},
		&models.CashTransferToHQ{},
		&models.DailySales{},
		&models.MonthlyTarget{},
		&models.Activity{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
