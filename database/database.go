package database

import (
	"fmt"
	"os"
	"strconv"

	"gundu/log"
	"gundu/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Connect() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, pass, name, port, sslmode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.L.Fatal("failed to connect to database", zap.Error(err))
	}

	DB = db
	log.L.Info("connected to database", zap.String("host", host), zap.String("db", name))

	autoMigrateEnv := os.Getenv("DB_AUTO_MIGRATE")
	autoMigrate, err := strconv.ParseBool(autoMigrateEnv)
	if err != nil {
		log.L.Warn("invalid value for DB_AUTO_MIGRATE", zap.String("value", autoMigrateEnv))
	}

	if autoMigrate {
		if err := Migrate(DB); err != nil {
			log.L.Fatal("failed to auto-migrate database", zap.Error(err))
		}
		log.L.Info("auto migration completed")
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.GameRound{},
		&models.Bet{},
		&models.DiceResult{},
		&models.GameSetting{},
	)
}

// LockForUpdate takes a row-level lock where the dialect supports it. sqlite
// has no FOR UPDATE syntax and serializes writers on its own; the guarded
// conditional updates in the game package carry correctness there.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
