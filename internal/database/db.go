package database

import (
	"log"

	"tallerpos-backend/internal/config"
	"tallerpos-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("No se pudo conectar a la base de datos: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Error de AutoMigrate: %v", err)
	}

	log.Println("Conexión a base de datos lista. Migración completada.")
}

// Migrate aplica el esquema. Separado de Init para poder reutilizarlo
// contra la base en memoria de los tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Location{},
		&models.User{},
		&models.Product{},
		&models.LocationStock{},
		&models.Transfer{},
		&models.TransferItem{},
		&models.Shift{},
		&models.AuditLog{},
	)
}
