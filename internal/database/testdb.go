package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitTest apunta el DB global a una base SQLite en memoria con el
// esquema aplicado. Cada test obtiene una base limpia.
func InitTest(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("no se pudo abrir la base de pruebas: %v", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatalf("no se pudo migrar la base de pruebas: %v", err)
	}

	prev := DB
	DB = db
	t.Cleanup(func() {
		DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}
