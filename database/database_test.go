package database

import (
	"path/filepath"
	"testing"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/models"
)

func TestOpenAndInitializeIdempotent(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer Close(db)

	for i := 0; i < 2; i++ {
		if err := Initialize(db); err != nil {
			t.Fatalf("Initialize call %d failed: %v", i+1, err)
		}
	}

	for _, table := range []string{"users", "predictions"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %q was not created", table)
		}
	}
	if !db.Migrator().HasColumn(&models.Prediction{}, "input_data") {
		t.Error("predictions.input_data column missing")
	}
}

func TestInitializeKeepsExistingRows(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "keep.db")}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer Close(db)

	if err := Initialize(db); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := db.Create(&models.User{Username: "bob", Email: "b@x.com", Password: "pw"}).Error; err != nil {
		t.Fatalf("insert user failed: %v", err)
	}
	if err := Initialize(db); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
