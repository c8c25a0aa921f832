package common

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"loopwise-go/internal/database"
	"loopwise-go/internal/models"
	"loopwise-go/internal/store"
)

func testConfig(t *testing.T, backend string) *models.Config {
	t.Helper()
	return &models.Config{
		Database: models.DatabaseConfig{
			Path:         filepath.Join(t.TempDir(), "loopwise.db"),
			MaxOpenConns: 1,
			PingTimeout:  5 * time.Second,
		},
		Preferences: models.PreferencesConfig{Backend: backend, Namespace: "test"},
		Rail:        "circle",
		Circle:      models.CircleConfig{BaseURL: "http://localhost"},
	}
}

func TestInitializeServices_MemoryBackend(t *testing.T) {
	services, err := InitializeServices(context.Background(), testConfig(t, "memory"))
	if err != nil {
		t.Fatalf("InitializeServices failed: %v", err)
	}
	defer services.Close()

	if services.Controller == nil {
		t.Fatal("controller not wired")
	}
	if _, ok := services.Preferences.(*store.MemoryPreferenceStore); !ok {
		t.Errorf("preferences = %T, want memory store", services.Preferences)
	}
	if _, ok := services.Journal.(*store.MemoryTransferJournal); !ok {
		t.Errorf("journal = %T, want memory journal", services.Journal)
	}
	if services.Rail != nil {
		t.Errorf("rail should be disabled without an API key, got %T", services.Rail)
	}
	if services.Ledger != nil {
		t.Error("ledger mirror should be off by default")
	}
	if services.Controller.Bus() != services.Bus {
		t.Error("controller should publish on the shared bus")
	}
}

func TestInitializeServices_SQLiteBackend(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.Circle.APIKey = "test-key"

	services, err := InitializeServices(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitializeServices failed: %v", err)
	}
	defer services.Close()

	db, ok := services.Preferences.(*database.Service)
	if !ok {
		t.Fatalf("preferences = %T, want *database.Service", services.Preferences)
	}
	if services.Journal != store.TransferJournal(db) {
		t.Error("sqlite backend should also journal transfers")
	}
	if services.Rail == nil || services.Rail.Name() != "circle" {
		t.Errorf("expected circle rail, got %v", services.Rail)
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Config)
	}{
		{"unknown backend", func(c *models.Config) { c.Preferences.Backend = "etcd" }},
		{"unknown rail", func(c *models.Config) { c.Rail = "swift" }},
		{"bad database", func(c *models.Config) {
			c.Preferences.Backend = "sqlite"
			c.Database.MaxOpenConns = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "memory")
			tt.mutate(cfg)
			if _, err := InitializeServices(context.Background(), cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
