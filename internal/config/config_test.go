package config

import (
	"context"
	"testing"
	"time"

	"hostel-leave-api/internal/adapters/persistence/repositories"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("MONGODB_CONN", "mongodb://localhost:27017")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "5000" {
		t.Fatalf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.Database.Driver != DriverMongo || cfg.Database.Name != "Hostel-Leave-Management" {
		t.Fatalf("Database = %+v", cfg.Database)
	}
	if cfg.JWT.TTL != 7*24*time.Hour {
		t.Fatalf("JWT.TTL = %v, want 168h", cfg.JWT.TTL)
	}
	if cfg.ResetTokenTTL != 15*time.Minute {
		t.Fatalf("ResetTokenTTL = %v, want 15m", cfg.ResetTokenTTL)
	}
	if cfg.Cookie.Name != "access_token" || cfg.Cookie.Secure || cfg.Cookie.SameSite != "Lax" {
		t.Fatalf("Cookie = %+v", cfg.Cookie)
	}
	if cfg.Mail.Enabled() {
		t.Fatalf("mail should be disabled without SMTP credentials")
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.AuthMax != 5 || cfg.RateLimit.StrictMax != 3 {
		t.Fatalf("RateLimit = %+v", cfg.RateLimit)
	}
}

func TestLoadProdCookieAndSecret(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("MONGODB_CONN", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FRONTEND_URL", "https://hostel.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Cookie.Secure || cfg.Cookie.SameSite != "None" {
		t.Fatalf("prod cookie = %+v", cfg.Cookie)
	}
	if got := cfg.ResetURL("abc"); got != "https://hostel.example.com/reset-password/abc" {
		t.Fatalf("ResetURL = %q", got)
	}
	if cfg.GetAllowedOrigins() != "https://hostel.example.com" {
		t.Fatalf("origins = %q", cfg.GetAllowedOrigins())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad mode", map[string]string{"APP_MODE": "staging"}},
		{"missing mongo conn", map[string]string{"APP_MODE": "dev", "DB_DRIVER": "mongo"}},
		{"missing sql host", map[string]string{"APP_MODE": "dev", "DB_DRIVER": "mysql"}},
		{"unknown driver", map[string]string{"APP_MODE": "dev", "DB_DRIVER": "sqlite"}},
		{"memory in prod", map[string]string{"APP_MODE": "prod", "DB_DRIVER": "memory", "JWT_SECRET": "x"}},
		{"prod without secret", map[string]string{"APP_MODE": "prod", "MONGODB_CONN": "mongodb://db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"MONGODB_CONN", "DATABASE_URL", "DB_HOST", "JWT_SECRET", "DB_DRIVER"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestBuildDSN(t *testing.T) {
	mysqlDSN := buildDSN(DatabaseConfig{Driver: DriverMySQL, Host: "h", Port: "3306", User: "u", Password: "p", Name: "n"})
	if mysqlDSN != "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=Local" {
		t.Fatalf("mysql dsn = %q", mysqlDSN)
	}

	pgDSN := buildDSN(DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n"})
	if pgDSN != "host=h user=u password=p dbname=n port=5432 sslmode=disable" {
		t.Fatalf("postgres dsn = %q", pgDSN)
	}

	if got := buildDSN(DatabaseConfig{Driver: DriverMySQL, URL: "explicit"}); got != "explicit" {
		t.Fatalf("URL should win, got %q", got)
	}
}

func TestSeederCreatesAdminOnce(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	admin := AdminConfig{Name: "Warden", Email: "warden@hostel.test", Password: "changeme123"}

	for i := 0; i < 2; i++ {
		if err := NewSeeder(store.Users, admin).Run(ctx); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	count, err := store.Users.CountByRole(ctx, "admin")
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if count != 1 {
		t.Fatalf("admin count = %d, want 1", count)
	}
}

func TestOpenStoreMemory(t *testing.T) {
	store, err := OpenStore(context.Background(), &Config{AppMode: "dev", Database: DatabaseConfig{Driver: DriverMemory}})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
