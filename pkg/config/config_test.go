package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdirTemp switches into a fresh temp directory for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
	return tmpDir
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "LOG_LEVEL", "DATA_DIR", "OUTPUT_DIR", "MAX_FAILURE_RATE",
		"DATABASE_DRIVER", "DATABASE_URL", "PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE",
		"PORT", "BIND_ADDR", "PET_ACTIVITY_FILE",
	} {
		// t.Setenv restores the original value after the test.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	tmpDir := chdirTemp(t)

	yamlContent := `
env: "test"
data_dir: "raw"
output_dir: "processed"
max_failure_rate: 0.25
sources:
  pet_activities: "activities.yaml"
database:
  driver: "postgres"
  host: "db.example.com"
  port: 5433
  user: "kennel"
  database: "kennel_test"
server:
  port: "9000"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("OUTPUT_DIR", "from-env")
	t.Setenv("PGPASSWORD", "s3cret")

	cfg, err := Load("test-version", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.OutputDir != "from-env" {
		t.Errorf("expected OutputDir=from-env (env override), got %s", cfg.OutputDir)
	}
	if cfg.DataDir != "raw" {
		t.Errorf("expected DataDir=raw (from yaml), got %s", cfg.DataDir)
	}
	if cfg.MaxFailureRate != 0.25 {
		t.Errorf("expected MaxFailureRate=0.25, got %v", cfg.MaxFailureRate)
	}
	if cfg.Sources.PetActivities != "activities.yaml" {
		t.Errorf("expected PetActivities=activities.yaml, got %s", cfg.Sources.PetActivities)
	}
	if cfg.Sources.StaffLogs != "staff_logs.csv" {
		t.Errorf("expected default StaffLogs=staff_logs.csv, got %s", cfg.Sources.StaffLogs)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("expected server addr 127.0.0.1:9000, got %s", cfg.Server.Addr())
	}

	// Postgres URL is built from PG* parts when DATABASE_URL is unset.
	if !strings.HasPrefix(cfg.Database.URL, "postgres://kennel:s3cret@") {
		t.Errorf("expected postgres URL with credentials, got %s", cfg.Database.URL)
	}
	if !strings.Contains(cfg.Database.URL, ":5433/kennel_test?sslmode=disable") {
		t.Errorf("expected port, database and sslmode in URL, got %s", cfg.Database.URL)
	}
}

func TestLoad_MissingDefaultFileUsesEnv(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	t.Setenv("OUTPUT_DIR", "out")

	cfg, err := Load("dev", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.URL != filepath.Join("out", "kennelos.db") {
		t.Errorf("expected sqlite file under output dir, got %s", cfg.Database.URL)
	}
	if cfg.MaxFailureRate != 1 {
		t.Errorf("expected default MaxFailureRate=1, got %v", cfg.MaxFailureRate)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default DataDir=data, got %s", cfg.DataDir)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	if _, err := Load("dev", "does-not-exist.yaml"); err == nil {
		t.Error("expected error when an explicit config file is missing")
	}
}

func TestLoad_ExplicitDatabaseURLWins(t *testing.T) {
	clearEnv(t)
	chdirTemp(t)

	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@example:5432/db")

	cfg, err := Load("dev", "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.URL != "postgres://u:p@example:5432/db" {
		t.Errorf("expected DATABASE_URL to be used verbatim, got %s", cfg.Database.URL)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid sqlite",
			cfg:  Config{MaxFailureRate: 0.5, Database: DatabaseConfig{Driver: DriverSQLite}},
		},
		{
			name: "none driver",
			cfg:  Config{MaxFailureRate: 1, Database: DatabaseConfig{Driver: DriverNone}},
		},
		{
			name:    "unknown driver",
			cfg:     Config{MaxFailureRate: 1, Database: DatabaseConfig{Driver: "oracle"}},
			wantErr: "oracle",
		},
		{
			name:    "failure rate above one",
			cfg:     Config{MaxFailureRate: 1.5, Database: DatabaseConfig{Driver: DriverSQLite}},
			wantErr: "max_failure_rate",
		},
		{
			name:    "sqlserver without url",
			cfg:     Config{MaxFailureRate: 1, Database: DatabaseConfig{Driver: DriverSQLServer}},
			wantErr: "DATABASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_ExampleFile(t *testing.T) {
	clearEnv(t)
	examplePath, err := filepath.Abs(filepath.Join("..", "..", "config.yaml.example"))
	if err != nil {
		t.Fatalf("failed to resolve example path: %v", err)
	}
	chdirTemp(t)

	cfg, err := Load("test", examplePath)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.MaxFailureRate != 0.2 {
		t.Errorf("expected max_failure_rate 0.2, got %v", cfg.MaxFailureRate)
	}
	if cfg.Database.URL != filepath.Join("output", "kennelos.db") {
		t.Errorf("expected default sqlite path, got %q", cfg.Database.URL)
	}
	if cfg.Server.Addr() != "127.0.0.1:8050" {
		t.Errorf("expected 127.0.0.1:8050, got %q", cfg.Server.Addr())
	}
}
