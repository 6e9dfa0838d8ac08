package config

import "testing"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/liveops")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("TOURNAMENT_ID", "1")
	t.Setenv("SOLVER_URL", "http://solver:9000")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ServerPort != 8080 {
			t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
		}
		if cfg.SolverTimeLimitSeconds != 30 {
			t.Errorf("SolverTimeLimitSeconds = %d, want default 30", cfg.SolverTimeLimitSeconds)
		}
		if cfg.R2Enabled() {
			t.Error("R2 must be disabled without credentials")
		}
	})

	t.Run("missing database url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_URL", "")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing DATABASE_URL")
		}
	})

	t.Run("missing tournament id", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TOURNAMENT_ID", "")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing TOURNAMENT_ID")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SERVER_PORT", "not-a-port")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for invalid SERVER_PORT")
		}
	})

	t.Run("r2 enabled with full credentials", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("R2_ACCOUNT_ID", "acc")
		t.Setenv("R2_ACCESS_KEY_ID", "key")
		t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
		t.Setenv("R2_BUCKET_NAME", "boards")
		t.Setenv("R2_PUBLIC_BASE_URL", "https://boards.example.com")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.R2Enabled() {
			t.Error("R2 must be enabled with full credentials")
		}
	})
}
