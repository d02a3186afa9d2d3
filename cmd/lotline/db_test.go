package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a minimal sqlite-backed config and returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lotline.yaml")
	cfg := fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
sms:
  base_url: https://sms.example.com
  account_sid: AC_test
  auth_token: tok_test
  from_number: "+15550001111"
payments:
  base_url: https://pay.example.com
  api_key: sk_test
  webhook_secret: whsec_test
lots:
  - code: BZN1
    name: Bozeman North
    city: Bozeman
    state: MT
    nightly_rate_cents: 2500
    timezone: America/Denver
`, filepath.Join(dir, "lotline.db"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestDBCmd_Help(t *testing.T) {
	out, err := runCLI(t, "db", "--help")
	if err != nil {
		t.Fatalf("db --help failed: %v", err)
	}
	if !strings.Contains(out, "Database management") {
		t.Errorf("expected help to mention 'Database management', got: %s", out)
	}
	for _, sub := range []string{"init", "migrate"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q, got: %s", sub, out)
		}
	}
}

func TestDBInit(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "db", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db init failed: %v", err)
	}
	if !strings.Contains(out, "Migrated 5 tables") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "Seeded 1 lots: BZN1") {
		t.Errorf("output = %s", out)
	}

	// Re-running upserts instead of failing on the existing lot.
	if _, err := runCLI(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("second db init failed: %v", err)
	}
}

func TestDBMigrate(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "db", "migrate", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db migrate failed: %v", err)
	}
	if !strings.Contains(out, "Migrated 5 tables") {
		t.Errorf("output = %s", out)
	}
}

func TestDBInit_MissingConfig(t *testing.T) {
	_, err := runCLI(t, "db", "init", "--config", "/nonexistent/lotline.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestStatusCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init: %v", err)
	}

	out, err := runCLI(t, "status", "--config", cfgPath)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"Active conversations: 0", "Active lots: 1", "pending_payment"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q: %s", want, out)
		}
	}
}

func TestNotifyRunCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "db", "init", "--config", cfgPath); err != nil {
		t.Fatalf("db init: %v", err)
	}

	out, err := runCLI(t, "notify", "run", "--config", cfgPath)
	if err != nil {
		t.Fatalf("notify run failed: %v", err)
	}
	if !strings.Contains(out, "Dispatched 0 scheduled messages") {
		t.Errorf("output = %s", out)
	}
}
