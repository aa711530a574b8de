package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Timezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("timezone = %q, want Asia/Ho_Chi_Minh", cfg.Timezone)
	}
	if cfg.DedupWindow != 30*time.Second {
		t.Errorf("dedup window = %v, want 30s", cfg.DedupWindow)
	}
	if len(cfg.Flags) != 3 {
		t.Errorf("flags = %v, want all three by default", cfg.Flags)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VITA_PORT", "9090")
	t.Setenv("VITA_FLAGS", "missions")
	t.Setenv("VITA_CHECKIN_DEDUP_WINDOW", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if len(cfg.Flags) != 1 || cfg.Flags[0] != "missions" {
		t.Errorf("flags = %v, want [missions]", cfg.Flags)
	}
	if cfg.DedupWindow != 10*time.Second {
		t.Errorf("dedup window = %v, want 10s", cfg.DedupWindow)
	}
}
