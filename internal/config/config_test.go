package config

import (
	"slices"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 || cfg.ZoomStep != 1.05 || cfg.HitTolerance != 10 || cfg.ViewMargin != 20 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCREEN_HIT_TOLERANCE", "true")
	t.Setenv("VIEW_MARGIN", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, http://b.example:3000,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 || !cfg.ScreenHitTolerance || cfg.ViewMargin != 0 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if got, want := cfg.Origins(), []string{"https://a.example", "http://b.example:3000"}; !slices.Equal(got, want) {
		t.Errorf("Origins = %v, want %v", got, want)
	}
	if got, want := cfg.OriginHosts(), []string{"a.example", "b.example:3000"}; !slices.Equal(got, want) {
		t.Errorf("OriginHosts = %v, want %v", got, want)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"ZOOM_STEP", "1"},
		{"HIT_TOLERANCE", "0"},
		{"VIEW_MARGIN", "-1"},
		{"EXPORT_WIDTH", "0"},
		{"PORT", "not-a-number"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s accepted", tt.key, tt.value)
			}
		})
	}
}
