package studyconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStudy(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write study file: %v", err)
	}
	return path
}

const validStudy = `name: first-wave
locations:
  - Germany
  - France
start: "2020-02-15"
end: "2020-10-15"
pre_window: 14
post_window: 14
pivots:
  - label: lockdown
    location: Germany
    metric: Google_GroceryMobility
    date: "2020-03-22"
`

func TestLoad(t *testing.T) {
	path := writeStudy(t, validStudy)

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "first-wave" {
		t.Errorf("expected name=first-wave, got %s", cfg.Name)
	}
	if len(cfg.Locations) != 2 {
		t.Errorf("expected 2 locations, got %d", len(cfg.Locations))
	}
	if len(cfg.Pivots) != 1 || cfg.Pivots[0].Metric != "Google_GroceryMobility" {
		t.Errorf("unexpected pivots: %+v", cfg.Pivots)
	}
	if len(yamlData) == 0 {
		t.Error("expected raw yaml bytes")
	}

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeStudy(t, validStudy+"unknown_knob: 3\n")

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Name:       "study",
			Locations:  []string{"Germany", "France"},
			Start:      "2020-02-15",
			End:        "2020-10-15",
			PreWindow:  14,
			PostWindow: 14,
			Pivots: []Pivot{
				{Location: "Germany", Metric: "JHU_ConfirmedCases", Date: "2020-03-22"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty name", func(c *Config) { c.Name = "" }, "name"},
		{"no locations", func(c *Config) { c.Locations = nil }, "locations"},
		{"duplicate location", func(c *Config) { c.Locations = []string{"Germany", "Germany"} }, "duplicate"},
		{"bad start", func(c *Config) { c.Start = "Feb 15" }, "start"},
		{"start after end", func(c *Config) { c.Start = "2020-11-01" }, "before end"},
		{"pre window too small", func(c *Config) { c.PreWindow = 1 }, "pre_window"},
		{"post window too small", func(c *Config) { c.PostWindow = 0 }, "post_window"},
		{"pivot unknown location", func(c *Config) { c.Pivots[0].Location = "Atlantis" }, "not in locations"},
		{"pivot missing metric", func(c *Config) { c.Pivots[0].Metric = "" }, "metric"},
		{"pivot outside range", func(c *Config) { c.Pivots[0].Date = "2021-01-01" }, "within"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default study must validate: %v", err)
	}
	if len(cfg.Locations) != 34 {
		t.Errorf("expected 34 locations, got %d", len(cfg.Locations))
	}

	start, err := cfg.StartDate()
	if err != nil {
		t.Fatalf("StartDate: %v", err)
	}
	end, err := cfg.EndDate()
	if err != nil {
		t.Fatalf("EndDate: %v", err)
	}
	if !start.Before(end) {
		t.Error("default start must precede end")
	}
}
