package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No config file anywhere near the test's working directory.
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Report.Title == "" {
		t.Error("default report title missing")
	}
	if len(cfg.Indices) == 0 {
		t.Error("default indices missing")
	}
	if len(cfg.Groups) == 0 {
		t.Error("default watchlist groups missing")
	}
	if len(cfg.Categories) == 0 {
		t.Error("default news categories missing")
	}
	if len(cfg.Sources) == 0 {
		t.Error("default news sources missing")
	}
	if cfg.Fetch.HistoryDays <= 0 {
		t.Error("default history window missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
report:
  title: Custom Brief
  output_dir: /tmp/reports
groups:
  - name: Chips
    stocks:
      - symbol: NVDA
        name: NVIDIA
fetch:
  history_days: 30
  timeout: 5s
sentiment:
  greed_max: 80
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Report.Title != "Custom Brief" {
		t.Errorf("title override not applied: %q", cfg.Report.Title)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0].Name != "Chips" {
		t.Errorf("groups override not applied: %+v", cfg.Groups)
	}
	if cfg.Fetch.HistoryDays != 30 {
		t.Errorf("history override not applied: %d", cfg.Fetch.HistoryDays)
	}
	if cfg.Fetch.GetTimeout() != 5*time.Second {
		t.Errorf("timeout override not applied: %s", cfg.Fetch.GetTimeout())
	}
	if cfg.Sentiment.GreedMax != 80 {
		t.Errorf("threshold override not applied: %g", cfg.Sentiment.GreedMax)
	}
	// Untouched sections keep defaults.
	if len(cfg.Indices) == 0 {
		t.Error("defaults should fill sections absent from the file")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejectsEmptyGroup(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Groups[0].Stocks = nil
	if err := cfg.Validate(); err == nil {
		t.Error("group without stocks should fail validation")
	}
}

func TestValidateRejectsKeywordlessCategory(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Categories[0].Keywords = nil
	if err := cfg.Validate(); err == nil {
		t.Error("category without keywords should fail validation")
	}
}

func TestValidateRejectsUnknownSourceKind(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sources[0].Kind = "telegraph"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown source kind should fail validation")
	}
}

func TestFetchTimeoutFallback(t *testing.T) {
	fc := FetchConfig{Timeout: "not-a-duration"}
	if fc.GetTimeout() != 10*time.Second {
		t.Errorf("bad timeout should fall back to 10s, got %s", fc.GetTimeout())
	}
}

func TestSentimentLevels(t *testing.T) {
	s := SentimentConfig{ExtremeFearMax: 25, FearMax: 45, NeutralMax: 55, GreedMax: 75}

	cases := []struct {
		score float64
		want  string
	}{
		{10, "Extreme Fear"},
		{25, "Extreme Fear"},
		{30, "Fear"},
		{50, "Neutral"},
		{60, "Greed"},
		{75, "Greed"},
		{90, "Extreme Greed"},
	}
	for _, tc := range cases {
		if got := s.Level(tc.score); got != tc.want {
			t.Errorf("Level(%g) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
