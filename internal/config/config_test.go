package config

import (
	"strings"
	"testing"
	"time"

	"github.com/alirezadp10/ezapply/internal/model"
)

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("LINKEDIN_USERNAME", "me@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "hunter2")
	t.Setenv("KEYWORDS", "go, backend")
	t.Setenv("USER_INFORMATION", "5 years backend experience")
	t.Setenv("AI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkType != model.WorkTypeRemote {
		t.Errorf("WorkType = %q, want remote", cfg.WorkType)
	}
	if cfg.PollInterval != time.Hour {
		t.Errorf("PollInterval = %v, want 1h", cfg.PollInterval)
	}
	if cfg.SearchWindow != 6*time.Hour {
		t.Errorf("SearchWindow = %v, want 6h", cfg.SearchWindow)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.SimilarityThreshold != 0.95 {
		t.Errorf("SimilarityThreshold = %v, want 0.95", cfg.SimilarityThreshold)
	}
	if got := cfg.Keywords; len(got) != 2 || got[0] != "go" || got[1] != "backend" {
		t.Errorf("Keywords = %v", got)
	}
	if cfg.IMAP.Enabled() {
		t.Error("IMAP should be disabled without settings")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("WORK_TYPE", "hybrid")
	t.Setenv("POLL_INTERVAL", "30m")
	t.Setenv("HEADLESS", "false")
	t.Setenv("COUNTRIES", "GERMANY, NETHERLANDS")
	t.Setenv("MAX_WIZARD_STEPS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkType != model.WorkTypeHybrid {
		t.Errorf("WorkType = %q", cfg.WorkType)
	}
	if cfg.PollInterval != 30*time.Minute {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.Headless {
		t.Error("Headless should be false")
	}
	if len(cfg.Countries) != 2 || cfg.Countries[1] != "NETHERLANDS" {
		t.Errorf("Countries = %v", cfg.Countries)
	}
	if cfg.MaxWizardSteps != 5 {
		t.Errorf("MaxWizardSteps = %d", cfg.MaxWizardSteps)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []struct {
		name  string
		unset string
		want  string
	}{
		{"no username", "LINKEDIN_USERNAME", "LINKEDIN_USERNAME"},
		{"no keywords", "KEYWORDS", "KEYWORDS"},
		{"no profile", "USER_INFORMATION", "USER_INFORMATION"},
		{"no api key", "AI_API_KEY", "AI_API_KEY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.unset, "")

			_, err := Load("")
			if err == nil {
				t.Fatal("Load: expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("WORK_TYPE", "freelance")

	if _, err := Load(""); err == nil {
		t.Fatal("Load: expected error for unknown work type")
	}

	t.Setenv("WORK_TYPE", "remote")
	t.Setenv("POLL_INTERVAL", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("Load: expected error for bad duration")
	}

	t.Setenv("POLL_INTERVAL", "1h")
	t.Setenv("SIMILARITY_THRESHOLD", "1.5")
	if _, err := Load(""); err == nil {
		t.Fatal("Load: expected error for out-of-range threshold")
	}
}
