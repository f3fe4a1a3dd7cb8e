package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"

	"github.com/alirezadp10/ezapply/internal/model"
)

// keyringService groups this app's secrets in the OS keychain.
const keyringService = "ezapply"

// Config is the root configuration for one bot run. Built once at startup
// and passed by value to every component; never mutated afterwards.
type Config struct {
	BaseURL  string
	Username string
	Password string

	Keywords     []string
	Countries    []string // empty means every known country
	WorkType     model.WorkType
	SearchWindow time.Duration // recency cutoff for postings
	PollInterval time.Duration // sleep between search cycles

	UserInfo string // free-text profile used for answer generation

	DBPath      string
	Headless    bool
	UserDataDir string
	PageTimeout time.Duration
	StepDelay   time.Duration

	MaxWizardSteps      int
	SimilarityThreshold float64
	CheckRelevance      bool // gate postings on an LLM title check before applying

	AI   AIConfig
	IMAP IMAPConfig
}

// AIConfig targets an OpenAI-compatible chat-completions API plus a separate
// embeddings inference endpoint.
type AIConfig struct {
	BaseURL        string
	Model          string
	APIKey         string
	EmbeddingURL   string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// IMAPConfig locates the mailbox that receives login verification PINs.
// All fields empty disables the challenge handler.
type IMAPConfig struct {
	Addr     string
	Username string
	Password string
}

// Enabled reports whether a verification-PIN mailbox is configured.
func (c IMAPConfig) Enabled() bool {
	return c.Addr != "" && c.Username != "" && c.Password != ""
}

// Load reads configuration from the environment, optionally seeded from the
// env file at path (silently skipped when absent), validates it, and returns
// Config. When LINKEDIN_PASSWORD is unset the OS keyring is consulted under
// service "ezapply" and the account set to LINKEDIN_USERNAME.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	} else {
		// Default .env in the working directory, if present.
		_ = godotenv.Load()
	}

	cfg := &Config{
		BaseURL:     getenv("LINKEDIN_BASE_URL", "https://www.linkedin.com"),
		Username:    os.Getenv("LINKEDIN_USERNAME"),
		Password:    os.Getenv("LINKEDIN_PASSWORD"),
		Keywords:    splitCSV(os.Getenv("KEYWORDS")),
		Countries:   splitCSV(os.Getenv("COUNTRIES")),
		WorkType:    model.WorkType(getenv("WORK_TYPE", string(model.WorkTypeRemote))),
		UserInfo:    os.Getenv("USER_INFORMATION"),
		DBPath:      getenv("SQLITE_DB_PATH", "ezapply.db"),
		UserDataDir: getenv("USER_DATA_DIR", "/tmp/ezapply-profile"),
		IMAP: IMAPConfig{
			Addr:     os.Getenv("IMAP_ADDR"),
			Username: os.Getenv("IMAP_USERNAME"),
			Password: os.Getenv("IMAP_PASSWORD"),
		},
	}

	var err error
	if cfg.Headless, err = parseBool("HEADLESS", true); err != nil {
		return nil, err
	}
	if cfg.SearchWindow, err = parseDuration("JOB_SEARCH_TIME_WINDOW", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("POLL_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.PageTimeout, err = parseDuration("PAGE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.StepDelay, err = parseDuration("STEP_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxWizardSteps, err = parseInt("MAX_WIZARD_STEPS", 10); err != nil {
		return nil, err
	}
	if cfg.SimilarityThreshold, err = parseFloat("SIMILARITY_THRESHOLD", 0.95); err != nil {
		return nil, err
	}
	if cfg.CheckRelevance, err = parseBool("CHECK_RELEVANCE", false); err != nil {
		return nil, err
	}

	cfg.AI = AIConfig{
		BaseURL:      getenv("AI_BASE_URL", "https://api.deepinfra.com/v1/openai"),
		Model:        getenv("AI_MODEL", "meta-llama/Meta-Llama-3-8B-Instruct"),
		APIKey:       os.Getenv("AI_API_KEY"),
		EmbeddingURL: getenv("EMBEDDING_URL", "https://api.deepinfra.com/v1/inference/google/embeddinggemma-300m"),
	}
	if cfg.AI.Timeout, err = parseDuration("AI_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.AI.MaxRetries, err = parseInt("AI_MAX_RETRIES", 2); err != nil {
		return nil, err
	}
	if cfg.AI.RetryBaseDelay, err = parseDuration("AI_RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.Password == "" && cfg.Username != "" {
		if pw, kerr := keyring.Get(keyringService, cfg.Username); kerr == nil {
			cfg.Password = pw
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DBPath resolves just the result database path, for read-only commands that
// need no credentials.
func DBPath(path string) string {
	if path != "" {
		_ = godotenv.Load(path)
	} else {
		_ = godotenv.Load()
	}
	return getenv("SQLITE_DB_PATH", "ezapply.db")
}

// SetPassword stores the login password in the OS keyring for the given account.
func SetPassword(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is empty")
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password is empty")
	}
	return keyring.Set(keyringService, username, password)
}

func validate(cfg *Config) error {
	if cfg.Username == "" {
		return fmt.Errorf("LINKEDIN_USERNAME is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("LINKEDIN_PASSWORD is required (env var or keyring entry for %q)", cfg.Username)
	}
	if len(cfg.Keywords) == 0 {
		return fmt.Errorf("KEYWORDS must list at least one search keyword")
	}
	if !cfg.WorkType.Valid() {
		return fmt.Errorf("WORK_TYPE must be one of remote, onsite, hybrid; got %q", cfg.WorkType)
	}
	if cfg.UserInfo == "" {
		return fmt.Errorf("USER_INFORMATION is required for answer generation")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", cfg.PollInterval)
	}
	if cfg.SearchWindow <= 0 {
		return fmt.Errorf("JOB_SEARCH_TIME_WINDOW must be positive, got %v", cfg.SearchWindow)
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in (0, 1], got %v", cfg.SimilarityThreshold)
	}
	if cfg.MaxWizardSteps < 1 {
		return fmt.Errorf("MAX_WIZARD_STEPS must be at least 1, got %d", cfg.MaxWizardSteps)
	}
	if cfg.AI.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if cfg.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return n, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return f, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return b, nil
}
