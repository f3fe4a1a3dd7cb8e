package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/alirezadp10/ezapply/internal/ai"
	"github.com/alirezadp10/ezapply/internal/apply"
	"github.com/alirezadp10/ezapply/internal/browser"
	"github.com/alirezadp10/ezapply/internal/config"
	"github.com/alirezadp10/ezapply/internal/form"
	"github.com/alirezadp10/ezapply/internal/geo"
	"github.com/alirezadp10/ezapply/internal/model"
	"github.com/alirezadp10/ezapply/internal/retry"
	"github.com/alirezadp10/ezapply/internal/runner"
	"github.com/alirezadp10/ezapply/internal/search"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ezapply",
	Short: "Quick-apply bot for LinkedIn job postings",
	Long:  "ezapply searches recent postings, answers application forms with an LLM, and submits them for you.",
	// Default to `run` so that `ezapply` with no args starts the daemon.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", "path to env file (default: ./.env if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// openSession starts Chrome and signs in. Callers own Close.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*browser.Session, error) {
	session, err := browser.NewSession(browser.Options{
		Headless:    cfg.Headless,
		UserDataDir: cfg.UserDataDir,
		PageTimeout: cfg.PageTimeout,
		StepDelay:   cfg.StepDelay,
	}, logger)
	if err != nil {
		return nil, err
	}

	var pins browser.PINSource
	if cfg.IMAP.Enabled() {
		pins = browser.NewPINFetcher(cfg.IMAP.Addr, cfg.IMAP.Username, cfg.IMAP.Password, logger)
	}
	if err := session.Login(ctx, cfg.BaseURL, cfg.Username, cfg.Password, pins); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// buildApplicator wires the wizard walker with retrying answer generation and
// embedding-based answer reuse.
func buildApplicator(cfg *config.Config, session *browser.Session, st model.ResultStore, logger *slog.Logger) *apply.Applicator {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewChatProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	answerer := ai.NewAnswerer(provider, ai.FormAnswersTemplate, logger)
	retrying := retry.NewRetryAnswerer(answerer, cfg.AI.MaxRetries, cfg.AI.RetryBaseDelay, logger)
	embedder := ai.NewEmbeddingClient(cfg.AI.EmbeddingURL, cfg.AI.APIKey, httpClient)

	return apply.NewApplicator(session, form.NewFiller(session), retrying, embedder, st, apply.Options{
		Profile:             cfg.UserInfo,
		SimilarityThreshold: cfg.SimilarityThreshold,
		MaxWizardSteps:      cfg.MaxWizardSteps,
	}, logger)
}

// buildRelevanceGate returns nil when the title check is disabled.
func buildRelevanceGate(cfg *config.Config) runner.RelevanceGate {
	if !cfg.CheckRelevance {
		return nil
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := ai.NewChatProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	return ai.NewRelevanceChecker(provider, ai.RelevanceTemplate, cfg.Keywords)
}

// resolveRegions maps the configured country names to region IDs. An empty
// country list falls back to every country in the catalog.
func resolveRegions(cfg *config.Config) ([]runner.Region, error) {
	names := cfg.Countries
	if len(names) == 0 {
		names = geo.All()
	}
	regions := make([]runner.Region, 0, len(names))
	for _, name := range names {
		geoID, err := geo.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("COUNTRIES: %w", err)
		}
		regions = append(regions, runner.Region{Name: name, GeoID: geoID})
	}
	return regions, nil
}

func newSearcher(cfg *config.Config, session *browser.Session, logger *slog.Logger) *search.Searcher {
	return search.NewSearcher(session, cfg.BaseURL, cfg.WorkType, cfg.SearchWindow, logger)
}
