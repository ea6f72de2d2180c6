package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/config"
	"github.com/jobsniper-dev/jobsniper/internal/ledger"
	"github.com/jobsniper-dev/jobsniper/internal/model"
	"github.com/jobsniper-dev/jobsniper/internal/notifier"
	"github.com/jobsniper-dev/jobsniper/internal/retry"
	"github.com/jobsniper-dev/jobsniper/internal/score"
	"github.com/jobsniper-dev/jobsniper/internal/source"
	"github.com/jobsniper-dev/jobsniper/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsniper",
	Short: "Job audit pipeline — score postings, skip scams, get notified",
	Long: "JobSniper audits scraped job postings against your profile: it filters\n" +
		"out postings it has already seen, rejects scam patterns, scores the rest,\n" +
		"and notifies you about the matches worth applying to.",
	// Default to `run` so that `jobsniper` with no args does one full cycle.
	RunE: runRun,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSNIPER_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSNIPER_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSNIPER_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupSource(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.PostingSource {
	var src model.PostingSource
	switch cfg.Source.Type {
	case "http":
		logger.Info("using http source", "url", cfg.Source.URL)
		src = source.NewHTTPSource(cfg.Source.URL, httpClient)
	default:
		src = source.NewFileSource(cfg.Source.Path)
	}
	return retry.NewRetrySource(src, 2, 5*time.Second, logger)
}

func setupScorer(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Scorer {
	var scorer model.Scorer
	switch cfg.Audit.Scorer.Mode {
	case "llm":
		logger.Info("using llm scorer", "model", cfg.Audit.Scorer.Model)
		provider := score.NewOpenAIProvider(cfg.Audit.Scorer.BaseURL, cfg.Audit.Scorer.APIKey,
			cfg.Audit.Scorer.Model, &http.Client{Timeout: cfg.Audit.Scorer.Timeout})
		scorer = score.NewLLMScorer(provider, logger)
	default:
		scorer = score.NewLocalScorer()
	}
	return score.NewThrottledScorer(scorer, score.NewCooldown(cfg.Audit.Cooldown))
}

// backingStore is the store plus history behind one backend.
type backingStore interface {
	model.VerifiedStore
	model.History
	io.Closer
}

func setupStore(ctx context.Context, cfg *config.Config, dryRun bool) (backingStore, error) {
	if dryRun {
		return store.NewNopStore(), nil
	}
	switch cfg.Storage.Backend {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Storage.PostgresURL)
	default:
		return store.NewSQLiteStore(cfg.Storage.SQLitePath)
	}
}

func setupLedger(cfg *config.Config, logger *slog.Logger) (model.Ledger, func(), error) {
	l, err := ledger.NewSQLiteLedger(cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	return l, func() { l.Close() }, nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), nil
	case "email":
		logger.Info("using email notifier", "to", cfg.Notification.SMTP.To)
		smtp := cfg.Notification.SMTP
		return notifier.NewEmailNotifier(smtp.Host, smtp.Port, smtp.From, smtp.To, smtp.Password, logger), nil
	case "telegram":
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(cfg.Notification.Telegram.Token, cfg.Notification.Telegram.ChatID, logger)
	default:
		return notifier.NewLogNotifier(logger), nil
	}
}
