package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/analytics"
	"github.com/quillvault/quill/internal/config"
	"github.com/quillvault/quill/internal/controller"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/storage"
	"github.com/quillvault/quill/internal/store"
	"github.com/quillvault/quill/internal/vault"
)

// app bundles the open database with the vault and journal layered on top.
type app struct {
	cfg     *config.Config
	store   *store.BoltStore
	vault   *vault.Vault
	journal *journal.Store
}

// openApp loads configuration, opens the local database, and wires the vault
// and journal store. Callers must Close it.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if localeFlag != "" {
		cfg.Journal.Locale = localeFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s, err := store.NewBoltStore(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	v := vault.New(s)
	j := journal.NewStore(storage.New(v), cfg.Journal.HistoryLimit)

	return &app{cfg: cfg, store: s, vault: v, journal: j}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// unlock makes protected journal data readable for this process. It tries
// QUILL_PASSWORD first so scripts can run non-interactively, then prompts.
// A disabled vault needs no password.
func (a *app) unlock() error {
	if !a.vault.Enabled() {
		return nil
	}

	password := os.Getenv("QUILL_PASSWORD")
	if password == "" {
		var err error
		password, err = promptPassword("Enter vault password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	ok, err := a.vault.Unlock(password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("wrong password")
	}
	return nil
}

// newController wires a journaling session with the configured analysis
// runtime and optional analytics.
func (a *app) newController() *controller.Controller {
	runtime := analysis.NewHTTPRuntime(a.cfg.Analysis.Endpoint, a.cfg.Analysis.Timeout, slog.Default())
	pipeline := analysis.New(runtime, analysis.WithLocale(a.cfg.Journal.Locale))

	var tracker *analytics.Tracker
	if a.cfg.Analytics.Enabled {
		tracker = analytics.NewTracker(slog.Default(),
			analytics.NewHTTPSink(a.cfg.Analytics.Endpoint, slog.Default()),
			analytics.NewStoreSink(a.store, slog.Default()),
		)
	}

	return controller.New(a.journal, pipeline, a.vault, controller.Options{
		MinWordCount:  a.cfg.Journal.MinWordCount,
		AutosaveDelay: a.cfg.Journal.AutosaveDelay,
		Locale:        a.cfg.Journal.Locale,
		Confirm:       PromptConfirm,
		Tracker:       tracker,
	})
}

// promptPassword reads a password from the terminal with echo disabled.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// promptPasswordConfirm prompts for a password twice and ensures they match.
func promptPasswordConfirm() (string, error) {
	pass, err := promptPassword("Enter vault password: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	confirm, err := promptPassword("Confirm vault password: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}
