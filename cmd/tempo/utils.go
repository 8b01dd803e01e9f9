package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pevans/tempo"
	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/discovery"
	"github.com/pevans/tempo/output"
	"github.com/pevans/tempo/runs"
)

// sessionCookieEnv holds the logged-in session used with --login.
const sessionCookieEnv = "TEMPO_SESSION_COOKIE"

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// fatalf prints an error and exits with status 1.
func fatalf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+fmt.Sprintf(format, args...))
	os.Exit(1)
}

// loadCredential returns the session cookie when login is requested. A
// .env file in the working directory is read first; variables already set
// in the environment take precedence.
func loadCredential(login bool) (string, error) {
	if !login {
		return "", nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to load .env: %w", err)
	}

	credential := getEnv(sessionCookieEnv, "")
	if credential == "" {
		return "", fmt.Errorf("--login requires %s in the environment or .env", sessionCookieEnv)
	}
	return credential, nil
}

// newPipeline wires the HTTP fetcher and file writer from cfg.
func newPipeline(cfg *config.Config, verbose bool) *tempo.Pipeline {
	writer, err := output.NewWriter(cfg.OutputDir)
	if err != nil {
		fatalf("%v", err)
	}

	fetcher := discovery.NewHTTPFetcher(cfg.Timeout, cfg.UserAgent)

	pipelineConfig := tempo.DefaultPipelineConfig()
	pipelineConfig.Site = cfg.Site
	if verbose {
		pipelineConfig.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	return tempo.NewPipeline(fetcher, writer, pipelineConfig)
}

// recordRun appends the run to the history database. Failures are reported
// as warnings and never change the exit status.
func recordRun(cfg *config.Config, run *tempo.ScrapeRun, runErr error) {
	if run == nil {
		return
	}

	record, err := runs.FromScrapeRun(run, runErr)
	if err != nil {
		log.Printf("WARN: Failed to build run history record: %v", err)
		return
	}

	store, err := openRunStore(cfg)
	if err != nil {
		log.Printf("WARN: Failed to open run history: %v", err)
		return
	}
	defer store.Close()

	if err := store.CreateRun(record); err != nil {
		log.Printf("WARN: Failed to record run: %v", err)
	}
}

// openRunStore opens the run history, creating its directory when needed.
func openRunStore(cfg *config.Config) (*runs.Store, error) {
	if dir := dirOf(cfg.RunsDSN); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create run history directory: %w", err)
		}
	}
	return runs.NewStore(cfg.RunsDSN)
}

// dirOf returns the directory of a file DSN, or "" for URIs and the
// in-memory database.
func dirOf(dsn string) string {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	if dir := filepath.Dir(dsn); dir != "." {
		return dir
	}
	return ""
}
