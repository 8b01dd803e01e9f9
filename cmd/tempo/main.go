package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/tempo/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatalf("failed to load configuration: %v", err)
	}

	// SIGINT stops the run between requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subcommand := os.Args[1]
	args := os.Args[2:]

	switch subcommand {
	case "indeks":
		handleIndeks(ctx, cfg, args)
	case "article":
		handleArticle(ctx, cfg, args)
	case "feed":
		handleFeed(ctx, cfg, args)
	case "markdown":
		handleMarkdown(cfg, args)
	case "runs":
		if len(args) < 1 {
			printRunsUsage()
			os.Exit(1)
		}
		handleRunsCommand(cfg, args[0], args[1:])
	case "serve":
		handleServe(cfg, args)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("tempo - tempo.co index and article scraper")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tempo <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  indeks     Scrape index pages, optionally with article content")
	fmt.Println("  article    Extract a single article")
	fmt.Println("  feed       List articles from a rubric's RSS feed")
	fmt.Println("  markdown   Convert JSON output to Markdown notes")
	fmt.Println("  runs       Show or delete run history")
	fmt.Println("  serve      Serve run history over HTTP")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  TEMPO_CONFIG          Path to config file (default: ~/.tempo/config.yaml)")
	fmt.Println("  TEMPO_OUTPUT_DIR      Output directory (default: output)")
	fmt.Println("  TEMPO_DELAY           Delay between requests (default: 1s)")
	fmt.Println("  TEMPO_TIMEOUT         Per-request timeout (default: 30s)")
	fmt.Println("  TEMPO_USER_AGENT      User-Agent header")
	fmt.Println("  TEMPO_RUNS_DSN        Path to run history database (default: ~/.tempo/runs.db)")
	fmt.Println("  TEMPO_SESSION_COOKIE  Session cookie used with --login (also read from .env)")
}
