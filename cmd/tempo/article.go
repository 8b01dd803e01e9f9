package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/output"
)

func handleArticle(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("article", flag.ExitOnError)
	url := fs.String("url", "", "Article URL")
	outputName := fs.String("output-name", "", "Output file name")
	outputDir := fs.String("output-dir", cfg.OutputDir, "Output directory")
	login := fs.Bool("login", false, "Send the session cookie from TEMPO_SESSION_COOKIE")
	verbose := fs.Bool("verbose", false, "Log each request")
	fs.Parse(args)

	if *url == "" {
		fmt.Fprintf(os.Stderr, "Error: --url is required\n")
		fs.Usage()
		os.Exit(1)
	}

	credential, err := loadCredential(*login)
	if err != nil {
		fatalf("%v", err)
	}

	cfg.OutputDir = *outputDir
	pipeline := newPipeline(cfg, *verbose)

	run, err := pipeline.ExtractSingle(ctx, *url, *outputName, credential)
	recordRun(cfg, run, err)
	if err != nil {
		fatalf("%v", err)
	}

	content, _ := run.Content(*url)
	access := "free"
	if !content.IsFree {
		access = "premium"
	}

	fmt.Println(SuccessStyle.Render("✓ Extracted article"))
	fmt.Printf("  Title: %s\n", output.CleanTitle(content.Title))
	fmt.Printf("  Category: %s (%s)\n", content.Category, access)
	fmt.Printf("  Paragraphs: %d\n", len(content.Body))
	fmt.Printf("  Saved to: %s\n", LinkStyle.Render(run.OutputPath))
}
