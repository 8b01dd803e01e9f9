package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pevans/tempo"
	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/scraper"
)

func handleFeed(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	rubric := fs.String("rubric", "", "Rubric slug (empty for the site-wide feed)")
	delay := fs.String("delay", cfg.Delay.String(), "Delay between requests (seconds or duration)")
	limit := fs.Int("limit", 0, "Maximum number of feed entries (0 for all)")
	extract := fs.Bool("extract-content", false, "Fetch and extract each article")
	categorize := fs.Bool("categorize", false, "Write one file per category")
	outputName := fs.String("output-name", "", "Output file or directory name")
	outputDir := fs.String("output-dir", cfg.OutputDir, "Output directory")
	login := fs.Bool("login", false, "Send the session cookie from TEMPO_SESSION_COOKIE")
	verbose := fs.Bool("verbose", false, "Log each request")
	fs.Parse(args)

	feedURL, err := scraper.BuildFeedURL(cfg.Site.Index.FeedBaseURL, *rubric)
	if err != nil {
		fatalf("%v", err)
	}

	opts := tempo.DefaultOptions()
	opts.Rubric = *rubric
	opts.ArticlesPerPage = *limit
	opts.ExtractContent = *extract
	opts.Categorize = *categorize
	opts.OutputName = *outputName

	if opts.Delay, err = config.ParseDuration(*delay); err != nil {
		fatalf("--delay: %v", err)
	}
	if opts.Credential, err = loadCredential(*login); err != nil {
		fatalf("%v", err)
	}

	cfg.OutputDir = *outputDir
	pipeline := newPipeline(cfg, *verbose)

	fmt.Println(HeaderStyle.Render("Reading feed " + feedURL))

	run, err := pipeline.RunFeed(ctx, feedURL, opts)
	recordRun(cfg, run, err)
	if err != nil {
		fatalf("%v", err)
	}

	printRunSummary(run)
	exitOnPartialFailure(run)
}
