package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/tempo"
	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/daterange"
)

func handleIndeks(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("indeks", flag.ExitOnError)
	startPage := fs.Int("start-page", 1, "First index page")
	endPage := fs.Int("end-page", 1, "Last index page")
	delay := fs.String("delay", cfg.Delay.String(), "Delay between requests (seconds or duration)")
	startDate := fs.String("start-date", "", "Start date (YYYY-MM-DD)")
	endDate := fs.String("end-date", "", "End date (YYYY-MM-DD)")
	rubric := fs.String("rubric", "", "Rubric slug, e.g. politik (overrides dates)")
	perPage := fs.Int("article-per-page", 0, "Maximum articles per page (0 for site default)")
	extract := fs.Bool("extract-content", false, "Fetch and extract each free article")
	categorize := fs.Bool("categorize", false, "Write one file per category")
	outputName := fs.String("output-name", "", "Output file or directory name")
	outputDir := fs.String("output-dir", cfg.OutputDir, "Output directory")
	login := fs.Bool("login", false, "Send the session cookie from TEMPO_SESSION_COOKIE")
	verbose := fs.Bool("verbose", false, "Log each request")
	fs.Parse(args)

	opts := tempo.DefaultOptions()
	opts.StartPage = *startPage
	opts.EndPage = *endPage
	opts.Rubric = *rubric
	opts.ArticlesPerPage = *perPage
	opts.ExtractContent = *extract
	opts.Categorize = *categorize
	opts.OutputName = *outputName

	d, err := config.ParseDuration(*delay)
	if err != nil {
		fatalf("--delay: %v", err)
	}
	opts.Delay = d

	opts.DateRange, err = daterange.Resolve(*startDate, *endDate)
	if err != nil {
		fatalf("%v", err)
	}

	opts.Credential, err = loadCredential(*login)
	if err != nil {
		fatalf("%v", err)
	}

	cfg.OutputDir = *outputDir
	pipeline := newPipeline(cfg, *verbose)

	fmt.Println(HeaderStyle.Render(fmt.Sprintf("Scraping index pages %d-%d", opts.StartPage, opts.EndPage)))
	if opts.Rubric != "" {
		fmt.Println(DimStyle.Render("  Rubric: " + opts.Rubric))
	} else if opts.DateRange != nil {
		fmt.Println(DimStyle.Render("  Dates: " + opts.DateRange.String()))
	}

	run, err := pipeline.Run(ctx, opts)
	recordRun(cfg, run, err)
	if err != nil {
		fatalf("%v", err)
	}

	printRunSummary(run)
	exitOnPartialFailure(run)
}

// exitOnPartialFailure prints skipped pages and articles and exits with
// status 1 when there were any. Output has already been written.
func exitOnPartialFailure(run *tempo.ScrapeRun) {
	if run.Err() == nil {
		return
	}

	fmt.Println()
	fmt.Println(WarningStyle.Render(fmt.Sprintf("%d failure(s):", len(run.Failures))))
	for _, f := range run.Failures {
		fmt.Printf("  - %s\n", f.Error())
	}
	os.Exit(1)
}
