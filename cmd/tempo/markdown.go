package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/output"
)

func handleMarkdown(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("markdown", flag.ExitOnError)
	input := fs.String("input", "", "JSON output file or categorized output directory")
	outDir := fs.String("output", cfg.MarkdownDir, "Markdown output directory")
	fs.Parse(args)

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: --input is required\n")
		fs.Usage()
		os.Exit(1)
	}

	result, err := output.ConvertPath(*input, *outDir, cfg.Site.Index.SiteURL)
	if err != nil {
		fatalf("conversion failed: %v", err)
	}

	fmt.Println(SuccessStyle.Render(fmt.Sprintf("✓ Wrote %d notes to %s", len(result.Written), *outDir)))

	if len(result.Errors) > 0 {
		fmt.Println()
		fmt.Println(WarningStyle.Render("Skipped files:"))
		for _, readErr := range result.Errors {
			fmt.Printf("  - %s\n", readErr.Error())
		}
		os.Exit(1)
	}
}
