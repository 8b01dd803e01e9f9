package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pevans/tempo"
	"github.com/pevans/tempo/output"
	"github.com/pevans/tempo/runs"
)

// printRunSummary prints the counts of a completed scrape run.
func printRunSummary(run *tempo.ScrapeRun) {
	fmt.Println()
	fmt.Println(SuccessStyle.Render("✓ Run completed"))
	fmt.Printf("  Pages scanned: %d\n", run.PagesScanned)
	if run.PagesFailed > 0 {
		fmt.Printf("  Pages failed: %d\n", run.PagesFailed)
	}
	fmt.Printf("  Articles listed: %d\n", len(run.Summaries))
	if run.Options.ExtractContent {
		fmt.Printf("  Articles extracted: %d\n", len(run.Contents))
		fmt.Printf("  Premium skipped: %d\n", run.Skipped)
	}

	if run.Options.Categorize {
		order, groups := output.Categorize(run.Records())
		sort.Strings(order)
		for _, category := range order {
			fmt.Printf("    %-20s %d\n", category, len(groups[category]))
		}
	}

	fmt.Printf("  Saved to: %s\n", LinkStyle.Render(run.OutputPath))
}

// printRunsTable prints run history in human-readable table format.
func printRunsTable(list []runs.Run) {
	if len(list) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Printf("%-36s %-8s %-10s %-17s %6s %6s %6s\n", "ID", "KIND", "STATUS", "STARTED", "PAGES", "ITEMS", "FAILED")
	fmt.Println("-----------------------------------------------------------------------------------------------")

	for _, run := range list {
		fmt.Printf("%-36s %-8s %-10s %-17s %6d %6d %6d\n",
			run.RunID.String(),
			run.Kind,
			statusStyle(run.Status).Render(fmt.Sprintf("%-10s", run.Status)),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.PagesScanned,
			run.Summaries,
			len(run.Failures),
		)
	}
}

// printRunDetail prints every field of a run.
func printRunDetail(run *runs.Run) {
	fmt.Println(HeaderStyle.Render("Run " + run.RunID.String()))
	fmt.Printf("  Kind: %s\n", run.Kind)
	fmt.Printf("  Status: %s\n", statusStyle(run.Status).Render(run.Status))
	fmt.Printf("  Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("  Finished: %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Pages scanned: %d (failed: %d)\n", run.PagesScanned, run.PagesFailed)
	fmt.Printf("  Summaries: %d\n", run.Summaries)
	fmt.Printf("  Contents: %d\n", run.Contents)
	if run.OutputPath != nil {
		fmt.Printf("  Output: %s\n", LinkStyle.Render(*run.OutputPath))
	}
	if len(run.Options) > 0 {
		fmt.Printf("  Options: %s\n", DimStyle.Render(string(run.Options)))
	}
	if run.LastError != nil {
		fmt.Printf("  Error: %s\n", ErrorStyle.Render(*run.LastError))
	}

	if len(run.Failures) > 0 {
		fmt.Println()
		fmt.Println(WarningStyle.Render("Failures:"))
		for _, f := range run.Failures {
			location := f.URL
			if f.Page > 0 {
				location = fmt.Sprintf("page %d %s", f.Page, f.URL)
			}
			fmt.Printf("  - [%s] %s: %s\n", f.Stage, location, f.Error)
		}
	}
}

// printJSON prints v as indented JSON.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(data))
}
