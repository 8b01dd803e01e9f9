package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/pevans/tempo/config"
	"github.com/pevans/tempo/runs"
)

func handleRunsCommand(cfg *config.Config, action string, args []string) {
	if action == "help" || action == "--help" || action == "-h" {
		printRunsUsage()
		return
	}

	store, err := openRunStore(cfg)
	if err != nil {
		fatalf("failed to open run history: %v", err)
	}
	defer store.Close()

	switch action {
	case "list":
		handleRunsList(store, args)
	case "show":
		handleRunsShow(store, args)
	case "delete":
		handleRunsDelete(store, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown runs command: %s\n\n", action)
		printRunsUsage()
		os.Exit(1)
	}
}

func printRunsUsage() {
	fmt.Println("tempo runs - Show or delete run history")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  tempo runs <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list             List recent runs")
	fmt.Println("  show <run-id>    Show one run with its failures")
	fmt.Println("  delete <run-id>  Delete a run from history")
	fmt.Println("  help             Show this help message")
}

func handleRunsList(store *runs.Store, args []string) {
	fs := flag.NewFlagSet("runs list", flag.ExitOnError)
	kind := fs.String("kind", "", "Filter by kind (index, feed, article)")
	status := fs.String("status", "", "Filter by status (completed, partial, failed)")
	limit := fs.Int("limit", 20, "Maximum number of runs")
	format := fs.String("format", "table", "Output format (table, json)")
	fs.Parse(args)

	filter := runs.RunFilter{Limit: *limit}
	if *kind != "" {
		filter.Kind = kind
	}
	if *status != "" {
		filter.Status = status
	}

	list, err := store.ListRuns(filter)
	if err != nil {
		fatalf("failed to list runs: %v", err)
	}

	switch *format {
	case "json":
		printJSON(map[string]any{"runs": list, "total": len(list)})
	case "table":
		printRunsTable(list)
	default:
		fatalf("unknown format: %s", *format)
	}
}

func handleRunsShow(store *runs.Store, args []string) {
	id := parseRunID(args, "show")

	run, err := store.GetRun(id)
	if err != nil {
		fatalf("failed to get run: %v", err)
	}

	printRunDetail(run)
}

func handleRunsDelete(store *runs.Store, args []string) {
	id := parseRunID(args, "delete")

	if err := store.DeleteRun(id); err != nil {
		fatalf("failed to delete run: %v", err)
	}

	fmt.Println(SuccessStyle.Render("✓ Deleted run: " + id.String()))
}

func parseRunID(args []string, action string) uuid.UUID {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: run ID is required\n")
		fmt.Fprintf(os.Stderr, "Usage: tempo runs %s <run-id>\n", action)
		os.Exit(1)
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		fatalf("invalid run ID: %v", err)
	}
	return id
}

func handleServe(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Addr, "Listen address")
	fs.Parse(args)

	store, err := openRunStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open run history: %v", err)
	}
	defer store.Close()

	server := runs.NewAPIServer(store)
	router := server.SetupRouter()

	log.Printf("Starting run history API server on %s", *addr)
	log.Printf("Run history: %s", cfg.RunsDSN)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
