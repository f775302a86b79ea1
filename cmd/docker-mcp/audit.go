package main

import (
	"flag"
	"fmt"
	"os"

	dockermcp "github.com/vignesh69420/docker-mcp"
	"github.com/vignesh69420/docker-mcp/audit"
)

// auditCmd prints recent audited tool invocations, newest first.
func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dbPath := fs.String("db", dockermcp.DefaultAuditDBPath(), "SQLite audit trail path")
	limit := fs.Int("n", 20, "Maximum number of records to print")

	fs.Usage = func() {
		fmt.Println(`Usage: docker-mcp audit [options]

Print recent audited tool invocations, newest first. The trail only
exists when the server runs with -audit-db.

Options:`)
		fs.PrintDefaults()
		fmt.Println(`
Examples:
  docker-mcp audit
  docker-mcp audit -n 50
  docker-mcp audit -db /tmp/audit.db`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if _, err := os.Stat(*dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: no audit database at %s\n", *dbPath)
		os.Exit(1)
	}

	store, err := audit.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening audit database %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.Recent(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading audit records: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No audit records.")
		return
	}

	for _, inv := range records {
		fmt.Printf("%s  %s  %-16s  %-5s  %dms\n",
			inv.CreatedAt.Format("2006-01-02 15:04:05"), inv.InvocationID, inv.Tool, inv.Status, inv.DurationMS)
		if inv.Arguments != "" && inv.Arguments != "{}" {
			fmt.Printf("  args: %s\n", inv.Arguments)
		}
		if inv.Detail != "" {
			fmt.Printf("  %s\n", inv.Detail)
		}
	}
}
