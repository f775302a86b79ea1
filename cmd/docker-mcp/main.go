// Package main provides the docker-mcp CLI.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
)

func main() {
	// MCP clients launch the binary with no arguments.
	if len(os.Args) < 2 {
		serveCmd(nil)
		return
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		serveCmd(args)
	case "tools":
		toolsCmd(args)
	case "audit":
		auditCmd(args)
	case "version":
		fmt.Printf("docker-mcp %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docker-mcp - Docker over the Model Context Protocol

Usage:
  docker-mcp [command] [options]

Commands:
  serve     Serve the MCP stdio server (default when no command is given)
  tools     Print the registered tools and their parameters
  audit     Print recent audited tool invocations
  version   Print version information
  help      Show this help message

Examples:
  docker-mcp
  docker-mcp serve -audit-db ~/.docker-mcp/audit.db
  docker-mcp tools
  docker-mcp audit -n 50

Run 'docker-mcp <command> --help' for more information on a command.`)
}
