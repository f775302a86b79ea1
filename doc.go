// Package dockermcp ties together the pieces of the docker-mcp server.
//
// docker-mcp is a Model Context Protocol server that manages Docker
// containers and compose stacks. It speaks newline-delimited JSON-RPC
// over stdio, so any MCP client can launch it as a subprocess and call
// its tools: create-container, deploy-compose, get-logs and
// list-containers.
//
// # Quick Start
//
// Wire the server by hand when embedding it:
//
//	engine, err := container.NewManager()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	reg := tools.NewTools()
//	if err := tools.RegisterDockerTools(reg, engine, compose.NewExecutor()); err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := mcp.NewServer("docker-mcp", "dev", reg)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// The docker-mcp command does exactly this, plus flag parsing, signal
// handling and an optional audit trail.
//
// # Architecture
//
// The main packages are:
//
//   - mcp: server side of the Model Context Protocol over stdio
//   - tools: tool registry with schema generation and argument validation
//   - container: container lifecycle against the Docker Engine API
//   - compose: compose stack deployment through the docker CLI
//   - audit: optional SQLite trail of tool invocations
//
// This package holds what they share: the home directory layout used
// for persistent state such as the audit database.
package dockermcp
