package dockermcp

import (
	"os"
	"path/filepath"
)

// Home returns the docker-mcp home directory.
// It defaults to ~/.docker-mcp but can be overridden with the DOCKER_MCP_HOME environment variable.
func Home() string {
	if v := os.Getenv("DOCKER_MCP_HOME"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".docker-mcp")
}

// DefaultAuditDBPath returns the default audit database path (~/.docker-mcp/audit.db).
func DefaultAuditDBPath() string {
	return filepath.Join(Home(), "audit.db")
}

// EnsureHome creates the docker-mcp home directory if it doesn't exist.
func EnsureHome() error {
	return os.MkdirAll(Home(), 0o755)
}
