package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/vignesh69420/docker-mcp/tools"
)

// toolsCmd prints the registered tools the way tools/list advertises them.
func toolsCmd(args []string) {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println(`Usage: docker-mcp tools

Print the registered tools and their parameters.`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reg := tools.NewTools()
	// Handlers never run here, only their schemas are printed.
	if err := tools.RegisterDockerTools(reg, nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, schema := range reg.Schemas() {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s\n  %s\n", schema.Name, schema.Description)

		props, _ := schema.InputSchema["properties"].(map[string]any)
		required := map[string]bool{}
		if names, ok := schema.InputSchema["required"].([]string); ok {
			for _, name := range names {
				required[name] = true
			}
		}

		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			prop, _ := props[name].(map[string]any)
			line := fmt.Sprintf("  - %s (%v", name, prop["type"])
			if required[name] {
				line += ", required"
			}
			line += ")"
			if desc, ok := prop["description"].(string); ok && desc != "" {
				line += ": " + desc
			}
			fmt.Println(line)
		}
	}
}
