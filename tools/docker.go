package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/vignesh69420/docker-mcp/container"
)

// ContainerEngine is the engine surface the container tools need.
type ContainerEngine interface {
	Create(ctx context.Context, spec container.RunSpec) (container.Created, error)
	Logs(ctx context.Context, nameOrID, tail string) (string, error)
	List(ctx context.Context) ([]container.Summary, error)
}

// ComposeRunner deploys compose stacks and reports their services.
type ComposeRunner interface {
	Deploy(ctx context.Context, project, composeYAML string) (string, error)
}

// RegisterDockerTools registers the container tools. A duplicate name is a
// configuration error and aborts start-up.
func RegisterDockerTools(t *Tools, engine ContainerEngine, composer ComposeRunner) error {
	err := t.Register("create-container", ToolDef{
		Description: "Create a new standalone Docker container",
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			spec := container.RunSpec{
				Image: params["image"].(string),
				Name:  stringArg(params, "name"),
				Ports: stringMapArg(params, "ports"),
				Env:   stringMapArg(params, "environment"),
			}

			created, err := engine.Create(ctx, spec)
			if err != nil {
				return "", fmt.Errorf("creating container: %w", err)
			}
			return fmt.Sprintf("Created container '%s' (ID: %s)", created.Name, created.ID), nil
		},
		Params: map[string]ParamDef{
			"image":       {Type: "string", Description: "Docker image to run, e.g. nginx:latest", Required: true},
			"name":        {Type: "string", Description: "Container name; the engine assigns one when omitted"},
			"ports":       {Type: "object", Description: `Container port to host port mappings, e.g. {"80": "8080"}`},
			"environment": {Type: "object", Description: "Environment variables to set in the container"},
		},
	})
	if err != nil {
		return err
	}

	err = t.Register("deploy-compose", ToolDef{
		Description: "Deploy a Docker Compose stack",
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			project := params["project_name"].(string)

			services, err := composer.Deploy(ctx, project, params["compose_yaml"].(string))
			if err != nil {
				return "", fmt.Errorf("deploying compose stack: %w", err)
			}
			return fmt.Sprintf("Successfully deployed compose stack '%s'\nRunning services:\n%s", project, services), nil
		},
		Params: map[string]ParamDef{
			"project_name": {Type: "string", Description: "Compose project name", Required: true},
			"compose_yaml": {Type: "string", Description: "Compose file content as YAML", Required: true},
		},
	})
	if err != nil {
		return err
	}

	err = t.Register("get-logs", ToolDef{
		Description: "Retrieve the latest logs for a specified Docker container",
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			name := params["container_name"].(string)

			logs, err := engine.Logs(ctx, name, stringArg(params, "tail"))
			if err != nil {
				return "", fmt.Errorf("retrieving logs: %w", err)
			}
			return fmt.Sprintf("Logs for container '%s':\n%s", name, logs), nil
		},
		Params: map[string]ParamDef{
			"container_name": {Type: "string", Description: "Container name or id", Required: true},
			"tail":           {Type: "string", Description: "Number of trailing lines to fetch; all lines when omitted"},
		},
	})
	if err != nil {
		return err
	}

	return t.Register("list-containers", ToolDef{
		Description: "List all Docker containers",
		Fn: func(ctx context.Context, params map[string]any) (string, error) {
			containers, err := engine.List(ctx)
			if err != nil {
				return "", fmt.Errorf("listing containers: %w", err)
			}

			lines := make([]string, 0, len(containers))
			for _, c := range containers {
				id := c.ID
				if len(id) > 12 {
					id = id[:12]
				}
				lines = append(lines, fmt.Sprintf("%s - %s - %s - %s", id, c.Name, c.State, c.Image))
			}
			return "All Docker Containers:\n" + strings.Join(lines, "\n"), nil
		},
		Params: map[string]ParamDef{},
	})
}

func stringArg(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func stringMapArg(params map[string]any, key string) map[string]string {
	raw, ok := params[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	m := make(map[string]string, len(raw))
	for k, v := range raw {
		s, _ := v.(string)
		m[k] = s
	}
	return m
}
