// Package tools implements the tool registry and the container tools the
// server exposes.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vignesh69420/docker-mcp/mcp"
)

// Standard errors
var (
	// ErrToolNotFound is returned when a tool is not registered
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolAlreadyRegistered is returned when trying to register a duplicate tool name.
	ErrToolAlreadyRegistered = errors.New("tool already registered")
)

// ToolError wraps errors with tool context.
type ToolError struct {
	ToolName string
	Err      error
}

func (e *ToolError) Error() string {
	return "tool " + e.ToolName + ": " + e.Err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// ArgumentError reports a request rejected by schema validation before the
// handler ran. Reason names the offending field.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

// Tools is a collection of callable tools.
type Tools struct {
	tools map[string]*tool
	mu    sync.RWMutex

	// OnInvocation, if set, is called after every dispatch with the
	// outcome, including unknown-tool and validation failures.
	OnInvocation func(name string, args map[string]any, result string, err error, elapsed time.Duration)
}

// tool is an internal representation of a registered tool.
type tool struct {
	name        string
	description string
	fn          ToolFunc
	schema      mcp.Tool
	params      map[string]ParamDef
}

// ParamDef defines a tool parameter.
type ParamDef struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDef defines a tool with an explicit schema.
type ToolDef struct {
	Description string
	Fn          ToolFunc
	Params      map[string]ParamDef
}

// ToolFunc is the signature for tool execution.
type ToolFunc func(ctx context.Context, params map[string]any) (string, error)

// NewTools creates a new Tools collection.
func NewTools() *Tools {
	return &Tools{
		tools: make(map[string]*tool),
	}
}

// Register registers a tool under a unique name. Registering the same name
// twice is a configuration error.
func (t *Tools) Register(name string, def ToolDef) error {
	if name == "" {
		return errors.New("tool name is required")
	}
	if def.Fn == nil {
		return fmt.Errorf("tool %s has no function", name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, name)
	}

	t.tools[name] = &tool{
		name:        name,
		description: def.Description,
		fn:          def.Fn,
		schema:      buildSchema(name, def.Description, def.Params),
		params:      def.Params,
	}
	return nil
}

// Execute calls a tool by name, validating arguments against the tool's
// parameter definitions first. Handlers never see arguments that violate
// their declared shape.
func (t *Tools) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t.mu.RLock()
	tl, ok := t.tools[name]
	t.mu.RUnlock()

	if !ok {
		return "", &ToolError{ToolName: name, Err: ErrToolNotFound}
	}

	if err := validateArgs(tl.params, args); err != nil {
		return "", &ToolError{ToolName: name, Err: err}
	}

	result, err := tl.fn(ctx, args)
	if err != nil {
		return "", &ToolError{ToolName: name, Err: err}
	}

	return result, nil
}

// Call executes a tool and normalizes every outcome into a tool result.
// Nothing a handler or the engine does escapes as a protocol fault.
func (t *Tools) Call(ctx context.Context, name string, args map[string]any) mcp.ToolCallResult {
	start := time.Now()
	result, err := t.Execute(ctx, name, args)
	elapsed := time.Since(start)

	if t.OnInvocation != nil {
		t.OnInvocation(name, args, result, err, elapsed)
	}

	if err != nil {
		return mcp.ErrorResult(errorText(name, err))
	}
	return mcp.TextResult(result)
}

// errorText renders a dispatch error for the client.
func errorText(name string, err error) string {
	var argErr *ArgumentError
	switch {
	case errors.Is(err, ErrToolNotFound):
		return fmt.Sprintf("Unknown tool: %s", name)
	case errors.As(err, &argErr):
		return fmt.Sprintf("Invalid arguments: %s", argErr.Reason)
	default:
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			return fmt.Sprintf("Error %s", toolErr.Err.Error())
		}
		return fmt.Sprintf("Error %s", err.Error())
	}
}

// Schemas returns the registered tool descriptors, ordered by name.
func (t *Tools) Schemas() []mcp.Tool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	schemas := make([]mcp.Tool, 0, len(t.tools))
	for _, tl := range t.tools {
		schemas = append(schemas, tl.schema)
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Name < schemas[j].Name
	})
	return schemas
}

// Names returns the registered tool names, ordered.
func (t *Tools) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.tools))
	for name := range t.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateArgs checks args against the declared parameters. Fields are
// checked in name order so the reported field is deterministic.
func validateArgs(params map[string]ParamDef, args map[string]any) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := params[name]
		val, ok := args[name]
		if !ok || val == nil {
			if def.Required {
				return &ArgumentError{Field: name, Reason: fmt.Sprintf("missing required field '%s'", name)}
			}
			continue
		}

		switch def.Type {
		case "string":
			s, ok := val.(string)
			if !ok {
				return &ArgumentError{Field: name, Reason: fmt.Sprintf("field '%s' must be a string", name)}
			}
			if def.Required && s == "" {
				return &ArgumentError{Field: name, Reason: fmt.Sprintf("field '%s' must not be empty", name)}
			}
		case "object":
			m, ok := val.(map[string]any)
			if !ok {
				return &ArgumentError{Field: name, Reason: fmt.Sprintf("field '%s' must be an object", name)}
			}
			for key, v := range m {
				if _, ok := v.(string); !ok {
					return &ArgumentError{Field: name, Reason: fmt.Sprintf("field '%s' must map '%s' to a string", name, key)}
				}
			}
		}
	}
	return nil
}

func buildSchema(name, description string, params map[string]ParamDef) mcp.Tool {
	props := make(map[string]any)
	required := []string{}

	pnames := make([]string, 0, len(params))
	for pname := range params {
		pnames = append(pnames, pname)
	}
	sort.Strings(pnames)

	for _, pname := range pnames {
		pdef := params[pname]
		prop := map[string]any{
			"type": pdef.Type,
		}
		if pdef.Description != "" {
			prop["description"] = pdef.Description
		}
		if len(pdef.Enum) > 0 {
			prop["enum"] = pdef.Enum
		}
		props[pname] = prop

		if pdef.Required {
			required = append(required, pname)
		}
	}

	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}
