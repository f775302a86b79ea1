package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/vignesh69420/docker-mcp/container"
	"github.com/vignesh69420/docker-mcp/mcp"
)

type fakeEngine struct {
	created   []container.RunSpec
	createRes container.Created
	createErr error

	logsName string
	logsTail string
	logs     string
	logsErr  error

	containers []container.Summary
	listErr    error
}

func (f *fakeEngine) Create(ctx context.Context, spec container.RunSpec) (container.Created, error) {
	f.created = append(f.created, spec)
	if f.createErr != nil {
		return container.Created{}, f.createErr
	}
	return f.createRes, nil
}

func (f *fakeEngine) Logs(ctx context.Context, nameOrID, tail string) (string, error) {
	f.logsName = nameOrID
	f.logsTail = tail
	if f.logsErr != nil {
		return "", f.logsErr
	}
	return f.logs, nil
}

func (f *fakeEngine) List(ctx context.Context) ([]container.Summary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

type fakeComposer struct {
	project  string
	yaml     string
	services string
	err      error
}

func (f *fakeComposer) Deploy(ctx context.Context, project, composeYAML string) (string, error) {
	f.project = project
	f.yaml = composeYAML
	if f.err != nil {
		return "", f.err
	}
	return f.services, nil
}

func newDockerTools(t *testing.T, engine ContainerEngine, composer ComposeRunner) *Tools {
	t.Helper()
	ts := NewTools()
	if err := RegisterDockerTools(ts, engine, composer); err != nil {
		t.Fatalf("RegisterDockerTools: %v", err)
	}
	return ts
}

func resultText(t *testing.T, result mcp.ToolCallResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("Expected 1 content block, got %d", len(result.Content))
	}
	return result.Content[0].Text
}

func TestRegisterDockerTools(t *testing.T) {
	ts := newDockerTools(t, &fakeEngine{}, &fakeComposer{})

	want := []string{"create-container", "deploy-compose", "get-logs", "list-containers"}
	names := ts.Names()
	if len(names) != len(want) {
		t.Fatalf("Expected %d tools, got %d: %v", len(want), len(names), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("tool %d = %q, want %q", i, names[i], name)
		}
	}
}

func TestCreateContainerTool(t *testing.T) {
	t.Run("creates and reports name and id", func(t *testing.T) {
		engine := &fakeEngine{createRes: container.Created{
			ID:   "7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a",
			Name: "web1",
		}}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "create-container", map[string]any{
			"image":       "nginx:latest",
			"name":        "web1",
			"ports":       map[string]any{"80": "8080"},
			"environment": map[string]any{"DEBUG": "1"},
		})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		want := "Created container 'web1' (ID: 7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d7c3a)"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}

		if len(engine.created) != 1 {
			t.Fatalf("Expected 1 create call, got %d", len(engine.created))
		}
		spec := engine.created[0]
		if spec.Image != "nginx:latest" || spec.Name != "web1" {
			t.Errorf("Unexpected spec: %+v", spec)
		}
		if spec.Ports["80"] != "8080" {
			t.Errorf("ports = %v, want 80 -> 8080", spec.Ports)
		}
		if spec.Env["DEBUG"] != "1" {
			t.Errorf("env = %v, want DEBUG -> 1", spec.Env)
		}
	})

	t.Run("missing image never reaches the engine", func(t *testing.T) {
		engine := &fakeEngine{}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "create-container", map[string]any{})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := "Invalid arguments: missing required field 'image'"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
		if len(engine.created) != 0 {
			t.Errorf("Expected no create calls, got %d", len(engine.created))
		}
	})

	t.Run("engine conflict surfaces verbatim", func(t *testing.T) {
		engine := &fakeEngine{createErr: errors.New(`Conflict. The container name "/web1" is already in use`)}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "create-container", map[string]any{"image": "nginx:latest", "name": "web1"})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := `Error creating container: Conflict. The container name "/web1" is already in use`
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	})

	t.Run("omitted optionals become zero values", func(t *testing.T) {
		engine := &fakeEngine{createRes: container.Created{ID: "abc123", Name: "eager_turing"}}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "create-container", map[string]any{"image": "redis:7"})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		spec := engine.created[0]
		if spec.Name != "" || spec.Ports != nil || spec.Env != nil {
			t.Errorf("Unexpected spec for bare create: %+v", spec)
		}
	})
}

func TestDeployComposeTool(t *testing.T) {
	const sampleYAML = "services:\n  web:\n    image: nginx:latest\n"

	t.Run("deploys and lists services", func(t *testing.T) {
		composer := &fakeComposer{services: "NAME      IMAGE          STATUS\nweb-1     nginx:latest   Up 2 seconds"}
		ts := newDockerTools(t, &fakeEngine{}, composer)

		result := ts.Call(context.Background(), "deploy-compose", map[string]any{
			"project_name": "web",
			"compose_yaml": sampleYAML,
		})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		want := "Successfully deployed compose stack 'web'\nRunning services:\nNAME      IMAGE          STATUS\nweb-1     nginx:latest   Up 2 seconds"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
		if composer.project != "web" || composer.yaml != sampleYAML {
			t.Errorf("Unexpected deploy call: project=%q yaml=%q", composer.project, composer.yaml)
		}
	})

	t.Run("deploy failure surfaces the exit detail", func(t *testing.T) {
		composer := &fakeComposer{err: errors.New("deploy failed with code 17: service web has no image")}
		ts := newDockerTools(t, &fakeEngine{}, composer)

		result := ts.Call(context.Background(), "deploy-compose", map[string]any{
			"project_name": "web",
			"compose_yaml": sampleYAML,
		})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := "Error deploying compose stack: deploy failed with code 17: service web has no image"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	})

	t.Run("missing yaml is rejected before deploying", func(t *testing.T) {
		composer := &fakeComposer{}
		ts := newDockerTools(t, &fakeEngine{}, composer)

		result := ts.Call(context.Background(), "deploy-compose", map[string]any{"project_name": "web"})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := "Invalid arguments: missing required field 'compose_yaml'"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
		if composer.project != "" {
			t.Error("composer should not have been called")
		}
	})
}

func TestGetLogsTool(t *testing.T) {
	t.Run("fetches logs with tail", func(t *testing.T) {
		engine := &fakeEngine{logs: "ready to accept connections\n"}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "get-logs", map[string]any{
			"container_name": "web1",
			"tail":           "100",
		})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		want := "Logs for container 'web1':\nready to accept connections\n"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
		if engine.logsName != "web1" || engine.logsTail != "100" {
			t.Errorf("Unexpected logs call: name=%q tail=%q", engine.logsName, engine.logsTail)
		}
	})

	t.Run("tail defaults to everything", func(t *testing.T) {
		engine := &fakeEngine{logs: "hello"}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "get-logs", map[string]any{"container_name": "web1"})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		if engine.logsTail != "" {
			t.Errorf("tail = %q, want empty", engine.logsTail)
		}
	})

	t.Run("unknown container surfaces the daemon error", func(t *testing.T) {
		engine := &fakeEngine{logsErr: errors.New("Error response from daemon: No such container: nonexistent")}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "get-logs", map[string]any{"container_name": "nonexistent"})
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := "Error retrieving logs: Error response from daemon: No such container: nonexistent"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	})
}

func TestListContainersTool(t *testing.T) {
	t.Run("formats one line per container", func(t *testing.T) {
		engine := &fakeEngine{containers: []container.Summary{
			{ID: "7c3a9f2b4e8d7c3a9f2b4e8d7c3a9f2b4e8d", Name: "web1", State: "running", Image: "nginx:latest"},
			{ID: "1a2b3c", Name: "db", State: "exited", Image: "postgres:16"},
		}}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "list-containers", map[string]any{})
		if result.IsError {
			t.Fatalf("Unexpected error result: %s", resultText(t, result))
		}
		want := "All Docker Containers:\n7c3a9f2b4e8d - web1 - running - nginx:latest\n1a2b3c - db - exited - postgres:16"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	})

	t.Run("empty engine is a success", func(t *testing.T) {
		ts := newDockerTools(t, &fakeEngine{}, &fakeComposer{})

		result := ts.Call(context.Background(), "list-containers", map[string]any{})
		if result.IsError {
			t.Fatal("expected success for an empty engine")
		}
		if got := resultText(t, result); got != "All Docker Containers:\n" {
			t.Errorf("text = %q, want header only", got)
		}
	})

	t.Run("engine failure is reported", func(t *testing.T) {
		engine := &fakeEngine{listErr: errors.New("Cannot connect to the Docker daemon")}
		ts := newDockerTools(t, engine, &fakeComposer{})

		result := ts.Call(context.Background(), "list-containers", nil)
		if !result.IsError {
			t.Fatal("expected error result")
		}
		want := "Error listing containers: Cannot connect to the Docker daemon"
		if got := resultText(t, result); got != want {
			t.Errorf("text = %q, want %q", got, want)
		}
	})
}

func TestDockerToolsOverProtocol(t *testing.T) {
	engine := &fakeEngine{createRes: container.Created{ID: "7c3a9f2b4e8d", Name: "web1"}}
	ts := newDockerTools(t, engine, &fakeComposer{})
	srv := mcp.NewServer("docker-mcp", "test", ts)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"test","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"create-container","arguments":{"image":"nginx:latest","name":"web1"}}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := srv.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 response lines, got %d", len(lines))
	}

	var list struct {
		Result mcp.ToolsListResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &list); err != nil {
		t.Fatalf("Failed to decode tools/list response: %v", err)
	}
	if len(list.Result.Tools) != 4 {
		t.Fatalf("Expected 4 advertised tools, got %d", len(list.Result.Tools))
	}

	var call struct {
		Result mcp.ToolCallResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &call); err != nil {
		t.Fatalf("Failed to decode tools/call response: %v", err)
	}
	if call.Result.IsError {
		t.Fatalf("Unexpected error result: %+v", call.Result)
	}
	if len(call.Result.Content) != 1 || !strings.Contains(call.Result.Content[0].Text, "web1") {
		t.Errorf("Expected created container in response, got %+v", call.Result.Content)
	}
	if len(engine.created) != 1 || engine.created[0].Image != "nginx:latest" {
		t.Errorf("Unexpected create calls: %+v", engine.created)
	}
}
