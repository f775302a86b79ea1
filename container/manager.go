package container

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
)

// RunSpec describes a container to create and start.
type RunSpec struct {
	Image string
	Name  string            // empty lets the engine assign one
	Ports map[string]string // container port -> host port
	Env   map[string]string
}

// Created identifies a started container.
type Created struct {
	ID   string
	Name string
}

// Summary describes one container in a listing.
type Summary struct {
	ID    string
	Name  string
	State string
	Image string
}

// Manager handles Docker engine operations for the container tools.
type Manager struct {
	client *client.Client
	logger *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new container manager. An unreachable daemon is not
// fatal here; each engine call reports it per invocation.
func NewManager(opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	cli, err := createDockerClient()
	if err != nil {
		m.logger.Warn("container: docker daemon unreachable", "error", err)
		cli, err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, fmt.Errorf("create docker client: %w", err)
		}
	}
	m.client = cli

	return m, nil
}

// createDockerClient creates a Docker client, trying multiple socket locations
// for compatibility with Docker Desktop on macOS.
func createDockerClient() (*client.Client, error) {
	// First try with environment settings (DOCKER_HOST, etc.)
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := cli.Ping(ctx); err == nil {
			return cli, nil
		}
		cli.Close()
	}

	// Try common Docker Desktop socket locations
	socketPaths := []string{
		"unix://" + os.Getenv("HOME") + "/.docker/run/docker.sock", // Docker Desktop macOS
		"unix:///var/run/docker.sock",                              // Linux default
		"unix://" + os.Getenv("HOME") + "/.colima/docker.sock",     // Colima
	}

	for _, socketPath := range socketPaths {
		cli, err := client.NewClientWithOpts(
			client.WithHost(socketPath),
			client.WithAPIVersionNegotiation(),
		)
		if err != nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err = cli.Ping(ctx)
		cancel()

		if err == nil {
			return cli, nil
		}
		cli.Close()
	}

	return nil, fmt.Errorf("could not connect to Docker daemon")
}

// Ping checks that the engine is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := m.client.Ping(ctx)
	return err
}

// Create pulls the image if it is absent locally, then creates and starts a
// detached container. Engine errors are returned untouched; the text is the
// daemon's own diagnostic. Creating a second container with an existing name
// fails with the engine's name-conflict error.
func (m *Manager) Create(ctx context.Context, spec RunSpec) (Created, error) {
	if err := m.ensureImage(ctx, spec.Image); err != nil {
		return Created{}, err
	}

	exposed, bindings, err := portBindings(spec.Ports)
	if err != nil {
		return Created{}, err
	}

	cfg := &container.Config{
		Image:        spec.Image,
		Env:          envList(spec.Env),
		ExposedPorts: exposed,
	}

	hostCfg := &container.HostConfig{
		PortBindings: bindings,
	}

	resp, err := m.client.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return Created{}, err
	}

	if err := m.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return Created{}, err
	}

	name := spec.Name
	if name == "" {
		// The engine assigned one; read it back.
		inspect, err := m.client.ContainerInspect(ctx, resp.ID)
		if err != nil {
			m.logger.Warn("container: inspect after create failed", "id", resp.ID, "error", err)
			name = resp.ID[:12]
		} else {
			name = strings.TrimPrefix(inspect.Name, "/")
		}
	}

	return Created{ID: resp.ID, Name: name}, nil
}

// ensureImage pulls an image only when it is not already present locally.
func (m *Manager) ensureImage(ctx context.Context, imageName string) error {
	_, _, err := m.client.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil // Image exists
	}

	reader, err := m.client.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()

	// Consume the reader to complete the pull
	_, err = io.Copy(io.Discard, reader)
	return err
}

// Logs returns the captured stdout and stderr of a container. The engine
// accepts names and ids alike. An empty tail fetches the whole stream.
func (m *Manager) Logs(ctx context.Context, nameOrID, tail string) (string, error) {
	if tail == "" {
		tail = "all"
	}

	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	}

	reader, err := m.client.ContainerLogs(ctx, nameOrID, options)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var output strings.Builder
	_, err = stdcopy.StdCopy(&output, &output, reader)
	if err != nil && err != io.EOF {
		return "", err
	}

	return output.String(), nil
}

// List returns all containers, running and stopped, in engine order.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	containers, err := m.client.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(containers))
	for _, c := range containers {
		var name string
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}
		summaries = append(summaries, Summary{
			ID:    c.ID,
			Name:  name,
			State: c.State,
			Image: c.Image,
		})
	}
	return summaries, nil
}

// Close releases the engine client.
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// portBindings converts a container-port to host-port mapping into the
// engine's exposed-port set and binding map. Either side may carry a
// "/protocol" suffix; the container side wins when both do, and tcp is
// assumed otherwise.
func portBindings(ports map[string]string) (nat.PortSet, nat.PortMap, error) {
	if len(ports) == 0 {
		return nil, nil, nil
	}

	exposed := make(nat.PortSet, len(ports))
	bindings := make(nat.PortMap, len(ports))

	for containerPort, hostPort := range ports {
		cPort, cProto := splitPortProto(containerPort)
		hPort, hProto := splitPortProto(hostPort)

		proto := "tcp"
		if cProto != "" {
			proto = cProto
		} else if hProto != "" {
			proto = hProto
		}

		port, err := nat.NewPort(proto, cPort)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid container port %q: %w", containerPort, err)
		}

		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{HostPort: hPort})
	}

	return exposed, bindings, nil
}

func splitPortProto(s string) (port, proto string) {
	if base, p, ok := strings.Cut(s, "/"); ok {
		return base, strings.ToLower(p)
	}
	return s, ""
}

// envList flattens an environment map into the engine's KEY=value form,
// sorted to keep container config deterministic.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}

	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}
