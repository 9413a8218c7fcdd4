// Package containerruntime adapts ports.ContainerRuntime to a real Docker
// daemon via github.com/docker/docker/client, grounded on OllamaMax's
// DockerManager (pkg/deployment/docker.go) restart/start/stop/inspect calls.
package containerruntime

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/sarika-03/controlplane/internal/ports"
)

// Docker implements ports.ContainerRuntime against the Docker Engine API.
type Docker struct {
	cli *client.Client
}

// NewDocker builds a Docker runtime client from the environment (DOCKER_HOST
// etc.), negotiating the API version the way OllamaMax's deployment manager
// does.
func NewDocker() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Docker{cli: cli}, nil
}

// Get reports the named container's current state.
func (d *Docker) Get(ctx context.Context, name string) (ports.ContainerState, error) {
	return d.Status(ctx, name)
}

// Restart restarts the named container, bounded by timeoutSec.
func (d *Docker) Restart(ctx context.Context, name string, timeoutSec int) error {
	return d.cli.ContainerRestart(ctx, name, container.StopOptions{Timeout: &timeoutSec})
}

// Start starts the named container (a no-op if it is already running).
func (d *Docker) Start(ctx context.Context, name string) error {
	return d.cli.ContainerStart(ctx, name, container.StartOptions{})
}

// Stop stops the named container, bounded by timeoutSec.
func (d *Docker) Stop(ctx context.Context, name string, timeoutSec int) error {
	return d.cli.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeoutSec})
}

// Status inspects the named container and maps Docker's state string onto
// ports.ContainerState.
func (d *Docker) Status(ctx context.Context, name string) (ports.ContainerState, error) {
	inspect, err := d.cli.ContainerInspect(ctx, name)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", name, err)
	}
	if inspect.State == nil {
		return ports.ContainerDead, nil
	}
	return ports.ContainerState(inspect.State.Status), nil
}
