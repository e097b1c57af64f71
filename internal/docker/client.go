package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"
)

// pingTimeout bounds the engine check done before a build context is packed.
const pingTimeout = 5 * time.Second

// Client builds and tags images through a DockerAPI.
type Client struct {
	api DockerAPI
}

// NewClient connects to the engine selected by DOCKER_HOST and the other
// DOCKER_* variables. The API version is negotiated on first use; opts are
// applied after the environment so callers can override the host.
func NewClient(opts ...client.Opt) (*Client, error) {
	opts = append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Client{api: cli}, nil
}

// NewClientWithAPI builds through api instead of a live engine.
func NewClientWithAPI(api DockerAPI) *Client {
	return &Client{api: api}
}

// Ping fails fast when no engine is listening, before any tar stream is
// produced.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker: %w", err)
	}
	return nil
}

// Close releases the engine connection.
func (c *Client) Close() error {
	if c.api == nil {
		return nil
	}
	return c.api.Close()
}
