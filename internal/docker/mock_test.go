package docker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/jsonmessage"
)

// Common test errors.
var (
	errMockPing  = errors.New("mock: ping failed")
	errMockBuild = errors.New("mock: image build failed")
	errMockTag   = errors.New("mock: image tag failed")
)

// tagCall records one ImageTag invocation.
type tagCall struct {
	Source string
	Target string
}

// MockDockerAPI is a mock implementation of DockerAPI for testing.
type MockDockerAPI struct {
	// Function overrides for each method
	PingFunc       func(ctx context.Context) (types.Ping, error)
	ImageBuildFunc func(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error)
	ImageTagFunc   func(ctx context.Context, source, target string) error
	CloseFunc      func() error

	// Call tracking
	PingCalls       int
	ImageBuildCalls int
	ImageTagCalls   int
	CloseCalls      int

	// Recorded arguments
	BuildOptions build.ImageBuildOptions
	BuildContext []byte
	Tags         []tagCall
}

// NewMockDockerAPI creates a new mock with default no-op implementations.
func NewMockDockerAPI() *MockDockerAPI {
	return &MockDockerAPI{}
}

// Ping implements DockerAPI.
func (m *MockDockerAPI) Ping(ctx context.Context) (types.Ping, error) {
	m.PingCalls++
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return types.Ping{APIVersion: "1.45"}, nil
}

// ImageBuild implements DockerAPI. The build context is drained and kept
// in BuildContext before the override runs.
func (m *MockDockerAPI) ImageBuild(ctx context.Context, buildContext io.Reader, options build.ImageBuildOptions) (build.ImageBuildResponse, error) {
	m.ImageBuildCalls++
	m.BuildOptions = options

	data, err := io.ReadAll(buildContext)
	if err != nil {
		return build.ImageBuildResponse{}, err
	}
	m.BuildContext = data

	if m.ImageBuildFunc != nil {
		return m.ImageBuildFunc(ctx, bytes.NewReader(data), options)
	}
	return buildResponse(
		jsonmessage.JSONMessage{Stream: "Step 1/1 : FROM scratch\n"},
		auxMessage("sha256:0123456789abcdef"),
	), nil
}

// ImageTag implements DockerAPI.
func (m *MockDockerAPI) ImageTag(ctx context.Context, source, target string) error {
	m.ImageTagCalls++
	m.Tags = append(m.Tags, tagCall{Source: source, Target: target})
	if m.ImageTagFunc != nil {
		return m.ImageTagFunc(ctx, source, target)
	}
	return nil
}

// Close implements DockerAPI.
func (m *MockDockerAPI) Close() error {
	m.CloseCalls++
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// buildResponse encodes msgs as the engine's newline-delimited stream.
func buildResponse(msgs ...jsonmessage.JSONMessage) build.ImageBuildResponse {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, msg := range msgs {
		_ = enc.Encode(msg)
	}
	return build.ImageBuildResponse{Body: io.NopCloser(&buf)}
}

// auxMessage returns the message carrying the built image ID.
func auxMessage(id string) jsonmessage.JSONMessage {
	raw := json.RawMessage(`{"ID":"` + id + `"}`)
	return jsonmessage.JSONMessage{Aux: &raw}
}
