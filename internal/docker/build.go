package docker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/go-logr/logr"
)

// ErrInvalidReference is returned for an image name or tag the engine
// would reject.
var ErrInvalidReference = errors.New("invalid image reference")

// BuildOptions describes one image build.
type BuildOptions struct {
	// ContextDir is sent to the engine as the build context.
	ContextDir string

	// Dockerfile is the Dockerfile content, injected into the context.
	Dockerfile string

	// Image is the repository name; Tags are applied to it in order.
	Image string
	Tags  []string

	// Output receives the build stream as it arrives. Nil discards it.
	Output     io.Writer
	IsTerminal bool

	Logger logr.Logger
}

// BuildResult describes a successful build.
type BuildResult struct {
	ImageID    string
	References []string
	Log        []string
}

// BuildError is returned when the engine reports a failed build. Log holds
// every stream and error line received, in order.
type BuildError struct {
	Message string
	Log     []string
}

func (e *BuildError) Error() string {
	return "build failed: " + e.Message
}

// References validates image and tags and returns the familiar name:tag
// form of each, primary first.
func References(image string, tags []string) ([]string, error) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidReference, image, err)
	}
	if _, ok := named.(reference.Tagged); ok {
		return nil, fmt.Errorf("%w: %s: image name must not include a tag", ErrInvalidReference, image)
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: %s: no tags", ErrInvalidReference, image)
	}

	refs := make([]string, 0, len(tags))
	for _, tag := range tags {
		tagged, err := reference.WithTag(named, tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%s: %v", ErrInvalidReference, image, tag, err)
		}
		refs = append(refs, reference.FamiliarString(tagged))
	}
	return refs, nil
}

// BuildImage builds the image and applies every tag.
func (c *Client) BuildImage(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	refs, err := References(opts.Image, opts.Tags)
	if err != nil {
		return nil, err
	}

	name := DockerfileName()
	buildCtx, err := BuildContext(opts.ContextDir, name, opts.Dockerfile)
	if err != nil {
		return nil, err
	}
	defer buildCtx.Close()

	opts.Logger.V(1).Info("starting build", "context", opts.ContextDir, "dockerfile", name, "reference", refs[0])

	resp, err := c.api.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:       []string{refs[0]},
		Dockerfile: name,
		Remove:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("build image %s: %w", refs[0], err)
	}
	defer resp.Body.Close()

	result := &BuildResult{References: refs}
	if err := readBuildStream(resp.Body, opts, result); err != nil {
		return nil, err
	}

	for _, ref := range refs[1:] {
		if err := c.api.ImageTag(ctx, refs[0], ref); err != nil {
			return nil, fmt.Errorf("tag image %s as %s: %w", refs[0], ref, err)
		}
		opts.Logger.V(1).Info("tagged image", "source", refs[0], "target", ref)
	}

	return result, nil
}

// readBuildStream consumes the engine's JSON message stream into result.
func readBuildStream(body io.Reader, opts BuildOptions, result *BuildResult) error {
	dec := json.NewDecoder(body)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read build output: %w", err)
		}

		if msg.Aux != nil {
			var aux struct {
				ID string `json:"ID"`
			}
			if err := json.Unmarshal(*msg.Aux, &aux); err == nil && aux.ID != "" {
				result.ImageID = aux.ID
			}
			continue
		}

		if msg.Error != nil {
			result.Log = append(result.Log, msg.Error.Message)
			return &BuildError{Message: strings.TrimSpace(msg.Error.Message), Log: result.Log}
		}

		if msg.Stream != "" {
			result.Log = append(result.Log, msg.Stream)
		}

		if opts.Output != nil {
			if err := msg.Display(opts.Output, opts.IsTerminal); err != nil {
				return fmt.Errorf("display build output: %w", err)
			}
		}
	}
}
