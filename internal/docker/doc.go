// Package docker provides a wrapper around the Docker API for dockerpyze
// image builds.
//
// BuildImage packs the project directory into a build context (honouring
// .dockerignore), injects the rendered Dockerfile into the tar stream under
// a unique name, streams the engine's build output and applies the extra
// tags once the build succeeds.
//
// # Interface Abstraction
//
// The DockerAPI interface abstracts the Docker SDK, enabling mock injection
// for testing. Use NewClientWithAPI for test scenarios.
//
// # Example
//
//	client, err := docker.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	result, err := client.BuildImage(ctx, docker.BuildOptions{
//	    ContextDir: root,
//	    Dockerfile: text,
//	    Image:      "my-app",
//	    Tags:       []string{"0.1.0", "latest"},
//	})
package docker
