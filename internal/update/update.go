// Package update provides self-update functionality for dockerpyze.
package update

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/creativeprojects/go-selfupdate"
)

// Repository is the GitHub slug releases are published under.
const Repository = "nicoloboschi/dockerpyze"

// ErrNoReleases is returned when the repository has no usable release for
// this platform.
var ErrNoReleases = errors.New("no releases found")

// Release contains information about an available update.
type Release struct {
	Version     string
	ReleaseURL  string
	PublishedAt string
	Changelog   string
}

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create update source: %w", err)
	}

	updater, err := selfupdate.NewUpdater(selfupdate.Config{
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}
	return updater, nil
}

// detect returns the newest release, or nil when currentVersion is already
// the newest.
func detect(ctx context.Context, updater *selfupdate.Updater, currentVersion string) (*selfupdate.Release, error) {
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(Repository))
	if err != nil {
		return nil, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w for %s (%s)", ErrNoReleases, Repository, PlatformInfo())
	}
	if latest.LessOrEqual(currentVersion) {
		return nil, nil
	}
	return latest, nil
}

func toRelease(latest *selfupdate.Release) *Release {
	return &Release{
		Version:     latest.Version(),
		ReleaseURL:  latest.URL,
		PublishedAt: latest.PublishedAt.Format("2006-01-02"),
		Changelog:   latest.ReleaseNotes,
	}
}

// Check reports the newer release, if any.
func Check(ctx context.Context, currentVersion string) (*Release, bool, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, false, err
	}

	latest, err := detect(ctx, updater, currentVersion)
	if err != nil || latest == nil {
		return nil, false, err
	}
	return toRelease(latest), true, nil
}

// Apply replaces the running binary with the newest release. It returns
// nil when already up to date.
func Apply(ctx context.Context, currentVersion string) (*Release, error) {
	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}

	latest, err := detect(ctx, updater, currentVersion)
	if err != nil || latest == nil {
		return nil, err
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return nil, fmt.Errorf("get executable path: %w", err)
	}

	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return nil, fmt.Errorf("update binary: %w", err)
	}

	return toRelease(latest), nil
}

// PlatformInfo returns the current platform as os/arch.
func PlatformInfo() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

// Excerpt returns at most max lines of the changelog and how many were left
// out.
func (r *Release) Excerpt(max int) ([]string, int) {
	notes := strings.TrimSpace(r.Changelog)
	if notes == "" {
		return nil, 0
	}
	lines := strings.Split(notes, "\n")
	if len(lines) <= max {
		return lines, 0
	}
	return lines[:max], len(lines) - max
}
