// Package pkgmgr manages immutable, versioned file packages on a stage.
//
// Packages live under a fixed layout on the stage:
//
//	@stage/packages/{package_name}/{version}/{files...}
//
// There is no manifest: the directory structure is the database, and the
// flat listing returned by the stage is the only source of truth for what
// packages and versions exist.
package pkgmgr

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/stagepack/stagepack/internal/alphanum"
	"github.com/stagepack/stagepack/internal/stage"
)

// PackagesBasePath is the directory on the stage under which all packages live.
const PackagesBasePath = "packages"

var (
	ErrPathNotFound     = errors.New("local path does not exist")
	ErrNotADirectory    = errors.New("local path must be a directory")
	ErrVersionImmutable = errors.New("version already exists, package versions are immutable")
	ErrVersionNotFound  = errors.New("version does not exist")
	ErrNoVersionsFound  = errors.New("no versions found")
)

// Manager orchestrates package operations against a stage. It holds no state
// between calls; the stage listing and the local filesystem are the state.
type Manager struct {
	stage stage.Stage
}

func New(s stage.Stage) *Manager {
	return &Manager{stage: s}
}

func (m *Manager) packageRef(stageRef, packageName string) stage.Ref {
	return stage.ParseRef(stageRef).Join(PackagesBasePath, packageName)
}

func (m *Manager) versionRef(stageRef, packageName, version string) stage.Ref {
	return m.packageRef(stageRef, packageName).Join(version)
}

// ListVersions returns all versions of a package, sorted alphanumerically.
// A listing failure is treated the same as an empty stage path.
func (m *Manager) ListVersions(ctx context.Context, stageRef, packageName string) []string {
	pkgRef := m.packageRef(stageRef, packageName)

	files, err := m.stage.List(ctx, pkgRef.String())
	if err != nil {
		slog.Debug("list versions failed", "package", packageName, "error", err)
		return nil
	}

	// Keys look like: artifacts/packages/package_name/version/file.txt.
	// The first path segment after the package prefix is the version.
	prefix := PackagesBasePath + "/" + packageName + "/"
	seen := make(map[string]struct{})
	for _, f := range files {
		_, rest, ok := strings.Cut(f.Key, prefix)
		if !ok {
			continue
		}
		version, _, _ := strings.Cut(rest, "/")
		if version != "" {
			seen[version] = struct{}{}
		}
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	alphanum.Sort(versions)
	return versions
}

// MaxVersion returns the latest version of a package under alphanumeric
// ordering, or "" when the package has no versions.
func (m *Manager) MaxVersion(ctx context.Context, stageRef, packageName string) string {
	return alphanum.Max(m.ListVersions(ctx, stageRef, packageName))
}

// VersionExists reports whether a specific package version exists.
func (m *Manager) VersionExists(ctx context.Context, stageRef, packageName, version string) bool {
	for _, v := range m.ListVersions(ctx, stageRef, packageName) {
		if v == version {
			return true
		}
	}
	return false
}

// ListPackages returns all package names on the stage, lexicographically
// sorted. Package names are names, not versions, so plain string ordering
// applies. A listing failure is treated as an empty stage.
func (m *Manager) ListPackages(ctx context.Context, stageRef string) []string {
	base := stage.ParseRef(stageRef).Join(PackagesBasePath)

	files, err := m.stage.List(ctx, base.String())
	if err != nil {
		slog.Debug("list packages failed", "error", err)
		return nil
	}

	prefix := PackagesBasePath + "/"
	seen := make(map[string]struct{})
	for _, f := range files {
		_, rest, ok := strings.Cut(f.Key, prefix)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, "/")
		if name != "" {
			seen[name] = struct{}{}
		}
	}

	packages := make([]string, 0, len(seen))
	for p := range seen {
		packages = append(packages, p)
	}
	sort.Strings(packages)
	return packages
}
