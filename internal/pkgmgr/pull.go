package pkgmgr

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/stagepack/stagepack/internal/stage"
	"github.com/stagepack/stagepack/internal/utils"
)

// Download statuses reported in DownloadResult rows.
const (
	StatusDownloaded = "downloaded"
	StatusFailed     = "failed"
)

// DownloadResult describes the outcome for a single file of a pull.
type DownloadResult struct {
	File   string // path relative to the version root
	Status string
	Target string // local path the file was written to
	Error  string // failure reason when Status is StatusFailed
}

// Pull downloads a package version into localPath, recreating the directory
// tree from the flat listing. The version "latest" (case-insensitive)
// resolves to the maximum existing version.
//
// Unlike push, pull is eager: it returns only after every file was attempted.
// Per-file failures do not abort the pull; they come back as failed rows and
// it is on the caller to inspect them.
func (m *Manager) Pull(ctx context.Context, stageRef, packageName, version, localPath string, parallel int) ([]DownloadResult, error) {
	if strings.EqualFold(version, "latest") {
		maxVer := m.MaxVersion(ctx, stageRef, packageName)
		if maxVer == "" {
			return nil, fmt.Errorf("%w for package %q, cannot resolve \"latest\"", ErrNoVersionsFound, packageName)
		}
		version = maxVer
		slog.Info("resolved latest version", "package", packageName, "version", version)
	} else if !m.VersionExists(ctx, stageRef, packageName, version) {
		return nil, fmt.Errorf("%w: %q of package %q", ErrVersionNotFound, version, packageName)
	}

	src := m.versionRef(stageRef, packageName, version)
	slog.Info("pulling package", "package", packageName, "version", version, "src", src.String(), "dest", localPath)

	if err := utils.EnsureDir(localPath); err != nil {
		return nil, err
	}

	files, err := m.stage.List(ctx, src.String())
	if err != nil {
		slog.Debug("list files failed", "src", src.String(), "error", err)
		return nil, nil
	}
	if len(files) == 0 {
		return nil, nil
	}

	// Downloads land in a scratch area first: the transfer layer keeps its
	// own path convention, so each artifact is located after the fact and
	// moved into its reconstructed position.
	scratch, err := os.MkdirTemp("", "stagepack-pull-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	results := make([]DownloadResult, 0, len(files))
	for _, f := range files {
		if f.Key == "" {
			continue
		}
		relPath := stage.RelativeFromListing(f.Key, src)
		if relPath == "" {
			continue
		}

		results = append(results, m.pullOne(ctx, f.Key, relPath, src, scratch, localPath, parallel))
	}

	return results, nil
}

// pullOne downloads a single listed object and moves it into place.
func (m *Manager) pullOne(ctx context.Context, key, relPath string, src stage.Ref, scratch, localPath string, parallel int) DownloadResult {
	fetchRef := src.FetchRef(key)
	slog.Debug("downloading", "ref", fetchRef)

	if err := m.stage.Get(ctx, fetchRef, scratch, parallel); err != nil {
		slog.Error("download failed", "ref", fetchRef, "error", err)
		return DownloadResult{File: relPath, Status: StatusFailed, Error: err.Error()}
	}

	downloaded := locateDownload(scratch, key, relPath)
	if downloaded == "" {
		slog.Warn("downloaded file not found in scratch area", "key", key)
		return DownloadResult{File: relPath, Status: StatusFailed, Error: "downloaded file not found"}
	}

	finalPath := filepath.Join(localPath, filepath.FromSlash(relPath))
	if err := utils.MoveFile(downloaded, finalPath); err != nil {
		return DownloadResult{File: relPath, Status: StatusFailed, Error: err.Error()}
	}

	return DownloadResult{File: relPath, Status: StatusDownloaded, Target: finalPath}
}

// locateDownload finds the artifact a download left in the scratch area.
// Expected locations are checked first; the fallback is a search by file
// name, since the transfer layer decides the on-disk layout.
func locateDownload(scratch, key, relPath string) string {
	name := path.Base(key)
	candidates := []string{
		filepath.Join(scratch, filepath.FromSlash(key)),
		filepath.Join(scratch, name),
		filepath.Join(scratch, filepath.FromSlash(relPath)),
	}
	for _, c := range candidates {
		if utils.FileExists(c) {
			return c
		}
	}

	var found string
	_ = filepath.WalkDir(scratch, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = p
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
