package pkgmgr

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stagepack/stagepack/internal/stage"
	"github.com/stagepack/stagepack/internal/utils"
)

// UploadResult describes one uploaded file of a push.
type UploadResult struct {
	Source string // path relative to the pushed directory
	Target string // fetchable stage reference
	Size   int64
	Status string
}

// Push uploads a local directory as a new package version. The returned
// sequence is lazy: uploads happen as it is consumed, one batched transfer
// per directory, and breaking out of the loop stops further batches. Errors
// are delivered in-band as the final element.
//
// Versions are immutable: pushing to an existing version fails before any
// transfer. There is no rollback; an aborted push leaves already-uploaded
// directories on the stage.
func (m *Manager) Push(ctx context.Context, stageRef, packageName, version, localPath string, parallel int) iter.Seq2[UploadResult, error] {
	return func(yield func(UploadResult, error) bool) {
		fi, err := os.Stat(localPath)
		if err != nil {
			yield(UploadResult{}, fmt.Errorf("%w: %s", ErrPathNotFound, localPath))
			return
		}
		if !fi.IsDir() {
			yield(UploadResult{}, fmt.Errorf("%w: %s", ErrNotADirectory, localPath))
			return
		}
		if m.VersionExists(ctx, stageRef, packageName, version) {
			yield(UploadResult{}, fmt.Errorf("%w: %q of package %q", ErrVersionImmutable, version, packageName))
			return
		}

		dest := m.versionRef(stageRef, packageName, version)
		slog.Info("pushing package", "package", packageName, "version", version, "dest", dest.String())

		// Work on an isolated copy: directories are deleted as they are
		// flushed, and the caller's tree must never be touched.
		scratch, err := os.MkdirTemp("", "stagepack-push-*")
		if err != nil {
			yield(UploadResult{}, err)
			return
		}
		defer os.RemoveAll(scratch)

		if err := utils.CopyDir(localPath, scratch); err != nil {
			yield(UploadResult{}, fmt.Errorf("copy to scratch dir: %w", err))
			return
		}

		m.drainScratch(ctx, scratch, dest, parallel, yield)
	}
}

// drainScratch uploads the scratch tree deepest-first. Each directory is
// flushed in exactly one batched call once all of its subdirectories have
// been uploaded and removed, so every batch contains only direct files.
// The root is skipped while deeper work remains and processed last.
func (m *Manager) drainScratch(ctx context.Context, scratch string, dest stage.Ref, parallel int, yield func(UploadResult, error) bool) {
	queue, err := findDeepestDirs(scratch)
	if err != nil {
		yield(UploadResult{}, err)
		return
	}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		if dir == scratch && len(queue) > 0 {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			yield(UploadResult{}, err)
			return
		}

		if len(entries) > 0 {
			relDir, err := filepath.Rel(scratch, dir)
			if err != nil {
				yield(UploadResult{}, err)
				return
			}
			relSlash := ""
			if relDir != "." {
				relSlash = filepath.ToSlash(relDir)
			}

			target := dest.Join(relSlash)
			slog.Debug("uploading directory", "dir", dir, "target", target.String())

			results, err := m.stage.PutDirectory(ctx, dir, target.String()+"/", &stage.PutOptions{
				Parallel: parallel,
			})
			if err != nil {
				yield(UploadResult{}, fmt.Errorf("upload %q: %w", relSlash, err))
				return
			}
			for _, r := range results {
				res := UploadResult{
					Source: path.Join(relSlash, r.Source),
					Target: r.Target,
					Size:   r.Size,
					Status: r.Status,
				}
				if !yield(res, nil) {
					return
				}
			}
		}

		if dir == scratch {
			break
		}

		// Parent becomes a leaf once this directory is gone. Enqueue it
		// unless it is already queued or still covers queued work.
		parent := filepath.Dir(dir)
		if !queuedUnder(queue, parent) {
			queue = append(queue, parent)
		}

		if err := os.RemoveAll(dir); err != nil {
			yield(UploadResult{}, err)
			return
		}
	}
}

// findDeepestDirs walks the tree breadth-first collecting leaf directories
// (directories with no subdirectories) and returns them deepest first.
func findDeepestDirs(root string) ([]string, error) {
	var leaves []string
	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		var children []string
		for _, e := range entries {
			if e.IsDir() {
				children = append(children, filepath.Join(dir, e.Name()))
			}
		}

		if len(children) == 0 {
			leaves = append(leaves, dir)
		} else {
			queue = append(queue, children...)
		}
	}

	sort.SliceStable(leaves, func(i, j int) bool {
		return pathDepth(leaves[i]) > pathDepth(leaves[j])
	})
	return leaves, nil
}

// queuedUnder reports whether dir or anything below it is already queued.
func queuedUnder(queue []string, dir string) bool {
	for _, q := range queue {
		if q == dir || strings.HasPrefix(q, dir+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func pathDepth(p string) int {
	return strings.Count(p, string(os.PathSeparator))
}
