package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullReconstructsTree(t *testing.T) {
	fs := newFakeStage(
		"artifacts/packages/mypkg/1.2.0/file.txt",
		"artifacts/packages/mypkg/1.2.0/subfolder/nested.txt",
	)
	m := New(fs)

	dest := filepath.Join(t.TempDir(), "out")
	results, err := m.Pull(context.Background(), testStage, "mypkg", "1.2.0", dest, 4)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, StatusDownloaded, r.Status)
	}

	content, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content of file.txt", string(content))

	content, err = os.ReadFile(filepath.Join(dest, "subfolder", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "content of nested.txt", string(content))
}

func TestPullCreatesDestination(t *testing.T) {
	fs := newFakeStage("artifacts/packages/p/1.0.0/f.txt")
	m := New(fs)

	dest := filepath.Join(t.TempDir(), "does", "not", "exist")
	_, err := m.Pull(context.Background(), testStage, "p", "1.0.0", dest, 1)
	require.NoError(t, err)
	assert.DirExists(t, dest)
}

func TestPullLatestResolvesMaxVersion(t *testing.T) {
	fs := newFakeStage(
		"artifacts/packages/p/1.0.0/old.txt",
		"artifacts/packages/p/2.0.0/new.txt",
	)
	m := New(fs)

	dest := t.TempDir()
	results, err := m.Pull(context.Background(), testStage, "p", "latest", dest, 4)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new.txt", results[0].File)

	// Downloads must touch only the resolved version's prefix.
	for _, ref := range fs.getCalls {
		assert.Contains(t, ref, "/packages/p/2.0.0/")
	}

	// The final listing call targets the resolved version.
	last := fs.listCalls[len(fs.listCalls)-1]
	assert.True(t, strings.HasSuffix(last, "/packages/p/2.0.0"), "got %q", last)
}

func TestPullLatestIsCaseInsensitive(t *testing.T) {
	fs := newFakeStage("artifacts/packages/p/1.0.0/f.txt")
	m := New(fs)

	results, err := m.Pull(context.Background(), testStage, "p", "LATEST", t.TempDir(), 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPullLatestNoVersions(t *testing.T) {
	fs := newFakeStage()
	m := New(fs)

	_, err := m.Pull(context.Background(), testStage, "p", "latest", t.TempDir(), 1)
	assert.ErrorIs(t, err, ErrNoVersionsFound)
}

func TestPullVersionNotFound(t *testing.T) {
	fs := newFakeStage("artifacts/packages/p/1.0.0/f.txt")
	m := New(fs)

	_, err := m.Pull(context.Background(), testStage, "p", "3.0.0", t.TempDir(), 1)
	assert.ErrorIs(t, err, ErrVersionNotFound)
	assert.Empty(t, fs.getCalls)
}

func TestPullPerFileFailureDoesNotAbort(t *testing.T) {
	fs := newFakeStage(
		"artifacts/packages/p/1.0.0/good.txt",
		"artifacts/packages/p/1.0.0/bad.txt",
	)
	fs.getErr["artifacts/packages/p/1.0.0/bad.txt"] = fmt.Errorf("connection reset")
	m := New(fs)

	dest := t.TempDir()
	results, err := m.Pull(context.Background(), testStage, "p", "1.0.0", dest, 1)
	require.NoError(t, err, "per-file failures must not fail the pull")
	require.Len(t, results, 2)

	byFile := map[string]DownloadResult{}
	for _, r := range results {
		byFile[r.File] = r
	}
	assert.Equal(t, StatusFailed, byFile["bad.txt"].Status)
	assert.Contains(t, byFile["bad.txt"].Error, "connection reset")
	assert.Equal(t, StatusDownloaded, byFile["good.txt"].Status)
	assert.FileExists(t, filepath.Join(dest, "good.txt"))
}

func TestPullLocatesArtifactsByLayout(t *testing.T) {
	// The transfer layer decides where a download lands; pull must find
	// the artifact whichever convention applies.
	for _, layout := range []string{"flat", "nested", "weird"} {
		t.Run(layout, func(t *testing.T) {
			fs := newFakeStage("artifacts/packages/p/1.0.0/sub/f.txt")
			fs.getLayout = layout
			m := New(fs)

			dest := t.TempDir()
			results, err := m.Pull(context.Background(), testStage, "p", "1.0.0", dest, 1)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, StatusDownloaded, results[0].Status)
			assert.FileExists(t, filepath.Join(dest, "sub", "f.txt"))
		})
	}
}

func TestPullUsesFullyQualifiedFetchRefs(t *testing.T) {
	fs := newFakeStage("artifacts/packages/p/1.0.0/f.txt")
	m := New(fs)

	_, err := m.Pull(context.Background(), testStage, "p", "1.0.0", t.TempDir(), 1)
	require.NoError(t, err)

	// Listing keys carry the simple stage name; fetches must swap in the
	// fully qualified reference.
	require.Len(t, fs.getCalls, 1)
	assert.Equal(t, "@test.plugin.artifacts/packages/p/1.0.0/f.txt", fs.getCalls[0])
}
