// Package stage talks to the remote object store backing a stage. It exposes
// the three operations the package manager needs: a flat listing under a
// prefix, a batched upload of one directory, and a single-object download.
package stage

import (
	"context"
	"time"
)

// Transfer statuses reported in PutResult rows.
const (
	StatusUploaded = "uploaded"
	StatusSkipped  = "skipped"
)

// ObjectInfo is one row of a flat listing: a full key plus metadata.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// PutOptions tunes a batched directory upload.
type PutOptions struct {
	// Parallel is a parallelism hint forwarded to the transfer layer.
	Parallel int
	// Overwrite replaces existing objects. When false, an existing key
	// yields a skipped result row instead of an upload.
	Overwrite bool
	// Compress requests transport compression. The S3 backend does not
	// implement it; the flag exists so callers can state intent.
	Compress bool
}

// PutResult describes the outcome for a single file of a batched upload.
type PutResult struct {
	Source string // file name within the uploaded directory
	Target string // fetchable destination reference
	Size   int64
	Status string
}

// Stage is the storage collaborator. Implementations are expected to be safe
// for concurrent use.
type Stage interface {
	// List returns every object under prefix ("@fqn/sub/" form). Keys in
	// the result start with the stage's simple name, not the FQN.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// PutDirectory uploads the direct files of localDir (no recursion)
	// under dest ("@fqn/sub/" form) in one batched call, one result row
	// per file.
	PutDirectory(ctx context.Context, localDir string, dest string, opts *PutOptions) ([]PutResult, error)

	// Get downloads the single object at source ("@fqn/key" form) into
	// destDir. The on-disk name follows the backend's own convention;
	// callers locate the artifact afterwards.
	Get(ctx context.Context, source string, destDir string, parallel int) error
}
