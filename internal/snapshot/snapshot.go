// Package snapshot stores parsed thread dumps along with their merged tree.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/blob"

	"github.com/getsentry/parallelstacks/internal/backtrace"
	"github.com/getsentry/parallelstacks/internal/parallelstack"
	"github.com/getsentry/parallelstacks/internal/storageutil"
)

type Snapshot struct {
	ID       string              `json:"snapshot_id"`
	Received int64               `json:"received"`
	MaxDepth int                 `json:"max_depth,omitempty"`
	Threads  []backtrace.Thread  `json:"threads"`
	Tree     *parallelstack.Node `json:"tree"`
}

// New aggregates threads and wraps the result in a snapshot with a fresh ID.
func New(threads []backtrace.Thread, maxDepth int) Snapshot {
	return Snapshot{
		ID:       uuid.New().String(),
		Received: time.Now().Unix(),
		MaxDepth: maxDepth,
		Threads:  threads,
		Tree:     parallelstack.Aggregate(threads, parallelstack.WithMaxDepth(maxDepth)),
	}
}

func StoragePath(id string) string {
	return fmt.Sprintf("snapshots/%s", id)
}

func (s Snapshot) StoragePath() string {
	return StoragePath(s.ID)
}

func (s Snapshot) Write(ctx context.Context, b *blob.Bucket) error {
	return storageutil.CompressedWrite(ctx, b, s.StoragePath(), s)
}

// Read loads a snapshot. It returns storageutil.ErrObjectNotFound when there
// is no snapshot with this ID.
func Read(ctx context.Context, b *blob.Bucket, id string) (Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Snapshot{}, storageutil.ErrObjectNotFound
	}
	var s Snapshot
	err := storageutil.UnmarshalCompressed(ctx, b, StoragePath(id), &s)
	if err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
