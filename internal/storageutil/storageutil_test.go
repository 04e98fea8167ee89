package storageutil

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gocloud.dev/blob/memblob"

	"github.com/getsentry/parallelstacks/internal/testutil"
)

type payload struct {
	Threads []string `json:"threads"`
	Depth   int      `json:"depth"`
}

func TestCompressedRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := payload{Threads: []string{"1", "2", "3"}, Depth: 4}

	t.Run("Filesystem", func(t *testing.T) {
		b := testutil.FileBucket(t)
		objectName := uuid.New().String()
		if err := CompressedWrite(ctx, b, objectName, want); err != nil {
			t.Fatal(err)
		}
		var got payload
		if err := UnmarshalCompressed(ctx, b, objectName, &got); err != nil {
			t.Fatal(err)
		}
		if diff := testutil.Diff(got, want); diff != "" {
			t.Fatalf("Result mismatch: got - want +\n%s", diff)
		}
	})

	t.Run("Memory", func(t *testing.T) {
		b := memblob.OpenBucket(nil)
		defer b.Close()
		objectName := "snapshots/" + uuid.New().String()
		if err := CompressedWrite(ctx, b, objectName, want); err != nil {
			t.Fatal(err)
		}
		var got payload
		if err := UnmarshalCompressed(ctx, b, objectName, &got); err != nil {
			t.Fatal(err)
		}
		if diff := testutil.Diff(got, want); diff != "" {
			t.Fatalf("Result mismatch: got - want +\n%s", diff)
		}
	})
}

func TestUnmarshalCompressedNotFound(t *testing.T) {
	b := memblob.OpenBucket(nil)
	defer b.Close()
	var got payload
	err := UnmarshalCompressed(context.Background(), b, "missing", &got)
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
