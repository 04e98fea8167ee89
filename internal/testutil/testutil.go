package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
)

var defaultCmpOptions = []cmp.Option{
	// nil and empty slices are the same thing for a frame list
	cmpopts.EquateEmpty(),
}

func Diff(a, b interface{}, opts ...cmp.Option) string {
	opts = append(opts, defaultCmpOptions...)
	return cmp.Diff(a, b, opts...)
}

// FileBucket opens a bucket backed by a temporary directory removed at the
// end of the test.
func FileBucket(t testing.TB) *blob.Bucket {
	t.Helper()
	dir, err := os.MkdirTemp(t.TempDir(), "parallel-stacks-*")
	if err != nil {
		t.Fatalf("couldn't create a temporary directory: %s", err.Error())
	}
	b, err := blob.OpenBucket(context.Background(), "file://"+dir)
	if err != nil {
		t.Fatalf("couldn't open a local filesystem bucket: %s", err.Error())
	}
	t.Cleanup(func() {
		_ = b.Close()
	})
	return b
}
