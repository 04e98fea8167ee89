package httputil

import (
	"strconv"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTPStatusCodeTag is the name of the HTTP status code tag.
	HTTPStatusCodeTag = "http.response.status_code"
	// SnapshotIDTag is the name of the tag holding the snapshot a request created or read.
	SnapshotIDTag = "snapshot_id"

	SnapshotIDHeader = "X-Snapshot-ID"
)

// SetResponseTags copies the status code and the snapshot ID of the response
// onto the request's top-level transaction.
func SetResponseTags(e *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint == nil || hint.Response == nil {
		return e
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	if _, exists := e.Tags[HTTPStatusCodeTag]; !exists {
		e.Tags[HTTPStatusCodeTag] = strconv.Itoa(hint.Response.StatusCode)
	}
	if id := hint.Response.Header.Get(SnapshotIDHeader); id != "" {
		e.Tags[SnapshotIDTag] = id
	}
	return e
}
