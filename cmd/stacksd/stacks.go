package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"gocloud.dev/gcerrors"

	"github.com/getsentry/parallelstacks/internal/backtrace"
	"github.com/getsentry/parallelstacks/internal/httputil"
	"github.com/getsentry/parallelstacks/internal/parallelstack"
	"github.com/getsentry/parallelstacks/internal/render"
	"github.com/getsentry/parallelstacks/internal/snapshot"
	"github.com/getsentry/parallelstacks/internal/storageutil"
)

func hubFromContext(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func (env *environment) postStacks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := hubFromContext(ctx)

	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxDepth, ok := httputil.GetOptionalIntQueryParameter(w, r, "max_depth")
	if !ok {
		return
	}

	s := sentry.StartSpan(ctx, "request.body")
	s.Description = "Read request body"
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, env.config.MaxDumpBytes))
	s.Finish()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s = sentry.StartSpan(ctx, "backtrace.parse")
	s.Description = "Parse gdb output"
	threads, err := backtrace.Parse(string(body))
	s.Finish()
	if err != nil {
		log.Debug().Err(err).Int("size", len(body)).Msg("dump can't be parsed")
		if errors.Is(err, backtrace.ErrInvalidFormat) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	s = sentry.StartSpan(ctx, "parallelstack.aggregate")
	s.Description = "Merge thread stacks"
	snap := snapshot.New(threads, maxDepth)
	s.Finish()

	hub.Scope().SetContext("Snapshot", map[string]interface{}{
		"snapshot_id":  snap.ID,
		"thread_count": len(threads),
		"size":         len(body),
	})

	s = sentry.StartSpan(ctx, "blob.write")
	s.Description = "Write snapshot to storage"
	err = snap.Write(ctx, env.storage)
	s.Finish()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// This is a transient error, the caller can retry
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			hub.CaptureException(err)
			if code := gcerrors.Code(err); code == gcerrors.FailedPrecondition {
				w.WriteHeader(http.StatusPreconditionFailed)
			} else {
				w.WriteHeader(http.StatusInternalServerError)
			}
		}
		return
	}

	if env.stacksWriter != nil {
		s = sentry.StartSpan(ctx, "json.marshal")
		s.Description = "Marshal snapshot Kafka message"
		b, err := json.Marshal(buildStacksKafkaMessage(snap, env.config.Environment))
		s.Finish()
		if err != nil {
			hub.CaptureException(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		s = sentry.StartSpan(ctx, "processing")
		s.Description = "Send snapshot summary to Kafka"
		err = env.stacksWriter.WriteMessages(ctx, kafka.Message{
			Topic: env.config.StacksKafkaTopic,
			Key:   []byte(snap.ID),
			Value: b,
		})
		s.Finish()
		if err != nil {
			hub.CaptureException(err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	env.writeSnapshot(w, r, snap, format, snap.Tree)
}

func (env *environment) getStacks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hub := hubFromContext(ctx)
	id := httprouter.ParamsFromContext(ctx).ByName("snapshot_id")

	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxDepth, ok := httputil.GetOptionalIntQueryParameter(w, r, "max_depth")
	if !ok {
		return
	}

	s := sentry.StartSpan(ctx, "blob.read")
	s.Description = "Read snapshot from storage"
	snap, err := snapshot.Read(ctx, env.storage, id)
	s.Finish()
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		hub.CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	tree := snap.Tree
	if maxDepth != snap.MaxDepth {
		tree = parallelstack.Aggregate(snap.Threads, parallelstack.WithMaxDepth(maxDepth))
	}
	env.writeSnapshot(w, r, snap, format, tree)
}

func (env *environment) writeSnapshot(
	w http.ResponseWriter,
	r *http.Request,
	snap snapshot.Snapshot,
	format render.Format,
	tree *parallelstack.Node,
) {
	s := sentry.StartSpan(r.Context(), "render")
	s.Description = "Render parallel stacks"
	var b bytes.Buffer
	err := render.Write(&b, format, snap.Threads, tree)
	s.Finish()
	if err != nil {
		hubFromContext(r.Context()).CaptureException(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set(httputil.SnapshotIDHeader, snap.ID)
	_, _ = w.Write(b.Bytes())
}

func (env *environment) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
