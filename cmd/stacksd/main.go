package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/getsentry/parallelstacks/internal/envutil"
	"github.com/getsentry/parallelstacks/internal/httputil"
	"github.com/getsentry/parallelstacks/internal/logutil"
)

type environment struct {
	config ServiceConfig

	stacksWriter KafkaWriter
	storage      *blob.Bucket
}

var release string

func newEnvironment(ctx context.Context) (*environment, error) {
	envName := envutil.Environment()
	var e environment
	var exists bool
	e.config, exists = serviceConfigs[envName]
	if !exists {
		return nil, fmt.Errorf("service config for environment %v does not exist", envName)
	}
	e.config.Environment = envName
	if err := envutil.ReadConfig(&e.config); err != nil {
		return nil, err
	}

	var err error
	e.storage, err = blob.OpenBucket(ctx, e.config.SnapshotsBucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening snapshots bucket: %w", err)
	}
	if len(e.config.StacksKafkaBrokers) > 0 {
		e.stacksWriter = &kafka.Writer{
			Addr:         kafka.TCP(e.config.StacksKafkaBrokers...),
			Async:        true,
			Balancer:     kafka.CRC32Balancer{},
			BatchSize:    10,
			Compression:  kafka.Lz4,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}
	return &e, nil
}

func (e *environment) shutdown() {
	err := e.storage.Close()
	if err != nil {
		sentry.CaptureException(err)
	}
	if e.stacksWriter != nil {
		err = e.stacksWriter.Close()
		if err != nil {
			sentry.CaptureException(err)
		}
	}
	sentry.Flush(5 * time.Second)
}

func (e *environment) newRouter() (*httprouter.Router, error) {
	compress, err := httpcompression.DefaultAdapter()
	if err != nil {
		return nil, err
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodGet, "/health", e.getHealth},
		{http.MethodGet, "/stacks/:snapshot_id", e.getStacks},
		{http.MethodPost, "/stacks", e.postStacks},
	}

	router := httprouter.New()

	for _, route := range routes {
		handlerFunc := httputil.DecompressPayload(route.handler)
		handler := compress(handlerFunc)

		router.Handler(route.method, route.path, handler)
	}

	return router, nil
}

func main() {
	logutil.ConfigureLogger(zerolog.InfoLevel)

	ctx := context.Background()
	env, err := newEnvironment(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("error setting up environment")
	}

	err = sentry.Init(sentry.ClientOptions{
		BeforeSendTransaction: httputil.SetResponseTags,
		Dsn:                   env.config.SentryDSN,
		EnableTracing:         true,
		Environment:           env.config.Environment,
		Release:               release,
		TracesSampleRate:      1.0,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("can't initialize sentry")
	}

	router, err := env.newRouter()
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal().Err(err).Msg("error setting up the router")
	}

	server := http.Server{
		Addr:    ":" + env.config.Port,
		Handler: sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(router),
	}

	waitForShutdown := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		cctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(cctx); err != nil {
			sentry.CaptureException(err)
			log.Err(err).Msg("error shutting down server")
		}

		close(waitForShutdown)
	}()

	log.Info().Str("environment", env.config.Environment).Str("port", env.config.Port).Msg("starting server")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		sentry.CaptureException(err)
		env.shutdown()
		log.Fatal().Err(err).Msg("server failed")
	}

	<-waitForShutdown

	env.shutdown()
}
