package main

type (
	ServiceConfig struct {
		Environment string

		SentryDSN string `env:"SENTRY_DSN" env-description:"Sentry DSN errors and transactions are sent to"`
		Port      string `env:"PORT" env-default:"8080" env-description:"port to listen on"`

		SnapshotsBucketURL string `env:"SNAPSHOTS_BUCKET_URL" env-description:"gocloud.dev blob URL snapshots are stored in"`
		MaxDumpBytes       int64  `env:"MAX_DUMP_BYTES" env-default:"33554432" env-description:"largest accepted dump"`

		StacksKafkaBrokers []string `env:"STACKS_KAFKA_BROKERS" env-description:"brokers snapshot summaries are published to, none disables publishing"`
		StacksKafkaTopic   string   `env:"STACKS_KAFKA_TOPIC" env-description:"topic snapshot summaries are published to"`
	}
)

var (
	serviceConfigs = map[string]ServiceConfig{
		"production": {
			SnapshotsBucketURL: "gs://sentry-parallel-stacks",
			StacksKafkaBrokers: []string{"specto-dev-kafka.service.us-central1.consul:9092"},
			StacksKafkaTopic:   "parallel-stacks",
		},
		"development": {
			SnapshotsBucketURL: "mem://",
			StacksKafkaTopic:   "parallel-stacks",
		},
	}
)
