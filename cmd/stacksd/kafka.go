package main

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/getsentry/parallelstacks/internal/parallelstack"
	"github.com/getsentry/parallelstacks/internal/snapshot"
)

type (
	KafkaWriter interface {
		WriteMessages(ctx context.Context, msgs ...kafka.Message) error
		Close() error
	}

	// StacksKafkaMessage summarizes a snapshot: where each group of threads
	// ends up in the merged tree.
	StacksKafkaMessage struct {
		Branches    []parallelstack.Branch `json:"branches"`
		Environment string                 `json:"environment,omitempty"`
		ID          string                 `json:"snapshot_id"`
		Received    int64                  `json:"received"`
		ThreadCount int                    `json:"thread_count"`
	}
)

func buildStacksKafkaMessage(s snapshot.Snapshot, environment string) StacksKafkaMessage {
	return StacksKafkaMessage{
		Branches:    s.Tree.Branches(),
		Environment: environment,
		ID:          s.ID,
		Received:    s.Received,
		ThreadCount: len(s.Threads),
	}
}
