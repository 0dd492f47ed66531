package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/p-karthik-eng/chat-app/internal/core/contracts"
	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

const recordRetryDelay = 200 * time.Millisecond

// OutcomeStream hands delivery outcomes to the persistence collaborator
// over a Redis Stream. The collaborator owns durable history; this side
// only appends and the worker side only acknowledges.
type OutcomeStream struct {
	rdb    *redis.Client
	stream string
}

var _ contracts.OutcomeSink = (*OutcomeStream)(nil)

func NewOutcomeStream(rdb *redis.Client, stream string) *OutcomeStream {
	return &OutcomeStream{rdb: rdb, stream: stream}
}

// Record appends one outcome to the stream. A couple of short retries
// cover transient hiccups; giving up is acceptable, delivery feedback
// to the sender has already happened by the time this is called.
func (s *OutcomeStream) Record(ctx context.Context, outcome domain.DeliveryOutcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	operation := func() error {
		return s.rdb.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			MaxLen: 10000,
			Approx: true,
			ID:     "*",
			Values: map[string]interface{}{"data": raw},
		}).Err()
	}
	strategy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(recordRetryDelay), 3),
		ctx,
	)
	return backoff.Retry(operation, strategy)
}

// Subscribe reads outcomes from the stream via a consumer group and
// feeds them to handler, one goroutine per subscription.
func (s *OutcomeStream) Subscribe(
	ctx context.Context,
	group string,
	handler func(ctx context.Context, messageID string, data []byte) error,
) error {
	err := s.rdb.XGroupCreateMkStream(ctx, s.stream, group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	consumerName := uuid.NewString()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				res, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
					Group:    group,
					Consumer: consumerName,
					Streams:  []string{s.stream, ">"},
					Count:    10,
					Block:    2 * time.Second,
				}).Result()
				if err != nil {
					if err != redis.Nil && ctx.Err() == nil {
						slog.Error("outcome stream read error", "err", err)
					}
					continue
				}
				for _, stream := range res {
					for _, msg := range stream.Messages {
						raw, ok := msg.Values["data"].(string)
						if !ok {
							continue
						}
						if err := handler(ctx, msg.ID, []byte(raw)); err != nil {
							slog.Error("outcome handler error", "message_id", msg.ID, "err", err)
						}
					}
				}
			}
		}
	}()
	return nil
}

func (s *OutcomeStream) Acknowledge(ctx context.Context, group, messageID string) error {
	return s.rdb.XAck(ctx, s.stream, group, messageID).Err()
}

func (s *OutcomeStream) Delete(ctx context.Context, messageID string) error {
	return s.rdb.XDel(ctx, s.stream, messageID).Err()
}
