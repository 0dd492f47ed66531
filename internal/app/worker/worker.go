package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/p-karthik-eng/chat-app/internal/core/domain"
	"github.com/p-karthik-eng/chat-app/internal/plugins/redis"
)

// OutcomeWorker is the in-process end of the persistence collaborator:
// it drains the outcome stream, records each delivery result for the
// history pipeline and acknowledges it. Durable storage itself lives
// outside this service.
type OutcomeWorker struct {
	log    *slog.Logger
	stream *redis.OutcomeStream
	group  string
}

func NewOutcomeWorker(
	log *slog.Logger,
	stream *redis.OutcomeStream,
	group string,
) *OutcomeWorker {
	return &OutcomeWorker{
		log:    log,
		stream: stream,
		group:  group,
	}
}

func (w *OutcomeWorker) Run(ctx context.Context) error {
	if err := w.stream.Subscribe(ctx, w.group, w.ProcessOutcome); err != nil {
		w.log.ErrorContext(ctx, "worker - run - subscribe failed", "group", w.group, "err", err)
		return err
	}
	w.log.InfoContext(ctx, "worker - run - subscribed to outcome stream", "group", w.group)
	return nil
}

func (w *OutcomeWorker) ProcessOutcome(ctx context.Context, messageID string, raw []byte) error {
	var outcome domain.DeliveryOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		w.log.Error("worker - process outcome - wrong payload", "message_id", messageID)
		return err
	}
	w.log.InfoContext(ctx, "worker - process outcome - delivery outcome",
		"message_id", messageID,
		"from", outcome.From,
		"to", outcome.To,
		"outcome", outcome.Outcome,
		"reason", outcome.Reason,
	)
	if err := w.stream.Acknowledge(ctx, w.group, messageID); err != nil {
		w.log.ErrorContext(ctx, "worker - process outcome - acknowledge failed", "message_id", messageID, "err", err)
		return err
	}
	if err := w.stream.Delete(ctx, messageID); err != nil {
		// already processed and ACKed, deletion only trims the stream
		w.log.ErrorContext(ctx, "worker - process outcome - delete failed", "message_id", messageID, "err", err)
	}
	return nil
}
