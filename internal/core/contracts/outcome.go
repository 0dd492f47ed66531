package contracts

import (
	"context"

	"github.com/p-karthik-eng/chat-app/internal/core/domain"
)

// OutcomeSink is the boundary to the external persistence collaborator.
// The router hands it every DeliveryOutcome; durable history is the
// collaborator's job, the core never reads or writes storage itself.
type OutcomeSink interface {
	Record(ctx context.Context, outcome domain.DeliveryOutcome) error
}
