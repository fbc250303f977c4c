package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"
)

// CompletionTracker detects the transition of a batch into its terminal
// state and broadcasts the one-time notification to the link owner. The
// claim is a conditional flip of the batch's completed flag, so two
// requests racing on the final file emit exactly one event.
type CompletionTracker struct {
	batches   domain.BatchRepository
	links     domain.LinkRepository
	publisher domain.EventPublisher
}

type CompletionTrackerDependencies struct {
	BatchRepository domain.BatchRepository
	LinkRepository  domain.LinkRepository
	EventPublisher  domain.EventPublisher
}

func NewCompletionTracker(deps CompletionTrackerDependencies) *CompletionTracker {
	return &CompletionTracker{
		batches:   deps.BatchRepository,
		links:     deps.LinkRepository,
		publisher: deps.EventPublisher,
	}
}

// OnFileProcessed is called with the batch state after a progress
// increment. Completion is order-independent: processed == total is the
// only signal, whichever file lands last.
func (t *CompletionTracker) OnFileProcessed(ctx context.Context, batch domain.Batch) error {
	if !batch.IsComplete() {
		return nil
	}

	claimed, err := t.batches.ClaimCompletion(ctx, batch.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to claim batch completion: %w", err)
	}
	if !claimed {
		return nil
	}

	link, err := t.links.GetLink(ctx, batch.LinkID)
	if err != nil {
		return fmt.Errorf("failed to look up link for completed batch: %w", err)
	}

	event := domain.BatchCompletedEvent{
		Type:         domain.EventTypeBatchCompleted,
		LinkID:       link.ID,
		BatchID:      batch.ID,
		UserID:       link.OwnerID,
		UploaderName: batch.UploaderName,
		FileCount:    batch.TotalFiles,
		LinkTitle:    link.Title,
	}

	if err := t.publisher.PublishBatchCompleted(ctx, link.OwnerID, event); err != nil {
		return fmt.Errorf("failed to publish batch completed event: %w", err)
	}

	return nil
}
