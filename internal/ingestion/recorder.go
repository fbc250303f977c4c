package ingestion

import (
	"context"
	"fmt"

	"github.com/dropspace/dropspace/internal/domain"
)

// Recorder persists the outcome of a successful object write: the file
// row, the link statistics and the batch progress counter, as one
// transactional unit. The owner's usage counter is not touched here; it
// was already committed by the quota reservation.
type Recorder struct {
	files   domain.FileRepository
	links   domain.LinkRepository
	batches domain.BatchRepository
	tx      domain.Transactioner
}

type RecorderDependencies struct {
	FileRepository  domain.FileRepository
	LinkRepository  domain.LinkRepository
	BatchRepository domain.BatchRepository
	Transactioner   domain.Transactioner
}

func NewRecorder(deps RecorderDependencies) *Recorder {
	return &Recorder{
		files:   deps.FileRepository,
		links:   deps.LinkRepository,
		batches: deps.BatchRepository,
		tx:      deps.Transactioner,
	}
}

// Record returns the batch as it stands after the progress increment so
// the caller can detect the completion transition. The link id is passed
// separately because workspace-owned files do not carry one on the row.
// On any error nothing is persisted and the caller must roll back the
// stored object.
func (r *Recorder) Record(ctx context.Context, file domain.File, linkID string) (domain.Batch, error) {
	if err := file.ValidateOwnership(); err != nil {
		return domain.Batch{}, fmt.Errorf("refusing to record file %s: %w", file.ID, err)
	}

	var updated domain.Batch

	err := r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := r.files.CreateFile(ctx, file); err != nil {
			return fmt.Errorf("failed to insert file row: %w", err)
		}

		if err := r.links.IncrementLinkStats(ctx, linkID, 1, file.FileSizeBytes, file.UploadedAt); err != nil {
			return fmt.Errorf("failed to update link statistics: %w", err)
		}

		batch, err := r.batches.IncrementProcessedFiles(ctx, file.BatchID)
		if err != nil {
			return fmt.Errorf("failed to increment batch progress: %w", err)
		}

		updated = batch
		return nil
	})
	if err != nil {
		return domain.Batch{}, err
	}

	return updated, nil
}
