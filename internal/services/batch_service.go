package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/rs/xid"
)

type BatchService struct {
	batches domain.BatchRepository
	links   domain.LinkRepository
}

type BatchServiceDependencies struct {
	BatchRepository domain.BatchRepository
	LinkRepository  domain.LinkRepository
}

func NewBatchService(deps BatchServiceDependencies) *BatchService {
	return &BatchService{
		batches: deps.BatchRepository,
		links:   deps.LinkRepository,
	}
}

type CreateBatchParams struct {
	LinkID         string
	UploaderName   string
	UploaderEmail  string
	TotalFiles     int64
	TargetFolderID *string
}

func (s *BatchService) CreateBatch(ctx context.Context, p CreateBatchParams) (domain.Batch, error) {
	link, err := s.links.GetLink(ctx, p.LinkID)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("failed to look up link: %w", err)
	}

	if p.TotalFiles <= 0 {
		return domain.Batch{}, fmt.Errorf("batch must contain at least one file")
	}

	batch := domain.Batch{
		ID:            xid.New().String(),
		LinkID:        link.ID,
		UploaderName:  p.UploaderName,
		UploaderEmail: p.UploaderEmail,
		TotalFiles:    p.TotalFiles,
		CreatedAt:     time.Now(),
	}

	// Target folders only mean something for generated links, which
	// place uploads inside the owner's workspace hierarchy.
	if link.IsGenerated() {
		batch.TargetFolderID = p.TargetFolderID
	}

	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		return domain.Batch{}, fmt.Errorf("failed to create batch: %w", err)
	}

	return batch, nil
}

func (s *BatchService) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	return s.batches.GetBatch(ctx, id)
}
