package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/ingestion"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLinkRepository struct {
	mu    sync.Mutex
	links map[string]domain.Link
}

func newMemoryLinkRepository(links ...domain.Link) *memoryLinkRepository {
	repo := &memoryLinkRepository{links: map[string]domain.Link{}}
	for _, l := range links {
		repo.links[l.ID] = l
	}
	return repo
}

func (r *memoryLinkRepository) CreateLink(ctx context.Context, link domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.ID] = link
	return nil
}

func (r *memoryLinkRepository) GetLink(ctx context.Context, id string) (domain.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return domain.Link{}, domain.ErrLinkNotFound
	}
	return link, nil
}

func (r *memoryLinkRepository) SetLinkActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.IsActive = active
	r.links[id] = link
	return nil
}

func (r *memoryLinkRepository) IncrementLinkStats(ctx context.Context, id string, files int64, sizeBytes int64, at time.Time) error {
	return nil
}

type memoryBatchRepository struct {
	mu      sync.Mutex
	batches map[string]domain.Batch
}

func newMemoryBatchRepository() *memoryBatchRepository {
	return &memoryBatchRepository{batches: map[string]domain.Batch{}}
}

func (r *memoryBatchRepository) CreateBatch(ctx context.Context, batch domain.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *memoryBatchRepository) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok {
		return domain.Batch{}, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (r *memoryBatchRepository) IncrementProcessedFiles(ctx context.Context, id string) (domain.Batch, error) {
	return domain.Batch{}, domain.ErrBatchNotFound
}

func (r *memoryBatchRepository) ClaimCompletion(ctx context.Context, id string, at time.Time) (bool, error) {
	return false, domain.ErrBatchNotFound
}

type memoryQuotaRepository struct {
	mu     sync.Mutex
	quotas map[string]domain.Quota
}

func newMemoryQuotaRepository() *memoryQuotaRepository {
	return &memoryQuotaRepository{quotas: map[string]domain.Quota{}}
}

func (r *memoryQuotaRepository) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	quota, ok := r.quotas[ownerID]
	if !ok {
		return domain.Quota{}, domain.ErrQuotaNotFound
	}
	return quota, nil
}

func (r *memoryQuotaRepository) EnsureQuota(ctx context.Context, quota domain.Quota) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.quotas[quota.OwnerID]; !ok {
		r.quotas[quota.OwnerID] = quota
	}
	return nil
}

func (r *memoryQuotaRepository) TryReserve(ctx context.Context, ownerID string, sizeBytes int64) (bool, error) {
	return false, domain.ErrQuotaNotFound
}

func (r *memoryQuotaRepository) Release(ctx context.Context, ownerID string, sizeBytes int64) error {
	return nil
}

func newLinkService(links *memoryLinkRepository, quotas *memoryQuotaRepository) *LinkService {
	return NewLinkService(LinkServiceDependencies{
		LinkRepository:    links,
		QuotaRepository:   quotas,
		DefaultQuotaBytes: 5 << 30,
	})
}

func TestLinkService_CreateLink(t *testing.T) {
	links := newMemoryLinkRepository()
	quotas := newMemoryQuotaRepository()
	service := newLinkService(links, quotas)

	link, err := service.CreateLink(context.Background(), CreateLinkParams{
		OwnerID:  "own1",
		Title:    "Drop files here",
		LinkType: domain.LinkTypeCustom,
		MaxFiles: 50,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, link.ID)
	assert.True(t, link.IsActive)
	assert.False(t, link.RequirePassword)

	stored, err := links.GetLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drop files here", stored.Title)

	quota, err := quotas.GetQuota(context.Background(), "own1")
	require.NoError(t, err)
	assert.Equal(t, "free", quota.Plan)
	assert.Equal(t, int64(5<<30), quota.LimitBytes)
}

func TestLinkService_CreateLinkHashesPassword(t *testing.T) {
	service := newLinkService(newMemoryLinkRepository(), newMemoryQuotaRepository())

	link, err := service.CreateLink(context.Background(), CreateLinkParams{
		OwnerID:  "own1",
		Title:    "Locked",
		LinkType: domain.LinkTypeCustom,
		Password: "opensesame",
	})
	require.NoError(t, err)

	assert.True(t, link.RequirePassword)
	assert.Equal(t, ingestion.HashLinkPassword("opensesame"), link.PasswordHash)
	assert.NotContains(t, link.PasswordHash, "opensesame")
}

func TestLinkService_GeneratedLinkRequiresWorkspace(t *testing.T) {
	service := newLinkService(newMemoryLinkRepository(), newMemoryQuotaRepository())

	_, err := service.CreateLink(context.Background(), CreateLinkParams{
		OwnerID:  "own1",
		Title:    "Workspace intake",
		LinkType: domain.LinkTypeGenerated,
	})
	require.Error(t, err)
}

func TestLinkService_QuotaSeededOnce(t *testing.T) {
	links := newMemoryLinkRepository()
	quotas := newMemoryQuotaRepository()
	service := newLinkService(links, quotas)
	ctx := context.Background()

	_, err := service.CreateLink(ctx, CreateLinkParams{OwnerID: "own1", Title: "first", LinkType: domain.LinkTypeBase})
	require.NoError(t, err)

	// Simulate usage, then create another link for the same owner.
	quotas.mu.Lock()
	q := quotas.quotas["own1"]
	q.StorageUsedBytes = 123
	quotas.quotas["own1"] = q
	quotas.mu.Unlock()

	_, err = service.CreateLink(ctx, CreateLinkParams{OwnerID: "own1", Title: "second", LinkType: domain.LinkTypeBase})
	require.NoError(t, err)

	quota, err := quotas.GetQuota(ctx, "own1")
	require.NoError(t, err)
	assert.Equal(t, int64(123), quota.StorageUsedBytes, "existing quota is not reset")
}

func TestLinkService_DeactivateLink(t *testing.T) {
	links := newMemoryLinkRepository(domain.Link{ID: "lnk1", IsActive: true})
	service := newLinkService(links, newMemoryQuotaRepository())

	require.NoError(t, service.DeactivateLink(context.Background(), "lnk1"))

	link, err := links.GetLink(context.Background(), "lnk1")
	require.NoError(t, err)
	assert.False(t, link.IsActive)
}

func TestBatchService_CreateBatch(t *testing.T) {
	tests := []struct {
		name           string
		link           domain.Link
		target         *string
		wantTargetKept bool
	}{
		{
			name:           "generated link keeps the target folder",
			link:           domain.Link{ID: "lnk1", LinkType: domain.LinkTypeGenerated, WorkspaceID: "ws1"},
			target:         strptr("fold1"),
			wantTargetKept: true,
		},
		{
			name:           "custom link drops the target folder",
			link:           domain.Link{ID: "lnk1", LinkType: domain.LinkTypeCustom},
			target:         strptr("fold1"),
			wantTargetKept: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := newMemoryBatchRepository()
			service := NewBatchService(BatchServiceDependencies{
				BatchRepository: batches,
				LinkRepository:  newMemoryLinkRepository(tt.link),
			})

			batch, err := service.CreateBatch(context.Background(), CreateBatchParams{
				LinkID:         "lnk1",
				UploaderName:   "alice",
				TotalFiles:     3,
				TargetFolderID: tt.target,
			})
			require.NoError(t, err)

			assert.Equal(t, "lnk1", batch.LinkID)
			assert.Equal(t, int64(3), batch.TotalFiles)
			if tt.wantTargetKept {
				require.NotNil(t, batch.TargetFolderID)
				assert.Equal(t, "fold1", *batch.TargetFolderID)
			} else {
				assert.Nil(t, batch.TargetFolderID)
			}

			stored, err := batches.GetBatch(context.Background(), batch.ID)
			require.NoError(t, err)
			assert.Equal(t, batch.TargetFolderID, stored.TargetFolderID)
		})
	}
}

func TestBatchService_RejectsEmptyBatch(t *testing.T) {
	service := NewBatchService(BatchServiceDependencies{
		BatchRepository: newMemoryBatchRepository(),
		LinkRepository:  newMemoryLinkRepository(domain.Link{ID: "lnk1", LinkType: domain.LinkTypeBase}),
	})

	_, err := service.CreateBatch(context.Background(), CreateBatchParams{LinkID: "lnk1", TotalFiles: 0})
	require.Error(t, err)
}

func TestBatchService_UnknownLink(t *testing.T) {
	service := NewBatchService(BatchServiceDependencies{
		BatchRepository: newMemoryBatchRepository(),
		LinkRepository:  newMemoryLinkRepository(),
	})

	_, err := service.CreateBatch(context.Background(), CreateBatchParams{LinkID: "ghost", TotalFiles: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLinkNotFound)
}
