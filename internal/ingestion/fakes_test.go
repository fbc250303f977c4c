package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dropspace/dropspace/internal/domain"
)

type fakeLinkRepository struct {
	mu    sync.Mutex
	links map[string]domain.Link
}

func newFakeLinkRepository(links ...domain.Link) *fakeLinkRepository {
	repo := &fakeLinkRepository{links: map[string]domain.Link{}}
	for _, l := range links {
		repo.links[l.ID] = l
	}
	return repo
}

func (r *fakeLinkRepository) CreateLink(ctx context.Context, link domain.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.ID] = link
	return nil
}

func (r *fakeLinkRepository) GetLink(ctx context.Context, id string) (domain.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return domain.Link{}, domain.ErrLinkNotFound
	}
	return link, nil
}

func (r *fakeLinkRepository) SetLinkActive(ctx context.Context, id string, active bool) error {
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

func (r *fakeLinkRepository) IncrementLinkStats(ctx context.Context, id string, files int64, sizeBytes int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.TotalFiles += files
	link.TotalSizeBytes += sizeBytes
	link.LastUploadAt = &at
	r.links[id] = link
	return nil
}

type fakeBatchRepository struct {
	mu      sync.Mutex
	batches map[string]domain.Batch
}

func newFakeBatchRepository(batches ...domain.Batch) *fakeBatchRepository {
	repo := &fakeBatchRepository{batches: map[string]domain.Batch{}}
	for _, b := range batches {
		repo.batches[b.ID] = b
	}
	return repo
}

func (r *fakeBatchRepository) CreateBatch(ctx context.Context, batch domain.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepository) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok {
		return domain.Batch{}, domain.ErrBatchNotFound
	}
	return batch, nil
}

func (r *fakeBatchRepository) IncrementProcessedFiles(ctx context.Context, id string) (domain.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok {
		return domain.Batch{}, domain.ErrBatchNotFound
	}
	batch.ProcessedFiles++
	r.batches[id] = batch
	return batch, nil
}

func (r *fakeBatchRepository) ClaimCompletion(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[id]
	if !ok {
		return false, domain.ErrBatchNotFound
	}
	if batch.Completed {
		return false, nil
	}
	batch.Completed = true
	batch.CompletedAt = &at
	r.batches[id] = batch
	return true, nil
}

type fakeFolderRepository struct {
	mu      sync.Mutex
	folders map[string]domain.Folder

	failCreate bool
	creates    int
}

func newFakeFolderRepository(folders ...domain.Folder) *fakeFolderRepository {
	repo := &fakeFolderRepository{folders: map[string]domain.Folder{}}
	for _, f := range folders {
		repo.folders[f.ID] = f
	}
	return repo
}

func (r *fakeFolderRepository) CreateFolder(ctx context.Context, folder domain.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate {
		return errors.New("create refused")
	}
	r.creates++
	r.folders[folder.ID] = folder
	return nil
}

func (r *fakeFolderRepository) GetFolder(ctx context.Context, id string) (domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.folders[id]
	if !ok {
		return domain.Folder{}, domain.ErrFolderNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepository) FindChildByName(ctx context.Context, workspaceID string, parentID *string, name string) (domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.folders {
		if f.WorkspaceID == nil || *f.WorkspaceID != workspaceID || f.Name != name {
			continue
		}
		if parentID == nil && f.ParentFolderID == nil {
			return f, nil
		}
		if parentID != nil && f.ParentFolderID != nil && *parentID == *f.ParentFolderID {
			return f, nil
		}
	}
	return domain.Folder{}, domain.ErrFolderNotFound
}

func (r *fakeFolderRepository) ListChildFolders(ctx context.Context, workspaceID string, parentID *string) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Folder
	for _, f := range r.folders {
		if f.WorkspaceID == nil || *f.WorkspaceID != workspaceID {
			continue
		}
		if parentID == nil && f.ParentFolderID == nil {
			result = append(result, f)
		} else if parentID != nil && f.ParentFolderID != nil && *parentID == *f.ParentFolderID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeFolderRepository) inWorkspace(id string, workspaceID string) (domain.Folder, bool) {
	folder, ok := r.folders[id]
	if !ok || folder.WorkspaceID == nil || *folder.WorkspaceID != workspaceID {
		return domain.Folder{}, false
	}
	return folder, true
}

func (r *fakeFolderRepository) RenameFolder(ctx context.Context, workspaceID string, id string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.inWorkspace(id, workspaceID)
	if !ok {
		return domain.ErrFolderNotFound
	}
	folder.Name = name
	r.folders[id] = folder
	return nil
}

func (r *fakeFolderRepository) MoveFolders(ctx context.Context, workspaceID string, ids []string, parentID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		folder, ok := r.inWorkspace(id, workspaceID)
		if !ok {
			continue
		}
		folder.ParentFolderID = parentID
		r.folders[id] = folder
	}
	return nil
}

func (r *fakeFolderRepository) SetFolderPath(ctx context.Context, workspaceID string, id string, path string, depth int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.inWorkspace(id, workspaceID)
	if !ok {
		return domain.ErrFolderNotFound
	}
	folder.Path = path
	folder.Depth = depth
	r.folders[id] = folder
	return nil
}

func (r *fakeFolderRepository) DeleteFolders(ctx context.Context, workspaceID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.inWorkspace(id, workspaceID); ok {
			delete(r.folders, id)
		}
	}
	return nil
}

func (r *fakeFolderRepository) ExistingFolderIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := map[string]bool{}
	for _, id := range ids {
		if _, ok := r.inWorkspace(id, workspaceID); ok {
			existing[id] = true
		}
	}
	return existing, nil
}

type fakeFileRepository struct {
	mu    sync.Mutex
	files map[string]domain.File

	failCreate bool
}

func newFakeFileRepository() *fakeFileRepository {
	return &fakeFileRepository{files: map[string]domain.File{}}
}

func (r *fakeFileRepository) CreateFile(ctx context.Context, file domain.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate {
		return errors.New("insert refused")
	}
	if err := file.ValidateOwnership(); err != nil {
		return err
	}
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepository) GetFile(ctx context.Context, id string) (domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, ok := r.files[id]
	if !ok {
		return domain.File{}, domain.ErrFileNotFound
	}
	return file, nil
}

func (r *fakeFileRepository) ListFilesByFolder(ctx context.Context, workspaceID string, folderID *string) ([]domain.File, error) {
	return nil, nil
}

func (r *fakeFileRepository) MoveFiles(ctx context.Context, workspaceID string, ids []string, folderID *string) error {
	return nil
}

func (r *fakeFileRepository) AssignToWorkspace(ctx context.Context, ids []string, workspaceID string, folderID *string) error {
	return nil
}

func (r *fakeFileRepository) DeleteFiles(ctx context.Context, workspaceID string, ids []string) error {
	return nil
}

func (r *fakeFileRepository) DeleteFilesByFolders(ctx context.Context, workspaceID string, folderIDs []string) error {
	return nil
}

func (r *fakeFileRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	return nil
}

func (r *fakeFileRepository) ExistingFileIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := map[string]bool{}
	for _, id := range ids {
		file, ok := r.files[id]
		if ok && file.WorkspaceID != nil && *file.WorkspaceID == workspaceID {
			existing[id] = true
		}
	}
	return existing, nil
}

type fakeQuotaManager struct {
	mu       sync.Mutex
	used     int64
	limit    int64
	released int64
}

func (m *fakeQuotaManager) Reserve(ctx context.Context, ownerID string, sizeBytes int64) (domain.QuotaCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.check(sizeBytes), nil
}

func (m *fakeQuotaManager) ReserveAndCommit(ctx context.Context, ownerID string, sizeBytes int64) (domain.QuotaCheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := m.check(sizeBytes)
	if result.Allowed {
		m.used += sizeBytes
	}
	return result, nil
}

func (m *fakeQuotaManager) Release(ctx context.Context, ownerID string, sizeBytes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used -= sizeBytes
	m.released += sizeBytes
	return nil
}

func (m *fakeQuotaManager) check(sizeBytes int64) domain.QuotaCheckResult {
	result := domain.QuotaCheckResult{
		CurrentUsage: m.used,
		NewTotal:     m.used + sizeBytes,
		Limit:        m.limit,
	}
	if result.NewTotal > m.limit {
		result.WouldExceedLimit = true
		result.Reason = "storage limit exceeded"
		return result
	}
	result.Allowed = true
	return result
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	failWrite bool
	removes   []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func objectKey(bucket, path string) string {
	return fmt.Sprintf("%s/%s", bucket, path)
}

func (s *fakeObjectStore) Write(ctx context.Context, bucket, key string, body io.Reader, sizeBytes int64, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrite {
		return "", errors.New("write refused")
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[objectKey(bucket, key)] = data
	return key, nil
}

func (s *fakeObjectStore) Read(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[objectKey(bucket, path)]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeObjectStore) Remove(ctx context.Context, bucket, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, objectKey(bucket, path))
	s.removes = append(s.removes, objectKey(bucket, path))
	return nil
}

func (s *fakeObjectStore) Exists(ctx context.Context, bucket, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[objectKey(bucket, path)]
	return ok, nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []domain.BatchCompletedEvent
}

func (p *fakeEventPublisher) PublishBatchCompleted(ctx context.Context, ownerID string, event domain.BatchCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// fakeTxn runs the callback directly; the fakes it wraps are already
// consistent per call.
type fakeTxn struct{}

func (fakeTxn) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
