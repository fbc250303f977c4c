package ingestion

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// Service runs the ingestion pipeline for one incoming file: resolve the
// destination, mirror folders when needed, reserve quota, write the
// object, record metadata and track batch completion. The pipeline is
// strictly sequential within a request; concurrency comes only from
// simultaneous upload requests racing through it.
type Service struct {
	links    domain.LinkRepository
	batches  domain.BatchRepository
	resolver *PathResolver
	mirror   *FolderMirror
	quota    domain.QuotaManager
	store    domain.ObjectStore
	recorder *Recorder
	tracker  *CompletionTracker
	provider string
}

type ServiceDependencies struct {
	LinkRepository    domain.LinkRepository
	BatchRepository   domain.BatchRepository
	PathResolver      *PathResolver
	FolderMirror      *FolderMirror
	QuotaManager      domain.QuotaManager
	ObjectStore       domain.ObjectStore
	Recorder          *Recorder
	CompletionTracker *CompletionTracker
	StorageProvider   string
}

func NewService(deps ServiceDependencies) *Service {
	provider := deps.StorageProvider
	if provider == "" {
		provider = "s3"
	}

	return &Service{
		links:    deps.LinkRepository,
		batches:  deps.BatchRepository,
		resolver: deps.PathResolver,
		mirror:   deps.FolderMirror,
		quota:    deps.QuotaManager,
		store:    deps.ObjectStore,
		recorder: deps.Recorder,
		tracker:  deps.CompletionTracker,
		provider: provider,
	}
}

type IngestFileParams struct {
	FileID      string
	BatchID     string
	LinkID      string
	FolderID    string
	FileName    string
	ContentType string
	SizeBytes   int64
	Password    string
	Body        io.Reader
}

type IngestFileResult struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

// IngestFile processes a single uploaded file end to end. Client input
// errors surface synchronously with a specific code; storage and
// persistence failures abort with explicit rollback of whatever already
// happened.
func (s *Service) IngestFile(ctx context.Context, p IngestFileParams) (IngestFileResult, error) {
	link, err := s.links.GetLink(ctx, p.LinkID)
	if err != nil {
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeLinkNotFound, "link not found").WithCause(err)
	}

	if err := s.validateUpload(link, p); err != nil {
		return IngestFileResult{}, err
	}

	batch, err := s.batches.GetBatch(ctx, p.BatchID)
	if err != nil {
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeBatchNotFound, "batch not found").WithCause(err)
	}

	if batch.LinkID != link.ID {
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeBatchNotFound, "batch does not belong to link")
	}

	folderID := s.resolveFolder(ctx, link, batch, p.FolderID)
	resolved := s.resolver.Resolve(link, folderID, p.FileName, time.Now())

	reservation, err := s.quota.ReserveAndCommit(ctx, link.OwnerID, p.SizeBytes)
	if err != nil {
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeInternal, "quota check failed").WithCause(err)
	}

	if !reservation.Allowed {
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeQuotaExceeded, reservation.Reason).WithDetails(map[string]any{
			"currentUsage": reservation.CurrentUsage,
			"newTotal":     reservation.NewTotal,
			"limit":        reservation.Limit,
		})
	}

	// Checksum is computed while the body streams into storage; there is
	// no second read of the payload.
	hasher := sha256.New()
	body := io.TeeReader(p.Body, hasher)

	storedPath, err := s.store.Write(ctx, resolved.Bucket, resolved.Key, body, p.SizeBytes, p.ContentType)
	if err != nil {
		s.releaseQuota(ctx, link.OwnerID, p.SizeBytes)
		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodeStorageFailed, "failed to store file").WithCause(err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	file := s.buildFile(link, batch, folderID, resolved, storedPath, checksum, p)

	updatedBatch, err := s.recorder.Record(ctx, file, link.ID)
	if err != nil {
		// Two-phase cleanup: the object is already durable, so remove it
		// before surfacing the failure. A failed remove leaves an orphan
		// object, which is preferable to blocking the user twice.
		if removeErr := s.store.Remove(ctx, resolved.Bucket, storedPath); removeErr != nil {
			log.Error().Err(removeErr).
				Str("bucket", resolved.Bucket).
				Str("path", storedPath).
				Msg("Failed to remove object during rollback")
		}
		s.releaseQuota(ctx, link.OwnerID, p.SizeBytes)

		return IngestFileResult{}, domain.NewUploadError(domain.ErrCodePersistenceFailed, "failed to record file metadata").WithCause(err)
	}

	if err := s.tracker.OnFileProcessed(ctx, updatedBatch); err != nil {
		// The file is stored and recorded; notification is best effort.
		log.Error().Err(err).
			Str("batch_id", updatedBatch.ID).
			Msg("Failed to handle batch completion")
	}

	return IngestFileResult{
		ID:       file.ID,
		Path:     storedPath,
		FileName: p.FileName,
		FileSize: p.SizeBytes,
	}, nil
}

// resolveFolder decides the logical parent folder. Only generated links
// place files inside the workspace hierarchy; a client-picked folder is
// mirrored from the link namespace into the workspace first.
func (s *Service) resolveFolder(ctx context.Context, link domain.Link, batch domain.Batch, clientFolderID string) *string {
	if !link.IsGenerated() {
		return nil
	}

	if clientFolderID == "" {
		return batch.TargetFolderID
	}

	return s.mirror.Resolve(ctx, clientFolderID, link.WorkspaceID, batch.TargetFolderID)
}

func (s *Service) buildFile(link domain.Link, batch domain.Batch, folderID *string, resolved ResolvedPath, storedPath string, checksum string, p IngestFileParams) domain.File {
	now := time.Now()
	file := domain.File{
		ID:              xid.New().String(),
		BatchID:         batch.ID,
		FileName:        p.FileName,
		StorageBucket:   resolved.Bucket,
		StoragePath:     storedPath,
		StorageProvider: s.provider,
		FileSizeBytes:   p.SizeBytes,
		MimeType:        p.ContentType,
		Checksum:        checksum,
		// No async virus scanning; scan fields are trusted by default.
		ProcessingStatus: domain.ProcessingStatusCompleted,
		IsSafe:           true,
		VirusScanResult:  "clean",
		UploadedAt:       now,
		UpdatedAt:        now,
	}

	if link.IsGenerated() {
		workspaceID := link.WorkspaceID
		file.WorkspaceID = &workspaceID
		file.FolderID = folderID
	} else {
		linkID := link.ID
		file.LinkID = &linkID
	}

	return file
}

// validateUpload runs the link-level checks that precede quota: these
// compare against link configuration only and are deliberately separate
// from the capacity reservation.
func (s *Service) validateUpload(link domain.Link, p IngestFileParams) error {
	now := time.Now()

	if !link.IsActive {
		return domain.NewUploadError(domain.ErrCodeLinkInactive, "link is not active")
	}

	if link.IsExpired(now) {
		return domain.NewUploadError(domain.ErrCodeLinkExpired, "link has expired")
	}

	if link.IsFull() {
		return domain.NewUploadError(domain.ErrCodeLinkFull, "link reached its file limit").WithDetails(map[string]any{
			"maxFiles": link.MaxFiles,
		})
	}

	if link.MaxFileSizeBytes > 0 && p.SizeBytes > link.MaxFileSizeBytes {
		return domain.NewUploadError(domain.ErrCodeFileTooLarge, "file exceeds the link's size limit").WithDetails(map[string]any{
			"fileSize":    p.SizeBytes,
			"maxFileSize": link.MaxFileSizeBytes,
		})
	}

	if len(link.AllowedFileTypes) > 0 && !extensionAllowed(p.FileName, link.AllowedFileTypes) {
		return domain.NewUploadError(domain.ErrCodeFileTypeNotAllowed, "file type is not allowed on this link").WithDetails(map[string]any{
			"allowedFileTypes": link.AllowedFileTypes,
		})
	}

	if link.RequirePassword && !passwordMatches(link.PasswordHash, p.Password) {
		return domain.NewUploadError(domain.ErrCodeInvalidPassword, "wrong or missing link password")
	}

	return nil
}

func (s *Service) releaseQuota(ctx context.Context, ownerID string, sizeBytes int64) {
	if err := s.quota.Release(ctx, ownerID, sizeBytes); err != nil {
		log.Error().Err(err).
			Str("owner_id", ownerID).
			Int64("size_bytes", sizeBytes).
			Msg("Failed to release quota reservation")
	}
}

func extensionAllowed(fileName string, allowed []string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}

	return false
}

func passwordMatches(passwordHash string, password string) bool {
	if password == "" {
		return false
	}

	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]) == passwordHash
}

// HashLinkPassword produces the stored representation of a link password.
func HashLinkPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
