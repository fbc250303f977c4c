package services

import (
	"context"
	"fmt"
	"io"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/rs/zerolog/log"
)

type FileService struct {
	files domain.FileRepository
	store domain.ObjectStore
}

type FileServiceDependencies struct {
	FileRepository domain.FileRepository
	ObjectStore    domain.ObjectStore
}

func NewFileService(deps FileServiceDependencies) *FileService {
	return &FileService{
		files: deps.FileRepository,
		store: deps.ObjectStore,
	}
}

type DownloadResult struct {
	File domain.File
	Body io.ReadCloser
}

// Download streams a stored file and bumps its download counter. The
// counter bump is best effort; a failed increment does not block the
// download.
func (s *FileService) Download(ctx context.Context, id string) (DownloadResult, error) {
	file, err := s.files.GetFile(ctx, id)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("failed to look up file: %w", err)
	}

	body, err := s.store.Read(ctx, file.StorageBucket, file.StoragePath)
	if err != nil {
		return DownloadResult{}, fmt.Errorf("failed to open stored object: %w", err)
	}

	if err := s.files.IncrementDownloadCount(ctx, file.ID); err != nil {
		log.Warn().Err(err).Str("file_id", file.ID).Msg("Failed to increment download count")
	}

	return DownloadResult{File: file, Body: body}, nil
}
