package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/rs/xid"
)

type FolderService struct {
	folders domain.FolderRepository
	files   domain.FileRepository
}

type FolderServiceDependencies struct {
	FolderRepository domain.FolderRepository
	FileRepository   domain.FileRepository
}

func NewFolderService(deps FolderServiceDependencies) *FolderService {
	return &FolderService{
		folders: deps.FolderRepository,
		files:   deps.FileRepository,
	}
}

type CreateFolderParams struct {
	WorkspaceID    string
	Name           string
	ParentFolderID *string
}

func (s *FolderService) CreateFolder(ctx context.Context, p CreateFolderParams) (domain.Folder, error) {
	var parent *domain.Folder

	if p.ParentFolderID != nil {
		found, err := s.folders.GetFolder(ctx, *p.ParentFolderID)
		if err != nil {
			return domain.Folder{}, fmt.Errorf("failed to look up parent folder: %w", err)
		}

		// A folder's container must match its parent's container.
		if found.WorkspaceID == nil || *found.WorkspaceID != p.WorkspaceID {
			return domain.Folder{}, fmt.Errorf("parent folder belongs to a different container")
		}

		parent = &found
	}

	path, depth := domain.ChildPathOf(parent, p.Name)
	now := time.Now()

	folder := domain.Folder{
		ID:             xid.New().String(),
		Name:           p.Name,
		WorkspaceID:    &p.WorkspaceID,
		ParentFolderID: p.ParentFolderID,
		Path:           path,
		Depth:          depth,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.folders.CreateFolder(ctx, folder); err != nil {
		return domain.Folder{}, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// RenameFolder renames a workspace folder and rewrites the stored paths
// of its subtree, which embed the old name.
func (s *FolderService) RenameFolder(ctx context.Context, workspaceID string, id string, name string) error {
	if err := s.folders.RenameFolder(ctx, workspaceID, id, name); err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	folder, err := s.folders.GetFolder(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to reload renamed folder: %w", err)
	}

	var parent *domain.Folder
	if folder.ParentFolderID != nil {
		found, err := s.folders.GetFolder(ctx, *folder.ParentFolderID)
		if err != nil {
			return fmt.Errorf("failed to look up parent folder: %w", err)
		}
		parent = &found
	}

	return refreshSubtreePaths(ctx, s.folders, workspaceID, id, parent)
}

// ListChildren returns one level of the workspace tree: subfolders and
// files under parentID, which feeds tree snapshots.
func (s *FolderService) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]domain.Folder, []domain.File, error) {
	folders, err := s.folders.ListChildFolders(ctx, workspaceID, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	files, err := s.files.ListFilesByFolder(ctx, workspaceID, parentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list files: %w", err)
	}

	return folders, files, nil
}
