package services

import (
	"context"
	"fmt"

	"github.com/dropspace/dropspace/internal/domain"
)

// TreeService implements the batch move/delete API over mixed node-id
// lists. Files and folders are stored and moved independently, so the
// service partitions the incoming ids by membership lookup before
// dispatching one batched call per entity kind.
type TreeService struct {
	files   domain.FileRepository
	folders domain.FolderRepository
}

type TreeServiceDependencies struct {
	FileRepository   domain.FileRepository
	FolderRepository domain.FolderRepository
}

func NewTreeService(deps TreeServiceDependencies) *TreeService {
	return &TreeService{
		files:   deps.FileRepository,
		folders: deps.FolderRepository,
	}
}

type MoveNodesParams struct {
	WorkspaceID string
	NodeIDs     []string
	// TargetID is a folder id or the literal "root" sentinel.
	TargetID string
}

func (s *TreeService) MoveNodes(ctx context.Context, p MoveNodesParams) error {
	fileIDs, folderIDs, err := s.partition(ctx, p.WorkspaceID, p.NodeIDs)
	if err != nil {
		return err
	}

	var targetFolderID *string
	var target *domain.Folder

	if p.TargetID != "" && p.TargetID != domain.RootSentinel {
		found, err := s.folders.GetFolder(ctx, p.TargetID)
		if err != nil {
			return fmt.Errorf("failed to look up target folder: %w", err)
		}

		if found.WorkspaceID == nil || *found.WorkspaceID != p.WorkspaceID {
			return fmt.Errorf("target folder %s: %w", p.TargetID, domain.ErrFolderNotFound)
		}

		if err := s.checkNoCycle(ctx, found, folderIDs); err != nil {
			return err
		}

		target = &found
		targetFolderID = &found.ID
	}

	if err := s.files.MoveFiles(ctx, p.WorkspaceID, fileIDs, targetFolderID); err != nil {
		return fmt.Errorf("failed to move files: %w", err)
	}

	if err := s.folders.MoveFolders(ctx, p.WorkspaceID, folderIDs, targetFolderID); err != nil {
		return fmt.Errorf("failed to move folders: %w", err)
	}

	// Stored paths derive from the parent chain, so every moved subtree
	// needs its path and depth rows rewritten under the new parent.
	for _, id := range folderIDs {
		if err := refreshSubtreePaths(ctx, s.folders, p.WorkspaceID, id, target); err != nil {
			return err
		}
	}

	return nil
}

type DeleteNodesParams struct {
	WorkspaceID string
	NodeIDs     []string
}

// DeleteNodes removes files directly and folders with their whole
// subtree, files included.
func (s *TreeService) DeleteNodes(ctx context.Context, p DeleteNodesParams) error {
	fileIDs, folderIDs, err := s.partition(ctx, p.WorkspaceID, p.NodeIDs)
	if err != nil {
		return err
	}

	allFolderIDs := folderIDs

	for _, id := range folderIDs {
		descendants, err := s.collectDescendants(ctx, p.WorkspaceID, id)
		if err != nil {
			return err
		}
		allFolderIDs = append(allFolderIDs, descendants...)
	}

	if err := s.files.DeleteFilesByFolders(ctx, p.WorkspaceID, allFolderIDs); err != nil {
		return fmt.Errorf("failed to delete folder contents: %w", err)
	}

	if err := s.folders.DeleteFolders(ctx, p.WorkspaceID, allFolderIDs); err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}

	if err := s.files.DeleteFiles(ctx, p.WorkspaceID, fileIDs); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return nil
}

type MoveToWorkspaceParams struct {
	WorkspaceID string
	FileIDs     []string
	FolderID    *string
}

// MoveToWorkspace reassigns link-owned files into the owner's
// workspace: link ownership is cleared and workspace ownership plus the
// destination folder are set in one batched update.
func (s *TreeService) MoveToWorkspace(ctx context.Context, p MoveToWorkspaceParams) error {
	if err := s.files.AssignToWorkspace(ctx, p.FileIDs, p.WorkspaceID, p.FolderID); err != nil {
		return fmt.Errorf("failed to move files to workspace: %w", err)
	}

	return nil
}

// partition splits mixed node ids into file ids and folder ids by
// membership lookup against the workspace's current sets. Ids matching
// neither kind, including ids that exist in some other container, are
// rejected.
func (s *TreeService) partition(ctx context.Context, workspaceID string, nodeIDs []string) ([]string, []string, error) {
	existingFiles, err := s.files.ExistingFileIDs(ctx, workspaceID, nodeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve file ids: %w", err)
	}

	existingFolders, err := s.folders.ExistingFolderIDs(ctx, workspaceID, nodeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve folder ids: %w", err)
	}

	var fileIDs, folderIDs []string

	for _, id := range nodeIDs {
		switch {
		case existingFiles[id]:
			fileIDs = append(fileIDs, id)
		case existingFolders[id]:
			folderIDs = append(folderIDs, id)
		default:
			return nil, nil, fmt.Errorf("node %s: %w", id, domain.ErrNodeNotFound)
		}
	}

	return fileIDs, folderIDs, nil
}

// checkNoCycle rejects moving a folder into its own subtree by walking
// the target's ancestor chain against the moved set.
func (s *TreeService) checkNoCycle(ctx context.Context, target domain.Folder, movedFolderIDs []string) error {
	moved := map[string]bool{}
	for _, id := range movedFolderIDs {
		moved[id] = true
		if id == target.ID {
			return domain.NewUploadError(domain.ErrCodeInvalidMove, "cannot move a folder into itself")
		}
	}

	current := target.ParentFolderID
	for current != nil {
		if moved[*current] {
			return domain.NewUploadError(domain.ErrCodeInvalidMove, "cannot move a folder into its own subtree")
		}

		parent, err := s.folders.GetFolder(ctx, *current)
		if err != nil {
			return fmt.Errorf("failed to walk ancestor chain: %w", err)
		}
		current = parent.ParentFolderID
	}

	return nil
}

// refreshSubtreePaths rewrites the stored path and depth of folderID
// and everything below it, derived from parent (nil means the workspace
// root). Children are revisited depth first with the freshly computed
// folder as their parent, so one pass fixes the whole subtree.
func refreshSubtreePaths(ctx context.Context, folders domain.FolderRepository, workspaceID string, folderID string, parent *domain.Folder) error {
	folder, err := folders.GetFolder(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to load folder for path refresh: %w", err)
	}

	path, depth := domain.ChildPathOf(parent, folder.Name)

	if err := folders.SetFolderPath(ctx, workspaceID, folderID, path, depth); err != nil {
		return fmt.Errorf("failed to update folder path: %w", err)
	}

	folder.Path = path
	folder.Depth = depth

	children, err := folders.ListChildFolders(ctx, workspaceID, &folderID)
	if err != nil {
		return fmt.Errorf("failed to list folder children: %w", err)
	}

	for _, child := range children {
		if err := refreshSubtreePaths(ctx, folders, workspaceID, child.ID, &folder); err != nil {
			return err
		}
	}

	return nil
}

// collectDescendants returns every folder id below root, breadth first.
func (s *TreeService) collectDescendants(ctx context.Context, workspaceID string, rootID string) ([]string, error) {
	var result []string
	queue := []string{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		children, err := s.folders.ListChildFolders(ctx, workspaceID, &current)
		if err != nil {
			return nil, fmt.Errorf("failed to list folder children: %w", err)
		}

		for _, child := range children {
			result = append(result, child.ID)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}
