package domain

import (
	"context"
	"time"
)

type LinkRepository interface {
	CreateLink(ctx context.Context, link Link) error
	GetLink(ctx context.Context, id string) (Link, error)
	SetLinkActive(ctx context.Context, id string, active bool) error
	// IncrementLinkStats adds to total_files and total_size_bytes and
	// stamps last_upload_at.
	IncrementLinkStats(ctx context.Context, id string, files int64, sizeBytes int64, at time.Time) error
}

type BatchRepository interface {
	CreateBatch(ctx context.Context, batch Batch) error
	GetBatch(ctx context.Context, id string) (Batch, error)
	// IncrementProcessedFiles returns the batch as it stands after the
	// increment, so callers can detect the completion transition.
	IncrementProcessedFiles(ctx context.Context, id string) (Batch, error)
	// ClaimCompletion flips the completed flag, returning true for
	// exactly one caller per batch.
	ClaimCompletion(ctx context.Context, id string, at time.Time) (bool, error)
}

// FolderRepository mutations that act on existing workspace folders
// take the workspace id and filter on it, so ids from another container
// never match.
type FolderRepository interface {
	CreateFolder(ctx context.Context, folder Folder) error
	GetFolder(ctx context.Context, id string) (Folder, error)
	// FindChildByName matches on workspace, parent and name. A nil
	// parentID matches only folders at the workspace root.
	FindChildByName(ctx context.Context, workspaceID string, parentID *string, name string) (Folder, error)
	ListChildFolders(ctx context.Context, workspaceID string, parentID *string) ([]Folder, error)
	RenameFolder(ctx context.Context, workspaceID string, id string, name string) error
	// MoveFolders reparents all given folders in one call.
	MoveFolders(ctx context.Context, workspaceID string, ids []string, parentID *string) error
	// SetFolderPath rewrites the stored path and depth of one folder.
	SetFolderPath(ctx context.Context, workspaceID string, id string, path string, depth int) error
	DeleteFolders(ctx context.Context, workspaceID string, ids []string) error
	ExistingFolderIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error)
}

// FileRepository mutations scoped to a workspace follow the same rule
// as FolderRepository: the workspace id is part of every filter.
type FileRepository interface {
	CreateFile(ctx context.Context, file File) error
	GetFile(ctx context.Context, id string) (File, error)
	ListFilesByFolder(ctx context.Context, workspaceID string, folderID *string) ([]File, error)
	MoveFiles(ctx context.Context, workspaceID string, ids []string, folderID *string) error
	// AssignToWorkspace clears link ownership and sets workspace
	// ownership plus the destination folder.
	AssignToWorkspace(ctx context.Context, ids []string, workspaceID string, folderID *string) error
	DeleteFiles(ctx context.Context, workspaceID string, ids []string) error
	DeleteFilesByFolders(ctx context.Context, workspaceID string, folderIDs []string) error
	IncrementDownloadCount(ctx context.Context, id string) error
	ExistingFileIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error)
}

type QuotaRepository interface {
	GetQuota(ctx context.Context, ownerID string) (Quota, error)
	EnsureQuota(ctx context.Context, quota Quota) error
	// TryReserve increments storage_used_bytes only while the result
	// stays within the limit. Returns false when the guard fails.
	TryReserve(ctx context.Context, ownerID string, sizeBytes int64) (bool, error)
	Release(ctx context.Context, ownerID string, sizeBytes int64) error
}

// Transactioner runs fn inside one transaction; every repository call
// made with the callback context joins it.
type Transactioner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
