package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// FolderMirror recreates a link-local folder path inside the owner's
// workspace, rooted at the batch's target folder. Resolution is
// idempotent: name plus parent is the dedup key, so re-running for the
// same source path returns the same leaf without creating duplicates.
type FolderMirror struct {
	folders domain.FolderRepository

	mu        sync.Mutex
	pathCache map[string][]string
}

// pathCacheLimit caps the ancestor-walk cache. The cache only needs to
// absorb repeated resolutions of the same source folders within a
// batch's uploads; once full it is dropped wholesale rather than grown
// for the process lifetime.
const pathCacheLimit = 1024

type FolderMirrorDependencies struct {
	FolderRepository domain.FolderRepository
}

func NewFolderMirror(deps FolderMirrorDependencies) *FolderMirror {
	return &FolderMirror{
		folders:   deps.FolderRepository,
		pathCache: map[string][]string{},
	}
}

// Resolve returns the workspace folder id the upload should land in.
// Folder mirroring is a placement nicety, not a correctness requirement:
// any failure falls back to the target folder (or the workspace root)
// instead of blocking the upload.
func (m *FolderMirror) Resolve(ctx context.Context, sourceFolderID string, workspaceID string, targetFolderID *string) *string {
	names, err := m.collectPath(ctx, sourceFolderID)
	if err != nil {
		log.Warn().Err(err).
			Str("source_folder_id", sourceFolderID).
			Msg("Failed to walk source folder path, falling back to target folder")
		return targetFolderID
	}

	parentID := targetFolderID
	var parent *domain.Folder

	if targetFolderID != nil {
		target, err := m.folders.GetFolder(ctx, *targetFolderID)
		if err != nil {
			log.Warn().Err(err).
				Str("target_folder_id", *targetFolderID).
				Msg("Target folder lookup failed, falling back")
			return targetFolderID
		}
		parent = &target
	}

	for _, name := range names {
		existing, err := m.folders.FindChildByName(ctx, workspaceID, parentID, name)
		if err == nil {
			parentID = &existing.ID
			parent = &existing
			continue
		}

		if !errors.Is(err, domain.ErrFolderNotFound) {
			log.Warn().Err(err).Str("name", name).Msg("Folder lookup failed, falling back to target folder")
			return targetFolderID
		}

		path, depth := domain.ChildPathOf(parent, name)
		now := time.Now()

		created := domain.Folder{
			ID:             xid.New().String(),
			Name:           name,
			WorkspaceID:    &workspaceID,
			ParentFolderID: parentID,
			Path:           path,
			Depth:          depth,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := m.folders.CreateFolder(ctx, created); err != nil {
			log.Warn().Err(err).Str("name", name).Msg("Folder creation failed, falling back to target folder")
			return targetFolderID
		}

		parentID = &created.ID
		parent = &created
	}

	return parentID
}

// collectPath walks the parent chain upward and returns the ordered
// root-to-leaf folder names. Each step is one lookup; results are cached
// per folder id so repeated resolutions within a batch skip the walk.
func (m *FolderMirror) collectPath(ctx context.Context, folderID string) ([]string, error) {
	m.mu.Lock()
	cached, ok := m.pathCache[folderID]
	m.mu.Unlock()

	if ok {
		return cached, nil
	}

	var names []string
	seen := map[string]bool{}
	currentID := folderID

	for {
		if seen[currentID] {
			return nil, fmt.Errorf("folder parent chain contains a cycle at %s", currentID)
		}
		seen[currentID] = true

		folder, err := m.folders.GetFolder(ctx, currentID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up folder %s: %w", currentID, err)
		}

		names = append([]string{folder.Name}, names...)

		if folder.ParentFolderID == nil {
			break
		}
		currentID = *folder.ParentFolderID
	}

	m.mu.Lock()
	if len(m.pathCache) >= pathCacheLimit {
		m.pathCache = map[string][]string{}
	}
	m.pathCache[folderID] = names
	m.mu.Unlock()

	return names, nil
}
