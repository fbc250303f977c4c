package domain

import (
	"errors"
	"time"
)

var ErrAmbiguousOwnership = errors.New("exactly one of workspace_id or link_id must be set")

// RootSentinel is the literal clients send to target the container root
// in move and delete requests.
const RootSentinel = "root"

// Folder is a node in a hierarchical container. Exactly one of
// WorkspaceID or LinkID is set; ownership is derived from the container,
// never stored redundantly. ParentFolderID == nil means the folder sits
// at the root of its container.
type Folder struct {
	ID             string    `bson:"id"`
	Name           string    `bson:"name"`
	WorkspaceID    *string   `bson:"workspace_id,omitempty"`
	LinkID         *string   `bson:"link_id,omitempty"`
	ParentFolderID *string   `bson:"parent_folder_id,omitempty"`
	Path           string    `bson:"path"`
	Depth          int       `bson:"depth"`
	SortOrder      int       `bson:"sort_order"`
	FileCount      int64     `bson:"file_count"`
	TotalSizeBytes int64     `bson:"total_size_bytes"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

func (f *Folder) ValidateOwnership() error {
	if (f.WorkspaceID == nil) == (f.LinkID == nil) {
		return ErrAmbiguousOwnership
	}
	return nil
}

// ChildPathOf derives path and depth for a folder created under parent.
// A nil parent means the container root.
func ChildPathOf(parent *Folder, name string) (string, int) {
	if parent == nil {
		return "/" + name, 0
	}
	return parent.Path + "/" + name, parent.Depth + 1
}
