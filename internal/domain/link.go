package domain

import "time"

type LinkType string

const (
	LinkTypeBase      LinkType = "base"
	LinkTypeCustom    LinkType = "custom"
	LinkTypeGenerated LinkType = "generated"
)

// Link is a shareable endpoint through which external uploaders submit
// files. Generated links are backed by the owner's real workspace
// hierarchy; base and custom links collect into a flat link-scoped bucket.
type Link struct {
	ID               string     `bson:"id"`
	OwnerID          string     `bson:"owner_id"`
	WorkspaceID      string     `bson:"workspace_id,omitempty"`
	Title            string     `bson:"title"`
	LinkType         LinkType   `bson:"link_type"`
	IsActive         bool       `bson:"is_active"`
	MaxFiles         int64      `bson:"max_files"`
	MaxFileSizeBytes int64      `bson:"max_file_size_bytes"`
	AllowedFileTypes []string   `bson:"allowed_file_types,omitempty"`
	RequirePassword  bool       `bson:"require_password"`
	PasswordHash     string     `bson:"password_hash,omitempty"`
	RequireEmail     bool       `bson:"require_email"`
	TotalFiles       int64      `bson:"total_files"`
	TotalSizeBytes   int64      `bson:"total_size_bytes"`
	LastUploadAt     *time.Time `bson:"last_upload_at,omitempty"`
	ExpiresAt        *time.Time `bson:"expires_at,omitempty"`
	CreatedAt        time.Time  `bson:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at"`
}

func (l *Link) IsGenerated() bool {
	return l.LinkType == LinkTypeGenerated
}

func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// IsFull reports whether the link reached its configured file count limit.
// MaxFiles == 0 means unlimited.
func (l *Link) IsFull() bool {
	return l.MaxFiles > 0 && l.TotalFiles >= l.MaxFiles
}
