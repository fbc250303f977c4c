package domain

import "time"

type ProcessingStatus string

const (
	ProcessingStatusPending   ProcessingStatus = "pending"
	ProcessingStatusCompleted ProcessingStatus = "completed"
	ProcessingStatusFailed    ProcessingStatus = "failed"
)

// File is a stored upload. Ownership mirrors Folder: exactly one of
// LinkID or WorkspaceID is set, and FolderID == nil means the container
// root. Ownership is never reassigned in place; moving a file into a
// workspace clears LinkID and sets WorkspaceID plus a new FolderID.
type File struct {
	ID               string           `bson:"id"`
	BatchID          string           `bson:"batch_id"`
	LinkID           *string          `bson:"link_id,omitempty"`
	WorkspaceID      *string          `bson:"workspace_id,omitempty"`
	FolderID         *string          `bson:"folder_id,omitempty"`
	FileName         string           `bson:"file_name"`
	StorageBucket    string           `bson:"storage_bucket"`
	StoragePath      string           `bson:"storage_path"`
	StorageProvider  string           `bson:"storage_provider"`
	FileSizeBytes    int64            `bson:"file_size_bytes"`
	MimeType         string           `bson:"mime_type"`
	Checksum         string           `bson:"checksum,omitempty"`
	ProcessingStatus ProcessingStatus `bson:"processing_status"`
	IsSafe           bool             `bson:"is_safe"`
	VirusScanResult  string           `bson:"virus_scan_result"`
	DownloadCount    int64            `bson:"download_count"`
	UploadedAt       time.Time        `bson:"uploaded_at"`
	UpdatedAt        time.Time        `bson:"updated_at"`
}

func (f *File) ValidateOwnership() error {
	if (f.WorkspaceID == nil) == (f.LinkID == nil) {
		return ErrAmbiguousOwnership
	}
	return nil
}
