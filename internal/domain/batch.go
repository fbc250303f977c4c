package domain

import "time"

// Batch groups all files submitted in one upload session through a link.
// Its lifecycle is create, per-file increments of ProcessedFiles, and a
// terminal completion once ProcessedFiles reaches TotalFiles.
type Batch struct {
	ID             string     `bson:"id"`
	LinkID         string     `bson:"link_id"`
	UploaderName   string     `bson:"uploader_name"`
	UploaderEmail  string     `bson:"uploader_email,omitempty"`
	TargetFolderID *string    `bson:"target_folder_id,omitempty"`
	TotalFiles     int64      `bson:"total_files"`
	ProcessedFiles int64      `bson:"processed_files"`
	Completed      bool       `bson:"completed"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at"`
}

func (b *Batch) IsComplete() bool {
	return b.TotalFiles > 0 && b.ProcessedFiles >= b.TotalFiles
}
