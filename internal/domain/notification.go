package domain

import "context"

const EventTypeBatchCompleted = "batch_completed"

// BatchCompletedEvent is broadcast on the owner's channel once every
// file of a batch has been processed.
type BatchCompletedEvent struct {
	Type         string `json:"type"`
	LinkID       string `json:"linkId"`
	BatchID      string `json:"batchId"`
	UserID       string `json:"userId"`
	UploaderName string `json:"uploaderName"`
	FileCount    int64  `json:"fileCount"`
	LinkTitle    string `json:"linkTitle"`
}

// EventPublisher delivers owner-scoped events. Publishing is best
// effort for callers in the upload path; a delivery failure never fails
// an already stored upload.
type EventPublisher interface {
	PublishBatchCompleted(ctx context.Context, ownerID string, event BatchCompletedEvent) error
}
