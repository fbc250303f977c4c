package domain

import (
	"context"
	"time"
)

// Quota is a principal's storage allowance, one document per owner.
// StorageUsedBytes is the committed usage counter; reservations move it
// with a conditional update so concurrent uploads cannot jointly pass
// the limit.
type Quota struct {
	OwnerID          string    `bson:"owner_id"`
	Plan             string    `bson:"plan"`
	LimitBytes       int64     `bson:"limit_bytes"`
	StorageUsedBytes int64     `bson:"storage_used_bytes"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// QuotaCheckResult reports the outcome of a reservation attempt with
// enough detail for an actionable client message.
type QuotaCheckResult struct {
	Allowed          bool   `json:"allowed"`
	Reason           string `json:"reason,omitempty"`
	CurrentUsage     int64  `json:"current_usage"`
	NewTotal         int64  `json:"new_total"`
	Limit            int64  `json:"limit"`
	WouldExceedLimit bool   `json:"would_exceed_limit"`
}

// QuotaManager guards owner storage capacity. Reserve is a read-only
// check; ReserveAndCommit atomically claims the bytes and must be
// released if the upload is rolled back.
type QuotaManager interface {
	Reserve(ctx context.Context, ownerID string, sizeBytes int64) (QuotaCheckResult, error)
	ReserveAndCommit(ctx context.Context, ownerID string, sizeBytes int64) (QuotaCheckResult, error)
	Release(ctx context.Context, ownerID string, sizeBytes int64) error
}
