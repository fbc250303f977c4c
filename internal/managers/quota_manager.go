package managers

import (
	"context"
	"fmt"

	"github.com/dropspace/dropspace/internal/domain"
)

type quotaManager struct {
	quotas domain.QuotaRepository
}

type QuotaManagerDependencies struct {
	QuotaRepository domain.QuotaRepository
}

func NewQuotaManager(deps QuotaManagerDependencies) domain.QuotaManager {
	return &quotaManager{
		quotas: deps.QuotaRepository,
	}
}

// Reserve is the read-only capacity check. Its result is only valid at
// the moment it ran; callers about to write must use ReserveAndCommit,
// since concurrent uploads can race past a stale check.
func (m *quotaManager) Reserve(ctx context.Context, ownerID string, sizeBytes int64) (domain.QuotaCheckResult, error) {
	quota, err := m.quotas.GetQuota(ctx, ownerID)
	if err != nil {
		return domain.QuotaCheckResult{}, fmt.Errorf("failed to load quota for %s: %w", ownerID, err)
	}

	newTotal := quota.StorageUsedBytes + sizeBytes
	result := domain.QuotaCheckResult{
		CurrentUsage: quota.StorageUsedBytes,
		NewTotal:     newTotal,
		Limit:        quota.LimitBytes,
	}

	if newTotal > quota.LimitBytes {
		result.WouldExceedLimit = true
		result.Reason = fmt.Sprintf("upload of %d bytes would exceed the %d byte storage limit (current usage %d)",
			sizeBytes, quota.LimitBytes, quota.StorageUsedBytes)
		return result, nil
	}

	result.Allowed = true
	return result, nil
}

// ReserveAndCommit claims the bytes with a conditional update on the
// usage counter, so two concurrent uploads cannot jointly overrun the
// limit. A successful claim must be Released if the upload later rolls
// back.
func (m *quotaManager) ReserveAndCommit(ctx context.Context, ownerID string, sizeBytes int64) (domain.QuotaCheckResult, error) {
	reserved, err := m.quotas.TryReserve(ctx, ownerID, sizeBytes)
	if err != nil {
		return domain.QuotaCheckResult{}, fmt.Errorf("failed to reserve quota for %s: %w", ownerID, err)
	}

	quota, err := m.quotas.GetQuota(ctx, ownerID)
	if err != nil {
		return domain.QuotaCheckResult{}, fmt.Errorf("failed to load quota for %s: %w", ownerID, err)
	}

	if !reserved {
		return domain.QuotaCheckResult{
			CurrentUsage:     quota.StorageUsedBytes,
			NewTotal:         quota.StorageUsedBytes + sizeBytes,
			Limit:            quota.LimitBytes,
			WouldExceedLimit: true,
			Reason: fmt.Sprintf("upload of %d bytes would exceed the %d byte storage limit (current usage %d)",
				sizeBytes, quota.LimitBytes, quota.StorageUsedBytes),
		}, nil
	}

	return domain.QuotaCheckResult{
		Allowed:      true,
		CurrentUsage: quota.StorageUsedBytes - sizeBytes,
		NewTotal:     quota.StorageUsedBytes,
		Limit:        quota.LimitBytes,
	}, nil
}

func (m *quotaManager) Release(ctx context.Context, ownerID string, sizeBytes int64) error {
	if err := m.quotas.Release(ctx, ownerID, sizeBytes); err != nil {
		return fmt.Errorf("failed to release %d reserved bytes for %s: %w", sizeBytes, ownerID, err)
	}

	return nil
}
