package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuotaRepository struct {
	database *mongo.Database
}

func NewQuotaRepository(database *mongo.Database) *QuotaRepository {
	repo := &QuotaRepository{database: database}
	repo.ensureIndexes()
	return repo
}

func (r *QuotaRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(quotasCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for quotas: %v\n", err)
	}
}

func (r *QuotaRepository) GetQuota(ctx context.Context, ownerID string) (domain.Quota, error) {
	var quota domain.Quota

	err := r.database.Collection(quotasCollection).FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&quota)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Quota{}, domain.ErrQuotaNotFound
		}
		return domain.Quota{}, fmt.Errorf("failed to find quota: %w", err)
	}

	return quota, nil
}

func (r *QuotaRepository) EnsureQuota(ctx context.Context, quota domain.Quota) error {
	opts := options.Update().SetUpsert(true)

	_, err := r.database.Collection(quotasCollection).UpdateOne(ctx,
		bson.M{"owner_id": quota.OwnerID},
		bson.M{
			"$setOnInsert": bson.M{
				"plan":               quota.Plan,
				"limit_bytes":        quota.LimitBytes,
				"storage_used_bytes": quota.StorageUsedBytes,
				"updated_at":         time.Now(),
			},
		},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure quota: %w", err)
	}

	return nil
}

// TryReserve is the compare-and-swap behind quota enforcement: the
// filter only matches while the incremented usage stays within the
// limit, so two concurrent reservations cannot jointly pass it.
func (r *QuotaRepository) TryReserve(ctx context.Context, ownerID string, sizeBytes int64) (bool, error) {
	result, err := r.database.Collection(quotasCollection).UpdateOne(ctx,
		bson.M{
			"owner_id": ownerID,
			"$expr": bson.M{
				"$lte": bson.A{
					bson.M{"$add": bson.A{"$storage_used_bytes", sizeBytes}},
					"$limit_bytes",
				},
			},
		},
		bson.M{
			"$inc": bson.M{"storage_used_bytes": sizeBytes},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to reserve quota: %w", err)
	}

	if result.ModifiedCount == 1 {
		return true, nil
	}

	// Distinguish a failed guard from a missing quota document.
	if _, err := r.GetQuota(ctx, ownerID); err != nil {
		return false, err
	}

	return false, nil
}

func (r *QuotaRepository) Release(ctx context.Context, ownerID string, sizeBytes int64) error {
	result, err := r.database.Collection(quotasCollection).UpdateOne(ctx,
		bson.M{"owner_id": ownerID},
		bson.M{
			"$inc": bson.M{"storage_used_bytes": -sizeBytes},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release quota: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrQuotaNotFound
	}

	return nil
}
