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

type BatchRepository struct {
	database *mongo.Database
}

func NewBatchRepository(database *mongo.Database) *BatchRepository {
	repo := &BatchRepository{database: database}
	repo.ensureIndexes()
	return repo
}

func (r *BatchRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(batchesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "link_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for batches: %v\n", err)
	}
}

func (r *BatchRepository) CreateBatch(ctx context.Context, batch domain.Batch) error {
	if _, err := r.database.Collection(batchesCollection).InsertOne(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	return nil
}

func (r *BatchRepository) GetBatch(ctx context.Context, id string) (domain.Batch, error) {
	var batch domain.Batch

	err := r.database.Collection(batchesCollection).FindOne(ctx, bson.M{"id": id}).Decode(&batch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Batch{}, domain.ErrBatchNotFound
		}
		return domain.Batch{}, fmt.Errorf("failed to find batch: %w", err)
	}

	return batch, nil
}

func (r *BatchRepository) IncrementProcessedFiles(ctx context.Context, id string) (domain.Batch, error) {
	var updated domain.Batch

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	err := r.database.Collection(batchesCollection).FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"processed_files": 1}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Batch{}, domain.ErrBatchNotFound
		}
		return domain.Batch{}, fmt.Errorf("failed to increment processed files: %w", err)
	}

	return updated, nil
}

// ClaimCompletion flips completed from false to true. The filter makes
// the flip conditional, so only the first of two racing final-file
// completions gets true back.
func (r *BatchRepository) ClaimCompletion(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := r.database.Collection(batchesCollection).UpdateOne(ctx,
		bson.M{"id": id, "completed": false},
		bson.M{"$set": bson.M{"completed": true, "completed_at": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim batch completion: %w", err)
	}

	return result.ModifiedCount == 1, nil
}
