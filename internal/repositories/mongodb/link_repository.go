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

type LinkRepository struct {
	database *mongo.Database
}

func NewLinkRepository(database *mongo.Database) *LinkRepository {
	repo := &LinkRepository{database: database}
	repo.ensureIndexes()
	return repo
}

func (r *LinkRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(linksCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for links: %v\n", err)
	}
}

func (r *LinkRepository) CreateLink(ctx context.Context, link domain.Link) error {
	if _, err := r.database.Collection(linksCollection).InsertOne(ctx, link); err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

func (r *LinkRepository) GetLink(ctx context.Context, id string) (domain.Link, error) {
	var link domain.Link

	err := r.database.Collection(linksCollection).FindOne(ctx, bson.M{"id": id}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Link{}, domain.ErrLinkNotFound
		}
		return domain.Link{}, fmt.Errorf("failed to find link: %w", err)
	}

	return link, nil
}

func (r *LinkRepository) SetLinkActive(ctx context.Context, id string, active bool) error {
	result, err := r.database.Collection(linksCollection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrLinkNotFound
	}

	return nil
}

func (r *LinkRepository) IncrementLinkStats(ctx context.Context, id string, files int64, sizeBytes int64, at time.Time) error {
	result, err := r.database.Collection(linksCollection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{
			"$inc": bson.M{
				"total_files":      files,
				"total_size_bytes": sizeBytes,
			},
			"$set": bson.M{
				"last_upload_at": at,
				"updated_at":     at,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment link stats: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrLinkNotFound
	}

	return nil
}
