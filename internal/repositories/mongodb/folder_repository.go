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

type FolderRepository struct {
	database *mongo.Database
}

func NewFolderRepository(database *mongo.Database) *FolderRepository {
	repo := &FolderRepository{database: database}
	repo.ensureIndexes()
	return repo
}

func (r *FolderRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(foldersCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "workspace_id", Value: 1},
				{Key: "parent_folder_id", Value: 1},
				{Key: "name", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "link_id", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for folders: %v\n", err)
	}
}

func (r *FolderRepository) CreateFolder(ctx context.Context, folder domain.Folder) error {
	if err := folder.ValidateOwnership(); err != nil {
		return err
	}

	if _, err := r.database.Collection(foldersCollection).InsertOne(ctx, folder); err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}

	return nil
}

func (r *FolderRepository) GetFolder(ctx context.Context, id string) (domain.Folder, error) {
	var folder domain.Folder

	err := r.database.Collection(foldersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Folder{}, domain.ErrFolderNotFound
		}
		return domain.Folder{}, fmt.Errorf("failed to find folder: %w", err)
	}

	return folder, nil
}

func (r *FolderRepository) FindChildByName(ctx context.Context, workspaceID string, parentID *string, name string) (domain.Folder, error) {
	filter := bson.M{
		"workspace_id": workspaceID,
		"name":         name,
	}

	if parentID != nil {
		filter["parent_folder_id"] = *parentID
	} else {
		filter["parent_folder_id"] = bson.M{"$exists": false}
	}

	var folder domain.Folder

	err := r.database.Collection(foldersCollection).FindOne(ctx, filter).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Folder{}, domain.ErrFolderNotFound
		}
		return domain.Folder{}, fmt.Errorf("failed to find folder by name: %w", err)
	}

	return folder, nil
}

func (r *FolderRepository) ListChildFolders(ctx context.Context, workspaceID string, parentID *string) ([]domain.Folder, error) {
	filter := bson.M{"workspace_id": workspaceID}

	if parentID != nil {
		filter["parent_folder_id"] = *parentID
	} else {
		filter["parent_folder_id"] = bson.M{"$exists": false}
	}

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.database.Collection(foldersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer cursor.Close(ctx)

	var folders []domain.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	return folders, nil
}

func (r *FolderRepository) RenameFolder(ctx context.Context, workspaceID string, id string, name string) error {
	result, err := r.database.Collection(foldersCollection).UpdateOne(ctx,
		bson.M{"id": id, "workspace_id": workspaceID},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrFolderNotFound
	}

	return nil
}

func (r *FolderRepository) MoveFolders(ctx context.Context, workspaceID string, ids []string, parentID *string) error {
	if len(ids) == 0 {
		return nil
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if parentID != nil {
		update["$set"].(bson.M)["parent_folder_id"] = *parentID
	} else {
		update["$unset"] = bson.M{"parent_folder_id": ""}
	}

	_, err := r.database.Collection(foldersCollection).UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to move folders: %w", err)
	}

	return nil
}

func (r *FolderRepository) SetFolderPath(ctx context.Context, workspaceID string, id string, path string, depth int) error {
	result, err := r.database.Collection(foldersCollection).UpdateOne(ctx,
		bson.M{"id": id, "workspace_id": workspaceID},
		bson.M{"$set": bson.M{"path": path, "depth": depth, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set folder path: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrFolderNotFound
	}

	return nil
}

func (r *FolderRepository) DeleteFolders(ctx context.Context, workspaceID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.database.Collection(foldersCollection).DeleteMany(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
	)
	if err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}

	return nil
}

func (r *FolderRepository) ExistingFolderIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	cursor, err := r.database.Collection(foldersCollection).Find(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
		options.Find().SetProjection(bson.M{"id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query folder ids: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bool{}

	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode folder id: %w", err)
		}
		existing[doc.ID] = true
	}

	return existing, cursor.Err()
}
