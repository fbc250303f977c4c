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

type FileRepository struct {
	database *mongo.Database
}

func NewFileRepository(database *mongo.Database) *FileRepository {
	repo := &FileRepository{database: database}
	repo.ensureIndexes()
	return repo
}

func (r *FileRepository) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := r.database.Collection(filesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "batch_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "link_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "folder_id", Value: 1}},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		fmt.Printf("Failed to create indexes for files: %v\n", err)
	}
}

func (r *FileRepository) CreateFile(ctx context.Context, file domain.File) error {
	if err := file.ValidateOwnership(); err != nil {
		return err
	}

	if _, err := r.database.Collection(filesCollection).InsertOne(ctx, file); err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	return nil
}

func (r *FileRepository) GetFile(ctx context.Context, id string) (domain.File, error) {
	var file domain.File

	err := r.database.Collection(filesCollection).FindOne(ctx, bson.M{"id": id}).Decode(&file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.File{}, domain.ErrFileNotFound
		}
		return domain.File{}, fmt.Errorf("failed to find file: %w", err)
	}

	return file, nil
}

func (r *FileRepository) ListFilesByFolder(ctx context.Context, workspaceID string, folderID *string) ([]domain.File, error) {
	filter := bson.M{"workspace_id": workspaceID}

	if folderID != nil {
		filter["folder_id"] = *folderID
	} else {
		filter["folder_id"] = bson.M{"$exists": false}
	}

	cursor, err := r.database.Collection(filesCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	var files []domain.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}

	return files, nil
}

func (r *FileRepository) MoveFiles(ctx context.Context, workspaceID string, ids []string, folderID *string) error {
	if len(ids) == 0 {
		return nil
	}

	update := bson.M{"$set": bson.M{"updated_at": time.Now()}}
	if folderID != nil {
		update["$set"].(bson.M)["folder_id"] = *folderID
	} else {
		update["$unset"] = bson.M{"folder_id": ""}
	}

	_, err := r.database.Collection(filesCollection).UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to move files: %w", err)
	}

	return nil
}

// AssignToWorkspace reassigns ownership by clearing link_id and setting
// workspace_id plus the destination folder, matching how a move out of
// a link into the workspace is modeled.
func (r *FileRepository) AssignToWorkspace(ctx context.Context, ids []string, workspaceID string, folderID *string) error {
	if len(ids) == 0 {
		return nil
	}

	set := bson.M{"workspace_id": workspaceID, "updated_at": time.Now()}
	unset := bson.M{"link_id": ""}

	if folderID != nil {
		set["folder_id"] = *folderID
	} else {
		unset["folder_id"] = ""
	}

	_, err := r.database.Collection(filesCollection).UpdateMany(ctx,
		bson.M{"id": bson.M{"$in": ids}},
		bson.M{"$set": set, "$unset": unset},
	)
	if err != nil {
		return fmt.Errorf("failed to assign files to workspace: %w", err)
	}

	return nil
}

func (r *FileRepository) DeleteFiles(ctx context.Context, workspaceID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.database.Collection(filesCollection).DeleteMany(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
	)
	if err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return nil
}

func (r *FileRepository) DeleteFilesByFolders(ctx context.Context, workspaceID string, folderIDs []string) error {
	if len(folderIDs) == 0 {
		return nil
	}

	_, err := r.database.Collection(filesCollection).DeleteMany(ctx,
		bson.M{"folder_id": bson.M{"$in": folderIDs}, "workspace_id": workspaceID},
	)
	if err != nil {
		return fmt.Errorf("failed to delete files by folder: %w", err)
	}

	return nil
}

func (r *FileRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	result, err := r.database.Collection(filesCollection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"download_count": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.ErrFileNotFound
	}

	return nil
}

func (r *FileRepository) ExistingFileIDs(ctx context.Context, workspaceID string, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	cursor, err := r.database.Collection(filesCollection).Find(ctx,
		bson.M{"id": bson.M{"$in": ids}, "workspace_id": workspaceID},
		options.Find().SetProjection(bson.M{"id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query file ids: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bool{}

	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode file id: %w", err)
		}
		existing[doc.ID] = true
	}

	return existing, cursor.Err()
}
