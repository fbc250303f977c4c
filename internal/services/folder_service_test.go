package services

import (
	"context"
	"testing"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folderFixture() (*FolderService, *trackingFileRepository, *trackingFolderRepository) {
	_, files, folders := treeFixture()

	service := NewFolderService(FolderServiceDependencies{
		FolderRepository: folders,
		FileRepository:   files,
	})

	return service, files, folders
}

func TestFolderService_CreateFolderRejectsForeignParent(t *testing.T) {
	service, _, _ := folderFixture()

	_, err := service.CreateFolder(context.Background(), CreateFolderParams{
		WorkspaceID:    "ws1",
		Name:           "reports",
		ParentFolderID: strptr("other"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different container")
}

func TestFolderService_RenameFolderRewritesSubtreePaths(t *testing.T) {
	service, _, folders := folderFixture()

	err := service.RenameFolder(context.Background(), "ws1", "a", "archive")
	require.NoError(t, err)

	path, depth := folders.pathOf(t, "a")
	assert.Equal(t, "/archive", path)
	assert.Equal(t, 0, depth)

	path, depth = folders.pathOf(t, "b")
	assert.Equal(t, "/archive/b", path)
	assert.Equal(t, 1, depth)

	path, depth = folders.pathOf(t, "c")
	assert.Equal(t, "/archive/b/c", path)
	assert.Equal(t, 2, depth)
}

func TestFolderService_RenameFolderRejectsOtherWorkspace(t *testing.T) {
	service, _, folders := folderFixture()

	err := service.RenameFolder(context.Background(), "ws1", "other", "hijacked")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFolderNotFound)

	folder, ok := folders.folders["other"]
	require.True(t, ok)
	assert.Equal(t, "other", folder.Name)
}
