package controllers

import (
	"github.com/dropspace/dropspace/internal/services"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

type TreeController struct {
	treeService   *services.TreeService
	folderService *services.FolderService
	fileService   *services.FileService
}

type TreeControllerDependencies struct {
	TreeService   *services.TreeService
	FolderService *services.FolderService
	FileService   *services.FileService
}

func NewTreeController(deps TreeControllerDependencies) *TreeController {
	return &TreeController{
		treeService:   deps.TreeService,
		folderService: deps.FolderService,
		fileService:   deps.FileService,
	}
}

type MoveNodesRequest struct {
	NodeIDs  []string `json:"nodeIds"`
	TargetID string   `json:"targetId"`
}

func (c *TreeController) MoveNodes(ctx fiber.Ctx) error {
	var req MoveNodesRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if len(req.NodeIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nodeIds is required")
	}

	err := c.treeService.MoveNodes(ctx.RequestCtx(), services.MoveNodesParams{
		WorkspaceID: ctx.Params("workspaceID"),
		NodeIDs:     req.NodeIDs,
		TargetID:    req.TargetID,
	})
	if err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

type DeleteNodesRequest struct {
	NodeIDs []string `json:"nodeIds"`
}

func (c *TreeController) DeleteNodes(ctx fiber.Ctx) error {
	var req DeleteNodesRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if len(req.NodeIDs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nodeIds is required")
	}

	err := c.treeService.DeleteNodes(ctx.RequestCtx(), services.DeleteNodesParams{
		WorkspaceID: ctx.Params("workspaceID"),
		NodeIDs:     req.NodeIDs,
	})
	if err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

type MoveToWorkspaceRequest struct {
	FileIDs  []string `json:"fileIds"`
	FolderID *string  `json:"folderId"`
}

func (c *TreeController) MoveToWorkspace(ctx fiber.Ctx) error {
	var req MoveToWorkspaceRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	err := c.treeService.MoveToWorkspace(ctx.RequestCtx(), services.MoveToWorkspaceParams{
		WorkspaceID: ctx.Params("workspaceID"),
		FileIDs:     req.FileIDs,
		FolderID:    req.FolderID,
	})
	if err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

type CreateFolderRequest struct {
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parentFolderId"`
}

func (c *TreeController) CreateFolder(ctx fiber.Ctx) error {
	var req CreateFolderRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	folder, err := c.folderService.CreateFolder(ctx.RequestCtx(), services.CreateFolderParams{
		WorkspaceID:    ctx.Params("workspaceID"),
		Name:           req.Name,
		ParentFolderID: req.ParentFolderID,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to create folder")
	}

	return ctx.Status(fiber.StatusCreated).JSON(folder)
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

func (c *TreeController) RenameFolder(ctx fiber.Ctx) error {
	var req RenameFolderRequest

	if err := ctx.Bind().Body(&req); err != nil || req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := c.folderService.RenameFolder(ctx.RequestCtx(), ctx.Params("workspaceID"), ctx.Params("folderID"), req.Name); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Folder not found")
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// ListChildren returns one tree level, the payload clients use to build
// snapshots for the tree store.
func (c *TreeController) ListChildren(ctx fiber.Ctx) error {
	var parentID *string
	if v := ctx.Query("parentId"); v != "" {
		parentID = &v
	}

	folders, files, err := c.folderService.ListChildren(ctx.RequestCtx(), ctx.Params("workspaceID"), parentID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tree children")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list children")
	}

	return ctx.JSON(fiber.Map{
		"folders": folders,
		"files":   files,
	})
}

func (c *TreeController) DownloadFile(ctx fiber.Ctx) error {
	result, err := c.fileService.Download(ctx.RequestCtx(), ctx.Params("fileID"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	}

	ctx.Set(fiber.HeaderContentType, result.File.MimeType)
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.File.FileName+`"`)

	return ctx.SendStream(result.Body)
}
