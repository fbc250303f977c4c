package controllers

import (
	"time"

	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/services"

	"github.com/gofiber/fiber/v3"
)

type LinkController struct {
	linkService  *services.LinkService
	batchService *services.BatchService
}

type LinkControllerDependencies struct {
	LinkService  *services.LinkService
	BatchService *services.BatchService
}

func NewLinkController(deps LinkControllerDependencies) *LinkController {
	return &LinkController{
		linkService:  deps.LinkService,
		batchService: deps.BatchService,
	}
}

type CreateLinkRequest struct {
	OwnerID          string     `json:"ownerId"`
	WorkspaceID      string     `json:"workspaceId"`
	Title            string     `json:"title"`
	LinkType         string     `json:"linkType"`
	MaxFiles         int64      `json:"maxFiles"`
	MaxFileSizeBytes int64      `json:"maxFileSize"`
	AllowedFileTypes []string   `json:"allowedFileTypes"`
	Password         string     `json:"password"`
	RequireEmail     bool       `json:"requireEmail"`
	ExpiresAt        *time.Time `json:"expiresAt"`
}

func (c *LinkController) CreateLink(ctx fiber.Ctx) error {
	var req CreateLinkRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if req.OwnerID == "" || req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ownerId and title are required")
	}

	link, err := c.linkService.CreateLink(ctx.RequestCtx(), services.CreateLinkParams{
		OwnerID:          req.OwnerID,
		WorkspaceID:      req.WorkspaceID,
		Title:            req.Title,
		LinkType:         domain.LinkType(req.LinkType),
		MaxFiles:         req.MaxFiles,
		MaxFileSizeBytes: req.MaxFileSizeBytes,
		AllowedFileTypes: req.AllowedFileTypes,
		Password:         req.Password,
		RequireEmail:     req.RequireEmail,
		ExpiresAt:        req.ExpiresAt,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create link")
	}

	return ctx.Status(fiber.StatusCreated).JSON(link)
}

func (c *LinkController) GetLink(ctx fiber.Ctx) error {
	link, err := c.linkService.GetLink(ctx.RequestCtx(), ctx.Params("linkID"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Link not found")
	}

	return ctx.JSON(link)
}

func (c *LinkController) DeactivateLink(ctx fiber.Ctx) error {
	if err := c.linkService.DeactivateLink(ctx.RequestCtx(), ctx.Params("linkID")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Link not found")
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

type CreateBatchRequest struct {
	UploaderName   string  `json:"uploaderName"`
	UploaderEmail  string  `json:"uploaderEmail"`
	TotalFiles     int64   `json:"totalFiles"`
	TargetFolderID *string `json:"targetFolderId"`
}

func (c *LinkController) CreateBatch(ctx fiber.Ctx) error {
	var req CreateBatchRequest

	if err := ctx.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	batch, err := c.batchService.CreateBatch(ctx.RequestCtx(), services.CreateBatchParams{
		LinkID:         ctx.Params("linkID"),
		UploaderName:   req.UploaderName,
		UploaderEmail:  req.UploaderEmail,
		TotalFiles:     req.TotalFiles,
		TargetFolderID: req.TargetFolderID,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Failed to create batch")
	}

	return ctx.Status(fiber.StatusCreated).JSON(batch)
}

func (c *LinkController) GetBatch(ctx fiber.Ctx) error {
	batch, err := c.batchService.GetBatch(ctx.RequestCtx(), ctx.Params("batchID"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Batch not found")
	}

	return ctx.JSON(batch)
}
