package server

import (
	"errors"
	"time"

	"github.com/dropspace/dropspace/internal/controllers"
	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/middlewares"
	"github.com/dropspace/dropspace/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type HTTPServerDependencies struct {
	UploadController *controllers.UploadController
	LinkController   *controllers.LinkController
	TreeController   *controllers.TreeController

	// WorkspaceAPIKeys gates the workspace tree API behind signature
	// authentication when non-empty.
	WorkspaceAPIKeys map[string]string
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName: "dropspace",
		// Large multipart bodies get a fixed processing ceiling; a
		// request that exceeds it is abandoned, not rolled back.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    1 << 30,
		ErrorHandler: handleError,
	})

	router.Use(cors.New())
	router.Use(logger.New())

	// Health check endpoint (no authentication required)
	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "healthy",
			"service":   "dropspace",
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	router.Post("/uploads", deps.UploadController.Upload)

	links := router.Group("/links")
	links.Post("/", deps.LinkController.CreateLink)
	links.Get("/:linkID", deps.LinkController.GetLink)
	links.Delete("/:linkID", deps.LinkController.DeactivateLink)
	links.Post("/:linkID/batches", deps.LinkController.CreateBatch)

	router.Get("/batches/:batchID", deps.LinkController.GetBatch)

	workspaces := router.Group("/workspaces/:workspaceID")
	if len(deps.WorkspaceAPIKeys) > 0 {
		workspaces.Use(middlewares.WorkspaceSignature(middlewares.StaticWorkspaceKeys(deps.WorkspaceAPIKeys)))
	}
	workspaces.Get("/tree", deps.TreeController.ListChildren)
	workspaces.Post("/tree/move", deps.TreeController.MoveNodes)
	workspaces.Post("/tree/delete", deps.TreeController.DeleteNodes)
	workspaces.Post("/tree/import", deps.TreeController.MoveToWorkspace)
	workspaces.Post("/folders", deps.TreeController.CreateFolder)
	workspaces.Patch("/folders/:folderID", deps.TreeController.RenameFolder)

	router.Get("/files/:fileID/download", deps.TreeController.DownloadFile)

	return router
}

// handleError maps pipeline errors to the response contract: every
// failure body carries a machine-readable code plus a human message.
func handleError(c fiber.Ctx, err error) error {
	var uploadErr *domain.UploadError
	if errors.As(err, &uploadErr) {
		return c.Status(uploadErr.HTTPStatus()).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    uploadErr.Code,
				"message": uploadErr.Message,
				"details": uploadErr.Details,
			},
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    domain.ErrCodeInternal,
				"message": fiberErr.Message,
			},
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    domain.ErrCodeInternal,
			"message": err.Error(),
		},
	})
}
