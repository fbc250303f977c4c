package controllers

import (
	"github.com/dropspace/dropspace/internal/domain"
	"github.com/dropspace/dropspace/internal/ingestion"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UploadController handles the ingestion HTTP endpoint: one multipart
// request per file, processed synchronously through the pipeline.
type UploadController struct {
	ingestionService *ingestion.Service
}

type UploadControllerDependencies struct {
	IngestionService *ingestion.Service
}

func NewUploadController(deps UploadControllerDependencies) *UploadController {
	return &UploadController{
		ingestionService: deps.IngestionService,
	}
}

// Upload accepts a multipart form with file, batchId, fileId and linkId
// (folderId optional) and responds with the stored file's identity.
func (c *UploadController) Upload(ctx fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return missingField("file")
	}

	batchID := ctx.FormValue("batchId")
	if batchID == "" {
		return missingField("batchId")
	}

	linkID := ctx.FormValue("linkId")
	if linkID == "" {
		return missingField("linkId")
	}

	// The staging id is client-generated and not authoritative, but it
	// must at least be a well-formed UUID.
	fileID := ctx.FormValue("fileId")
	if fileID == "" {
		return missingField("fileId")
	}
	if _, err := uuid.Parse(fileID); err != nil {
		return domain.NewUploadError(domain.ErrCodeInvalidField, "fileId is not a valid UUID").WithDetails(map[string]any{
			"field": "fileId",
		})
	}

	body, err := fileHeader.Open()
	if err != nil {
		return domain.NewUploadError(domain.ErrCodeInternal, "failed to read uploaded file").WithCause(err)
	}
	defer body.Close()

	result, err := c.ingestionService.IngestFile(ctx.RequestCtx(), ingestion.IngestFileParams{
		FileID:      fileID,
		BatchID:     batchID,
		LinkID:      linkID,
		FolderID:    ctx.FormValue("folderId"),
		Password:    ctx.FormValue("password"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Body:        body,
	})
	if err != nil {
		log.Error().Err(err).
			Str("batch_id", batchID).
			Str("link_id", linkID).
			Str("file_name", fileHeader.Filename).
			Msg("Upload failed")
		return err
	}

	return ctx.JSON(result)
}

func missingField(field string) error {
	return domain.NewUploadError(domain.ErrCodeMissingField, "required field is missing").WithDetails(map[string]any{
		"field": field,
	})
}
