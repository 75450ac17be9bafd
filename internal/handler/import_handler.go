package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/workouts-backend-go/internal/middleware"
	"github.com/jengzang/workouts-backend-go/internal/service"
	"github.com/jengzang/workouts-backend-go/pkg/response"
)

// ImportHandler handles HTTP requests for archive imports
type ImportHandler struct {
	importService  *service.ImportService
	maxArchiveSize int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *service.ImportService, maxArchiveSize int64) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		maxArchiveSize: maxArchiveSize,
	}
}

// ImportArchive handles POST /api/v1/imports
//
// Multipart form: "file" is the zip archive; the remaining fields apply
// to every workout file inside it. A small archive is imported before
// the response returns; a large one answers with a pending task to poll.
func (h *ImportHandler) ImportArchive(c *gin.Context) {
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing archive file")
		return
	}
	if fileHeader.Size > h.maxArchiveSize {
		response.BadRequest(c, "Archive too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read archive")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "Cannot read archive")
		return
	}

	sportID, err := strconv.ParseInt(c.PostForm("sport_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid sport_id")
		return
	}

	opts := service.ImportOptions{
		UserID:     userID,
		SportID:    sportID,
		StopEvents: parseStopPolicy(c.PostForm("stop_events")),
		Elevation:  parseElevationSource(c.PostForm("elevation")),
	}
	if v := c.PostForm("equipment_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid equipment_id")
			return
		}
		opts.EquipmentID = &id
	}

	result, err := h.importService.ImportArchive(c.Request.Context(), fileHeader.Filename, data, opts)
	if err != nil {
		var archiveErr *service.ArchiveError
		var equipErr *service.EquipmentError
		if errors.As(err, &archiveErr) || errors.As(err, &equipErr) {
			response.BadRequest(c, err.Error())
		} else {
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{
		"task":  result.Task,
		"async": result.Async,
	})
}

// GetImportTask handles GET /api/v1/imports/:id
func (h *ImportHandler) GetImportTask(c *gin.Context) {
	userID := middleware.UserID(c)

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid import task ID")
		return
	}

	task, err := h.importService.GetTask(userID, taskID)
	if err != nil {
		response.NotFound(c, "Import task not found")
		return
	}

	response.Success(c, task)
}
