package handler

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/workouts-backend-go/internal/middleware"
	"github.com/jengzang/workouts-backend-go/internal/parser"
	"github.com/jengzang/workouts-backend-go/internal/service"
	"github.com/jengzang/workouts-backend-go/internal/stats"
	"github.com/jengzang/workouts-backend-go/pkg/response"
)

// WorkoutHandler handles HTTP requests for workouts
type WorkoutHandler struct {
	workoutService *service.WorkoutService
	maxFileSize    int64
}

// NewWorkoutHandler creates a new workout handler
func NewWorkoutHandler(workoutService *service.WorkoutService, maxFileSize int64) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
		maxFileSize:    maxFileSize,
	}
}

// CreateWorkout handles POST /api/v1/workouts
//
// Multipart form: "file" is the workout file, the rest are plain fields.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID := middleware.UserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing workout file")
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.BadRequest(c, "Workout file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read workout file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, "Cannot read workout file")
		return
	}

	sportID, err := strconv.ParseInt(c.PostForm("sport_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid sport_id")
		return
	}

	opts := service.CreateOptions{
		UserID:      userID,
		SportID:     sportID,
		Filename:    fileHeader.Filename,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Notes:       c.PostForm("notes"),
		StopEvents:  parseStopPolicy(c.PostForm("stop_events")),
		Elevation:   parseElevationSource(c.PostForm("elevation")),
	}
	if v := c.PostForm("equipment_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "Invalid equipment_id")
			return
		}
		opts.EquipmentID = &id
	}

	workout, err := h.workoutService.CreateFromFile(c.Request.Context(), data, opts)
	if err != nil {
		writeWorkoutError(c, err)
		return
	}

	response.Success(c, workout)
}

// GetWorkout handles GET /api/v1/workouts/:uuid
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID := middleware.UserID(c)

	workout, err := h.workoutService.GetWorkout(userID, c.Param("uuid"))
	if err != nil {
		response.NotFound(c, "Workout not found")
		return
	}

	response.Success(c, workout)
}

// GetWorkoutSegments handles GET /api/v1/workouts/:uuid/segments
func (h *WorkoutHandler) GetWorkoutSegments(c *gin.Context) {
	userID := middleware.UserID(c)

	workout, err := h.workoutService.GetWorkout(userID, c.Param("uuid"))
	if err != nil {
		response.NotFound(c, "Workout not found")
		return
	}

	segments, err := h.workoutService.GetSegments(workout.ID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  segments,
		"count": len(segments),
	})
}

// ListWorkouts handles GET /api/v1/workouts
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID := middleware.UserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	workouts, err := h.workoutService.ListWorkouts(userID, limit, offset)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  workouts,
		"count": len(workouts),
	})
}

// RefreshWorkout handles POST /api/v1/workouts/:uuid/refresh
func (h *WorkoutHandler) RefreshWorkout(c *gin.Context) {
	userID := middleware.UserID(c)

	workout, err := h.workoutService.Refresh(
		c.Request.Context(), userID, c.Param("uuid"),
		parseElevationSource(c.PostForm("elevation")),
	)
	if err != nil {
		writeWorkoutError(c, err)
		return
	}

	response.Success(c, workout)
}

// DeleteWorkout handles DELETE /api/v1/workouts/:uuid
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID := middleware.UserID(c)

	if err := h.workoutService.DeleteWorkout(userID, c.Param("uuid")); err != nil {
		response.NotFound(c, "Workout not found")
		return
	}

	response.Success(c, nil)
}

// writeWorkoutError maps service-layer failures onto HTTP statuses. File
// problems are the client's fault; everything else is ours.
func writeWorkoutError(c *gin.Context, err error) {
	var parseErr *parser.ParseError
	var structErr *parser.StructureError
	var limitErr *stats.ValueLimitError
	if errors.As(err, &parseErr) || errors.As(err, &structErr) || errors.As(err, &limitErr) {
		response.BadRequest(c, err.Error())
		return
	}
	response.InternalError(c, err.Error())
}

func parseStopPolicy(v string) parser.StopEventPolicy {
	switch v {
	case "none":
		return parser.StopNone
	case "all":
		return parser.StopAll
	default:
		return parser.StopOnlyManual
	}
}

func parseElevationSource(v string) service.ElevationSource {
	if v == string(service.ElevationFromProvider) {
		return service.ElevationFromProvider
	}
	return service.ElevationFromFile
}
