package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/pkg/response"
)

// SportHandler handles HTTP requests for the sport catalogue
type SportHandler struct {
	sports *repository.SportRepository
}

// NewSportHandler creates a new sport handler
func NewSportHandler(sports *repository.SportRepository) *SportHandler {
	return &SportHandler{sports: sports}
}

// ListSports handles GET /api/v1/sports
func (h *SportHandler) ListSports(c *gin.Context) {
	sports, err := h.sports.List()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  sports,
		"count": len(sports),
	})
}
