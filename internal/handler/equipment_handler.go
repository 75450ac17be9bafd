package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/workouts-backend-go/internal/middleware"
	"github.com/jengzang/workouts-backend-go/internal/models"
	"github.com/jengzang/workouts-backend-go/internal/repository"
	"github.com/jengzang/workouts-backend-go/pkg/response"
)

// EquipmentHandler handles HTTP requests for equipment
type EquipmentHandler struct {
	equipment *repository.EquipmentRepository
}

// NewEquipmentHandler creates a new equipment handler
func NewEquipmentHandler(equipment *repository.EquipmentRepository) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment}
}

type createEquipmentRequest struct {
	Label string `json:"label" binding:"required"`
}

// CreateEquipment handles POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	userID := middleware.UserID(c)

	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	e := &models.Equipment{
		UserID:   userID,
		Label:    req.Label,
		IsActive: true,
	}
	if err := h.equipment.Create(e); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, e)
}
