package handler

import (
	"net/http"

	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BedHandler struct {
	bedService *service.BedService
}

func NewBedHandler(bedService *service.BedService) *BedHandler {
	return &BedHandler{
		bedService: bedService,
	}
}

// CreateWard registers a new ward (admin only)
func (h *BedHandler) CreateWard(c *gin.Context) {
	var ward models.Ward
	if err := c.ShouldBindJSON(&ward); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.bedService.CreateWard(&ward); err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"ward": ward})
}

// ListWards retrieves all active wards
func (h *BedHandler) ListWards(c *gin.Context) {
	wards, err := h.bedService.ListWards()
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"wards": wards,
		"count": len(wards),
	})
}

// CreateBed adds a bed to a ward (admin only)
func (h *BedHandler) CreateBed(c *gin.Context) {
	wardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var bed models.Bed
	if err := c.ShouldBindJSON(&bed); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	bed.WardID = wardID

	if err := h.bedService.CreateBed(&bed); err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"bed": bed})
}

// ListBeds retrieves all beds in a ward
func (h *BedHandler) ListBeds(c *gin.Context) {
	wardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	beds, err := h.bedService.ListBeds(wardID)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"beds":  beds,
		"count": len(beds),
	})
}

type bedStatusRequest struct {
	Status models.BedStatus `json:"status" binding:"required"`
}

// SetStatus applies an administrative bed status change (admin only)
func (h *BedHandler) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req bedStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.bedService.SetStatus(id, req.Status, actorFrom(c)); err != nil {
		handleError(c, err)
		return
	}

	utils.MessageResponse(c, "Bed status updated")
}

// Deactivate retires a bed (admin only)
func (h *BedHandler) Deactivate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.bedService.Deactivate(id, actorFrom(c)); err != nil {
		handleError(c, err)
		return
	}

	utils.MessageResponse(c, "Bed deactivated")
}
