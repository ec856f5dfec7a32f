package handler

import (
	"net/http"

	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transferService *service.TransferService
}

func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// Recommend opens a transfer recommendation
func (h *TransferHandler) Recommend(c *gin.Context) {
	var req service.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.transferService.Recommend(req, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"recommendation": rec})
}

// RecordConsent records family/patient consent for a recommendation
func (h *TransferHandler) RecordConsent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req service.ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	consent, err := h.transferService.RecordConsent(id, req, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"consent": consent})
}

type confirmBedRequest struct {
	BedID uint `json:"bed_id" binding:"required"`
}

// ConfirmBed reserves the target bed for a recommendation
func (h *TransferHandler) ConfirmBed(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req confirmBedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.transferService.ConfirmBed(id, req.BedID, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"reservation": res})
}

// Execute performs the actual movement onto the reserved bed
func (h *TransferHandler) Execute(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req service.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	movement, err := h.transferService.Execute(id, req, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transfer": movement})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel voids a recommendation and releases any bed hold
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.transferService.Cancel(id, req.Reason, actorFrom(c)); err != nil {
		handleError(c, err)
		return
	}

	utils.MessageResponse(c, "Transfer recommendation cancelled")
}

type justificationRequest struct {
	Justification string `json:"justification" binding:"required"`
}

// RecordJustification files the deferred written justification for an
// emergency transfer
func (h *TransferHandler) RecordJustification(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req justificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := h.transferService.RecordJustification(id, req.Justification, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"recommendation": rec})
}

// PendingJustifications lists emergency transfers still missing their
// written justification
func (h *TransferHandler) PendingJustifications(c *gin.Context) {
	recs, err := h.transferService.PendingJustifications()
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// Get retrieves a recommendation
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	rec, err := h.transferService.Get(id)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"recommendation": rec})
}

// History returns the workflow step audit trail for a recommendation
func (h *TransferHandler) History(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.transferService.History(id)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// FullTransfer chains recommend, consent, confirm-bed and execute in one
// call (authority roles only)
func (h *TransferHandler) FullTransfer(c *gin.Context) {
	var req service.FullTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	movement, err := h.transferService.FullTransfer(req, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"transfer": movement})
}
