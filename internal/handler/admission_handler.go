package handler

import (
	"net/http"
	"time"

	"hms-ipd-backend/internal/models"
	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AdmissionHandler struct {
	admissionService *service.AdmissionService
	evaluator        *service.PriorityEvaluator
}

func NewAdmissionHandler(admissionService *service.AdmissionService, evaluator *service.PriorityEvaluator) *AdmissionHandler {
	return &AdmissionHandler{
		admissionService: admissionService,
		evaluator:        evaluator,
	}
}

// admissionView shapes an admission for responses, with the display status
// (TRANSFERRED surfaces as SHIFTED).
func admissionView(adm *models.IPDAdmission) gin.H {
	return gin.H{
		"admission": adm,
		"status":    adm.Status.Display(),
	}
}

// Admit creates a new admission
func (h *AdmissionHandler) Admit(c *gin.Context) {
	var req service.AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adm, err := h.admissionService.Admit(req, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

type shiftRequest struct {
	ShiftedAt *time.Time `json:"shifted_at"`
}

// ShiftToWard moves an admitted patient onto the ward
func (h *AdmissionHandler) ShiftToWard(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	shiftedAt := time.Now()
	if req.ShiftedAt != nil {
		shiftedAt = *req.ShiftedAt
	}

	adm, err := h.admissionService.ShiftToWard(id, shiftedAt, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

type transferRequest struct {
	TargetBedID uint   `json:"target_bed_id" binding:"required"`
	Remarks     string `json:"remarks"`
}

// Transfer moves the admission directly onto a new bed
func (h *AdmissionHandler) Transfer(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adm, err := h.admissionService.Transfer(id, req.TargetBedID, req.Remarks, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

type remarksRequest struct {
	Remarks string `json:"remarks"`
}

// Discharge advances the two-phase discharge
func (h *AdmissionHandler) Discharge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adm, err := h.admissionService.Discharge(id, req.Remarks, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

// Cancel voids an admission still in an early state
func (h *AdmissionHandler) Cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req remarksRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adm, err := h.admissionService.Cancel(id, req.Remarks, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

type overrideRequest struct {
	Priority models.PriorityCode `json:"priority" binding:"required"`
	Reason   string              `json:"reason" binding:"required"`
}

// OverridePriority replaces the evaluated priority (authority roles only)
func (h *AdmissionHandler) OverridePriority(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	adm, err := h.admissionService.OverridePriority(id, req.Priority, req.Reason, actorFrom(c))
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

// Get retrieves one admission by numeric id or admission number
func (h *AdmissionHandler) Get(c *gin.Context) {
	ref := c.Param("id")
	var (
		adm *models.IPDAdmission
		err error
	)
	if id, perr := parseUint(ref); perr == nil {
		adm, err = h.admissionService.Get(id)
	} else {
		adm, err = h.admissionService.GetByNumber(ref)
	}
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, admissionView(adm))
}

// List retrieves active admissions, optionally filtered by status
func (h *AdmissionHandler) List(c *gin.Context) {
	var (
		adms []models.IPDAdmission
		err  error
	)
	if status := c.Query("status"); status != "" {
		adms, err = h.admissionService.ListByStatus(models.AdmissionStatus(status))
	} else {
		adms, err = h.admissionService.ListActive()
	}
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"admissions": adms,
		"count":      len(adms),
	})
}

// StatusHistory returns the admission's transition audit trail
func (h *AdmissionHandler) StatusHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.admissionService.StatusHistory(id)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// PriorityHistory returns the admission's priority decision audit trail
func (h *AdmissionHandler) PriorityHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.admissionService.PriorityHistory(id)
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// EvaluatePriority runs the evaluator without touching any admission
func (h *AdmissionHandler) EvaluatePriority(c *gin.Context) {
	var input service.PriorityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	utils.SuccessResponse(c, h.evaluator.Evaluate(input))
}
