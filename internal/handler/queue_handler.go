package handler

import (
	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queueService *service.QueueService
}

func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
	}
}

// List returns the priority-ordered admission queue
func (h *QueueHandler) List(c *gin.Context) {
	entries, err := h.queueService.List()
	if err != nil {
		handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"queue": entries,
		"count": len(entries),
	})
}
