package handler

import (
	"net/http"
	"strconv"

	"hms-ipd-backend/internal/apperr"
	"hms-ipd-backend/internal/service"
	"hms-ipd-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// handleError maps the service error kinds onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	switch {
	case apperr.NotFound(err):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case apperr.Conflict(err):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case apperr.Forbidden(err):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case apperr.InvalidInput(err):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// actorFrom builds the explicit caller identity services expect from the
// claims the auth middleware injected.
func actorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			actor.UserID = id
		}
	}
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			actor.Role = role
		}
	}
	return actor
}

// parseUint parses a decimal identifier.
func parseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}

// idParam parses the numeric :id (or named) path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
