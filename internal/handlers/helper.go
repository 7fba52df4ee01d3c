package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseStringIDParam returns the trimmed path parameter, or answers 400 and
// returns "" when it is blank.
func ParseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return id
}

// parseOptionalInt stores raw into dst unless it is empty. A non-numeric
// value answers 400 and returns false.
func (h *BaseHandler) parseOptionalInt(c *gin.Context, name, raw string, dst *int) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+name, nil, name+" must be an integer")
		return false
	}
	*dst = v
	return true
}
