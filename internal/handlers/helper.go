package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParseSessionIDParam extracts the :id path parameter. Session ids are
// UUIDs; anything else is reported as an unknown session. Writes the 404
// itself and returns "" when invalid.
func ParseSessionIDParam(c *gin.Context) string {
	id := strings.TrimSpace(c.Param("id"))
	if err := uuid.Validate(id); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session not found",
			Code:    CodeSessionNotFound,
		})
		return ""
	}
	return id
}
