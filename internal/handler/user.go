package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
)

type UserHandler struct {
	catalog *catalog.Service
}

func NewUserHandler(catalog *catalog.Service) *UserHandler {
	return &UserHandler{catalog: catalog}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.DELETE("/users/:id", h.DeleteUser)
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  Remove a reader. Their holds are released and copies still on loan go to maintenance. Requires the can_edit permission.
// @Tags         users
// @Param        id  path  string  true  "User ID (UUID)"
// @Success      204  "No Content"
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "User not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "USER")
	if !ok {
		return
	}

	if err := h.catalog.DeleteUser(c.Request.Context(), id, auth.ActorFrom(c)); err != nil {
		writeServiceError(c, err, "USER", "DELETE")
		return
	}

	c.Status(http.StatusNoContent)
}
