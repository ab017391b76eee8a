package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
)

type AuthorHandler struct {
	catalog *catalog.Service
}

func NewAuthorHandler(catalog *catalog.Service) *AuthorHandler {
	return &AuthorHandler{catalog: catalog}
}

func (h *AuthorHandler) RegisterRoutes(r *gin.RouterGroup) {
	authors := r.Group("/authors")
	{
		authors.POST("", h.CreateAuthor)
		authors.GET("", h.ListAuthors)
		authors.GET("/:id", h.GetAuthorByID)
		authors.PUT("/:id", h.UpdateAuthor)
		authors.DELETE("/:id", h.DeleteAuthor)
	}
}

// CreateAuthor godoc
// @Summary      Create an author
// @Description  Create a new author. Requires the can_edit permission.
// @Tags         authors
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        payload  body      AuthorRequest             true  "Author to create"
// @Success      201      {object}  AuthorResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	values, ok := bindValues(c)
	if !ok {
		return
	}

	author, err := h.catalog.CreateAuthor(c.Request.Context(), values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "AUTHOR", "CREATE")
		return
	}

	c.JSON(http.StatusCreated, AuthorResponse{Data: toAuthor(*author)})
}

// ListAuthors godoc
// @Summary      List authors
// @Description  List authors ten per page by last and first name. Every word of q must match the first or last name.
// @Tags         authors
// @Produce      json
// @Param        page  query     int     false  "Page number"  default(1) minimum(1)
// @Param        q     query     string  false  "Search term"
// @Success      200   {object}  ListAuthorsResponse
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors [get]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	page, err := h.catalog.ListAuthors(c.Request.Context(), c.Query("q"), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "AUTHOR", "LIST")
		return
	}

	data := make([]Author, 0, len(page.Items))
	for _, a := range page.Items {
		data = append(data, toAuthor(a))
	}

	c.JSON(http.StatusOK, ListAuthorsResponse{Data: data, Pagination: toPagination(page)})
}

// GetAuthorByID godoc
// @Summary      Get an author by ID
// @Description  Get a single author with their books
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "Author ID (UUID)"
// @Success      200  {object}  AuthorResponse
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse  "Author not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors/{id} [get]
func (h *AuthorHandler) GetAuthorByID(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id", "AUTHOR")
	if !ok {
		return
	}

	author, err := h.catalog.GetAuthor(c.Request.Context(), authorID)
	if err != nil {
		writeServiceError(c, err, "AUTHOR", "FETCH")
		return
	}

	c.JSON(http.StatusOK, AuthorResponse{Data: toAuthor(*author)})
}

// UpdateAuthor godoc
// @Summary      Update an author
// @Description  Replace the fields of an author. Requires the can_edit permission.
// @Tags         authors
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Author ID (UUID)"
// @Param        payload  body      AuthorRequest             true  "New author fields"
// @Success      200      {object}  AuthorResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid ID or payload"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404      {object}  validation.ErrorResponse  "Author not found"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors/{id} [put]
func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id", "AUTHOR")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	author, err := h.catalog.UpdateAuthor(c.Request.Context(), authorID, values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "AUTHOR", "UPDATE")
		return
	}

	c.JSON(http.StatusOK, AuthorResponse{Data: toAuthor(*author)})
}

// DeleteAuthor godoc
// @Summary      Delete an author
// @Description  Delete an author. Their books remain without an author. Requires the can_edit permission.
// @Tags         authors
// @Produce      json
// @Param        id   path      string  true  "Author ID (UUID)"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Author not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /authors/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id", "AUTHOR")
	if !ok {
		return
	}

	if err := h.catalog.DeleteAuthor(c.Request.Context(), authorID, auth.ActorFrom(c)); err != nil {
		writeServiceError(c, err, "AUTHOR", "DELETE")
		return
	}

	c.Status(http.StatusNoContent)
}
