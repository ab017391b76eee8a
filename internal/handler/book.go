package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
)

type BookHandler struct {
	catalog *catalog.Service
	today   func() time.Time
}

func NewBookHandler(catalog *catalog.Service, today func() time.Time) *BookHandler {
	return &BookHandler{catalog: catalog, today: today}
}

func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	books := r.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/:id", h.GetBookByID)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
		books.POST("", h.CreateBook)
	}
}

// CreateBook godoc
// @Summary      Create a book
// @Description  Create a new book. Requires the can_edit permission.
// @Tags         books
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        payload  body      BookRequest               true  "Book to create"
// @Success      201      {object}  BookResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	values, ok := bindValues(c)
	if !ok {
		return
	}

	book, err := h.catalog.CreateBook(c.Request.Context(), values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "BOOK", "CREATE")
		return
	}

	c.JSON(http.StatusCreated, BookResponse{Data: toBook(*book, h.today())})
}

// ListBooks godoc
// @Summary      List books
// @Description  List books ten per page, ordered by title. q matches the title or the author's name.
// @Tags         books
// @Produce      json
// @Param        page  query     int     false  "Page number"  default(1) minimum(1)
// @Param        q     query     string  false  "Search term"
// @Success      200   {object}  ListBooksResponse
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, err := h.catalog.ListBooks(c.Request.Context(), c.Query("q"), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "BOOK", "LIST")
		return
	}

	today := h.today()
	data := make([]Book, 0, len(page.Items))
	for _, b := range page.Items {
		data = append(data, toBook(b, today))
	}

	c.JSON(http.StatusOK, ListBooksResponse{Data: data, Pagination: toPagination(page)})
}

// GetBookByID godoc
// @Summary      Get a book by ID
// @Description  Get a single book with its genres and copies
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID (UUID)"
// @Success      200  {object}  BookResponse
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse  "Book not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBookByID(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id", "BOOK")
	if !ok {
		return
	}

	book, err := h.catalog.GetBook(c.Request.Context(), bookID)
	if err != nil {
		writeServiceError(c, err, "BOOK", "FETCH")
		return
	}

	c.JSON(http.StatusOK, BookResponse{Data: toBook(*book, h.today())})
}

// UpdateBook godoc
// @Summary      Update a book
// @Description  Replace the fields of a book. Requires the can_edit permission.
// @Tags         books
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Book ID (UUID)"
// @Param        payload  body      BookRequest               true  "New book fields"
// @Success      200      {object}  BookResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid ID or payload"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404      {object}  validation.ErrorResponse  "Book not found"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id", "BOOK")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	book, err := h.catalog.UpdateBook(c.Request.Context(), bookID, values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "BOOK", "UPDATE")
		return
	}

	c.JSON(http.StatusOK, BookResponse{Data: toBook(*book, h.today())})
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Delete a book. Its copies stay on record without a book. Requires the can_edit permission.
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book ID (UUID)"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Book not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id", "BOOK")
	if !ok {
		return
	}

	if err := h.catalog.DeleteBook(c.Request.Context(), bookID, auth.ActorFrom(c)); err != nil {
		writeServiceError(c, err, "BOOK", "DELETE")
		return
	}

	c.Status(http.StatusNoContent)
}
