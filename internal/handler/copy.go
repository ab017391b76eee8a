package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
	"github.com/snnyvrz/locallibrary/internal/circulation"
	"github.com/snnyvrz/locallibrary/internal/model"
)

// CopyHandler serves book copies and their circulation.
type CopyHandler struct {
	circulation *circulation.Service
	catalog     *catalog.Service
}

func NewCopyHandler(circ *circulation.Service, catalog *catalog.Service) *CopyHandler {
	return &CopyHandler{circulation: circ, catalog: catalog}
}

func (h *CopyHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/books/:id/copies", h.CreateCopy)

	copies := r.Group("/copies")
	{
		copies.GET("", h.ListCopies)
		copies.GET("/:id", h.GetCopyByID)
	}

	actions := r.Group("/copies/:id", auth.RequireLogin())
	{
		actions.POST("/reserve", h.Reserve)
		actions.POST("/checkout", h.Checkout)
		actions.POST("/lend", h.Lend)
		actions.POST("/renew", h.Renew)
		actions.POST("/renew-librarian", h.RenewAsLibrarian)
		actions.POST("/return", h.Return)
		actions.POST("/mark-returned", h.MarkReturned)
		actions.POST("/maintenance", h.MarkMaintenance)
		actions.POST("/release", h.Release)
	}
}

func (h *CopyHandler) respond(c *gin.Context, status int, inst *model.BookInstance, err error, op string) {
	if err != nil {
		writeServiceError(c, err, "COPY", op)
		return
	}
	c.JSON(status, BookInstanceResponse{Data: toBookInstance(*inst, h.circulation.Today())})
}

// CreateCopy godoc
// @Summary      Add a copy of a book
// @Description  Create a physical copy. Status may be a (available, the default) or m (maintenance). Requires the can_edit permission.
// @Tags         copies
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Book ID (UUID)"
// @Param        payload  body      CopyRequest               true  "Copy to create"
// @Success      201      {object}  BookInstanceResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404      {object}  validation.ErrorResponse  "Book not found"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /books/{id}/copies [post]
func (h *CopyHandler) CreateCopy(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id", "BOOK")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	inst, err := h.circulation.CreateBookCopy(c.Request.Context(), bookID, values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "BOOK", "CREATE")
		return
	}
	h.respond(c, http.StatusCreated, inst, nil, "CREATE")
}

// ListCopies godoc
// @Summary      List copies
// @Description  List copies ten per page, soonest due first. Copies without a due date come last.
// @Tags         copies
// @Produce      json
// @Param        page     query     int     false  "Page number"  default(1) minimum(1)
// @Param        book_id  query     string  false  "Filter by book ID (UUID)"
// @Param        status   query     string  false  "Filter by status code or name"  Enums(a,m,o,r,available,maintenance,on_loan,reserved)
// @Success      200      {object}  ListBookInstancesResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid filter"
// @Failure      404      {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /copies [get]
func (h *CopyHandler) ListCopies(c *gin.Context) {
	var filter catalog.InstanceFilter

	if s := c.Query("book_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(c, http.StatusBadRequest,
				"INVALID_BOOK_ID",
				"book_id must be a valid UUID",
			)
			return
		}
		filter.BookID = &id
	}

	if s := c.Query("status"); s != "" {
		status, ok := model.ParseLoanStatus(s)
		if !ok {
			writeError(c, http.StatusBadRequest,
				"INVALID_STATUS",
				"status must be one of a, m, o, r",
			)
			return
		}
		filter.Status = &status
	}

	page, err := h.catalog.ListInstances(c.Request.Context(), filter, parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "COPY", "LIST")
		return
	}

	c.JSON(http.StatusOK, ListBookInstancesResponse{
		Data:       toBookInstances(page.Items, h.circulation.Today()),
		Pagination: toPagination(page),
	})
}

// GetCopyByID godoc
// @Summary      Get a copy by ID
// @Description  Get a copy with the renewal date proposed for it
// @Tags         copies
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /copies/{id} [get]
func (h *CopyHandler) GetCopyByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.catalog.GetInstance(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "COPY", "FETCH")
		return
	}

	today := h.circulation.Today()
	proposed := h.circulation.ProposedRenewalDate(today)

	c.JSON(http.StatusOK, BookInstanceResponse{
		Data:                toBookInstance(*inst, today),
		ProposedRenewalDate: model.DateRef(&proposed),
	})
}

// Reserve godoc
// @Summary      Reserve a copy
// @Description  Claim an available copy for the caller. Depending on the library policy the copy is lent right away or held.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      401  {object}  validation.ErrorResponse  "Login required"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409  {object}  validation.ErrorResponse  "Copy not available"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /copies/{id}/reserve [post]
func (h *CopyHandler) Reserve(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.circulation.ReserveForSelf(c.Request.Context(), id, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "RESERVE")
}

// Checkout godoc
// @Summary      Check out a held copy
// @Description  Turn a hold into a loan. Only the holder or staff may do this. Without due_back the standard loan period applies.
// @Tags         circulation
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true   "Copy ID (UUID)"
// @Param        payload  body      DueDateRequest            false  "Due date"
// @Success      200      {object}  BookInstanceResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid due date"
// @Failure      403      {object}  validation.ErrorResponse  "Held by someone else"
// @Failure      404      {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409      {object}  validation.ErrorResponse  "Copy is not held"
// @Router       /copies/{id}/checkout [post]
func (h *CopyHandler) Checkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	form, err := circulation.ParseCheckoutForm(values)
	if err != nil {
		writeServiceError(c, err, "COPY", "CHECKOUT")
		return
	}

	inst, err := h.circulation.Checkout(c.Request.Context(), id, form.DueBack, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "CHECKOUT")
}

// Lend godoc
// @Summary      Lend a copy to a reader
// @Description  Lend an available copy, or one back from maintenance, without a prior hold. Requires the can_mark_returned permission.
// @Tags         circulation
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Copy ID (UUID)"
// @Param        payload  body      LendRequest               true  "Borrower and due date"
// @Success      200      {object}  BookInstanceResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404      {object}  validation.ErrorResponse  "Copy or borrower not found"
// @Failure      409      {object}  validation.ErrorResponse  "Copy cannot be lent"
// @Router       /copies/{id}/lend [post]
func (h *CopyHandler) Lend(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	form, err := circulation.ParseLendForm(values)
	if err != nil {
		writeServiceError(c, err, "COPY", "LEND")
		return
	}

	inst, err := h.circulation.LendTo(c.Request.Context(), id, *form.BorrowerID, *form.DueBack, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "LEND")
}

// Renew godoc
// @Summary      Renew a loan
// @Description  Move the due date of a loan. The borrower or staff may renew. The date must be between today and four weeks from today.
// @Tags         circulation
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Copy ID (UUID)"
// @Param        payload  body      DueDateRequest            true  "New due date"
// @Success      200      {object}  BookInstanceResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid due date"
// @Failure      403      {object}  validation.ErrorResponse  "Not the borrower"
// @Failure      404      {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409      {object}  validation.ErrorResponse  "Copy is not on loan"
// @Router       /copies/{id}/renew [post]
func (h *CopyHandler) Renew(c *gin.Context) {
	h.renew(c, false)
}

// RenewAsLibrarian godoc
// @Summary      Renew a loan as staff
// @Description  Staff-only renewal. Requires the can_mark_returned permission.
// @Tags         circulation
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id       path      string                    true  "Copy ID (UUID)"
// @Param        payload  body      DueDateRequest            true  "New due date"
// @Success      200      {object}  BookInstanceResponse
// @Failure      400      {object}  validation.ErrorResponse  "Invalid due date"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404      {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409      {object}  validation.ErrorResponse  "Copy is not on loan"
// @Router       /copies/{id}/renew-librarian [post]
func (h *CopyHandler) RenewAsLibrarian(c *gin.Context) {
	h.renew(c, true)
}

func (h *CopyHandler) renew(c *gin.Context, asLibrarian bool) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}
	values, ok := bindValues(c)
	if !ok {
		return
	}

	form, err := circulation.ParseRenewForm(values)
	if err != nil {
		writeServiceError(c, err, "COPY", "RENEW")
		return
	}

	ctx := c.Request.Context()
	actor := auth.ActorFrom(c)

	var inst *model.BookInstance
	if asLibrarian {
		inst, err = h.circulation.RenewAsLibrarian(ctx, id, *form.DueBack, actor)
	} else {
		inst, err = h.circulation.Renew(ctx, id, *form.DueBack, actor)
	}
	h.respond(c, http.StatusOK, inst, err, "RENEW")
}

// Return godoc
// @Summary      Return a borrowed copy
// @Description  The borrower hands back their copy.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      403  {object}  validation.ErrorResponse  "Not the borrower"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409  {object}  validation.ErrorResponse  "Copy is not on loan"
// @Router       /copies/{id}/return [post]
func (h *CopyHandler) Return(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.circulation.ReturnOwn(c.Request.Context(), id, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "RETURN")
}

// MarkReturned godoc
// @Summary      Mark a copy returned
// @Description  Staff record the return of any loan or hold. Requires the can_mark_returned permission.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409  {object}  validation.ErrorResponse  "Copy is not on loan"
// @Router       /copies/{id}/mark-returned [post]
func (h *CopyHandler) MarkReturned(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.circulation.MarkReturned(c.Request.Context(), id, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "RETURN")
}

// MarkMaintenance godoc
// @Summary      Send a copy to maintenance
// @Description  Take a copy out of circulation from any state. Requires the can_mark_returned permission.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Router       /copies/{id}/maintenance [post]
func (h *CopyHandler) MarkMaintenance(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.circulation.MarkMaintenance(c.Request.Context(), id, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "MAINTAIN")
}

// Release godoc
// @Summary      Release a copy from maintenance
// @Description  Make a copy in maintenance available again. Requires the can_mark_returned permission.
// @Tags         circulation
// @Produce      json
// @Param        id   path      string  true  "Copy ID (UUID)"
// @Success      200  {object}  BookInstanceResponse
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Copy not found"
// @Failure      409  {object}  validation.ErrorResponse  "Copy is not in maintenance"
// @Router       /copies/{id}/release [post]
func (h *CopyHandler) Release(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "COPY")
	if !ok {
		return
	}

	inst, err := h.circulation.ReleaseFromMaintenance(c.Request.Context(), id, auth.ActorFrom(c))
	h.respond(c, http.StatusOK, inst, err, "RELEASE")
}
