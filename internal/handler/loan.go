package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
	"github.com/snnyvrz/locallibrary/internal/circulation"
)

type LoanHandler struct {
	catalog     *catalog.Service
	circulation *circulation.Service
}

func NewLoanHandler(catalog *catalog.Service, circ *circulation.Service) *LoanHandler {
	return &LoanHandler{catalog: catalog, circulation: circ}
}

func (h *LoanHandler) RegisterRoutes(r *gin.RouterGroup) {
	loans := r.Group("/loans", auth.RequireLogin())
	{
		loans.GET("/mine", h.ListMine)
		loans.GET("", h.ListAll)
	}
}

// ListMine godoc
// @Summary      List my loans
// @Description  Copies the caller has on loan or on hold, soonest due first
// @Tags         loans
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1) minimum(1)
// @Success      200   {object}  ListBookInstancesResponse
// @Failure      401   {object}  validation.ErrorResponse  "Login required"
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /loans/mine [get]
func (h *LoanHandler) ListMine(c *gin.Context) {
	page, err := h.catalog.ListMyLoans(c.Request.Context(), auth.ActorFrom(c), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "LOAN", "LIST")
		return
	}

	c.JSON(http.StatusOK, ListBookInstancesResponse{
		Data:       toBookInstances(page.Items, h.circulation.Today()),
		Pagination: toPagination(page),
	})
}

// ListAll godoc
// @Summary      List all active loans
// @Description  Every borrowed copy ordered by book title. Requires the can_mark_returned and can_edit permissions.
// @Tags         loans
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1) minimum(1)
// @Success      200   {object}  ListBookInstancesResponse
// @Failure      401   {object}  validation.ErrorResponse  "Login required"
// @Failure      403   {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /loans [get]
func (h *LoanHandler) ListAll(c *gin.Context) {
	page, err := h.catalog.ListActiveStaffLoans(c.Request.Context(), auth.ActorFrom(c), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "LOAN", "LIST")
		return
	}

	c.JSON(http.StatusOK, ListBookInstancesResponse{
		Data:       toBookInstances(page.Items, h.circulation.Today()),
		Pagination: toPagination(page),
	})
}
