package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/auth"
	"github.com/snnyvrz/locallibrary/internal/catalog"
)

// TaxonomyHandler serves genres and languages.
type TaxonomyHandler struct {
	catalog *catalog.Service
}

func NewTaxonomyHandler(catalog *catalog.Service) *TaxonomyHandler {
	return &TaxonomyHandler{catalog: catalog}
}

func (h *TaxonomyHandler) RegisterRoutes(r *gin.RouterGroup) {
	genres := r.Group("/genres")
	{
		genres.GET("", h.ListGenres)
		genres.POST("", h.CreateGenre)
	}

	languages := r.Group("/languages")
	{
		languages.GET("", h.ListLanguages)
		languages.POST("", h.CreateLanguage)
		languages.DELETE("/:id", h.DeleteLanguage)
	}
}

// ListGenres godoc
// @Summary      List genres
// @Tags         genres
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1) minimum(1)
// @Success      200   {object}  ListGenresResponse
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /genres [get]
func (h *TaxonomyHandler) ListGenres(c *gin.Context) {
	page, err := h.catalog.ListGenres(c.Request.Context(), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "GENRE", "LIST")
		return
	}

	data := make([]Genre, 0, len(page.Items))
	for _, g := range page.Items {
		data = append(data, toGenre(g))
	}

	c.JSON(http.StatusOK, ListGenresResponse{Data: data, Pagination: toPagination(page)})
}

// CreateGenre godoc
// @Summary      Create a genre
// @Description  Requires the can_edit permission.
// @Tags         genres
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        payload  body      NameRequest               true  "Genre to create"
// @Success      201      {object}  GenreResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /genres [post]
func (h *TaxonomyHandler) CreateGenre(c *gin.Context) {
	values, ok := bindValues(c)
	if !ok {
		return
	}

	genre, err := h.catalog.CreateGenre(c.Request.Context(), values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "GENRE", "CREATE")
		return
	}

	c.JSON(http.StatusCreated, GenreResponse{Data: toGenre(*genre)})
}

// ListLanguages godoc
// @Summary      List languages
// @Tags         languages
// @Produce      json
// @Param        page  query     int  false  "Page number"  default(1) minimum(1)
// @Success      200   {object}  ListLanguagesResponse
// @Failure      404   {object}  validation.ErrorResponse  "Page out of range"
// @Failure      500   {object}  validation.ErrorResponse  "Internal server error"
// @Router       /languages [get]
func (h *TaxonomyHandler) ListLanguages(c *gin.Context) {
	page, err := h.catalog.ListLanguages(c.Request.Context(), parseIntQuery(c, "page", 1))
	if err != nil {
		writeServiceError(c, err, "LANGUAGE", "LIST")
		return
	}

	data := make([]Language, 0, len(page.Items))
	for _, l := range page.Items {
		data = append(data, toLanguage(l))
	}

	c.JSON(http.StatusOK, ListLanguagesResponse{Data: data, Pagination: toPagination(page)})
}

// CreateLanguage godoc
// @Summary      Create a language
// @Description  Language names are unique. Requires the can_edit permission.
// @Tags         languages
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        payload  body      NameRequest               true  "Language to create"
// @Success      201      {object}  LanguageResponse
// @Failure      400      {object}  validation.ErrorResponse  "Validation error or duplicate name"
// @Failure      403      {object}  validation.ErrorResponse  "Missing permission"
// @Failure      500      {object}  validation.ErrorResponse  "Internal server error"
// @Router       /languages [post]
func (h *TaxonomyHandler) CreateLanguage(c *gin.Context) {
	values, ok := bindValues(c)
	if !ok {
		return
	}

	lang, err := h.catalog.CreateLanguage(c.Request.Context(), values, auth.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err, "LANGUAGE", "CREATE")
		return
	}

	c.JSON(http.StatusCreated, LanguageResponse{Data: toLanguage(*lang)})
}

// DeleteLanguage godoc
// @Summary      Delete a language
// @Description  Books in this language keep no language. Requires the can_edit permission.
// @Tags         languages
// @Produce      json
// @Param        id   path      string  true  "Language ID (UUID)"
// @Success      204  {string}  string  "No content"
// @Failure      400  {object}  validation.ErrorResponse  "Invalid ID"
// @Failure      403  {object}  validation.ErrorResponse  "Missing permission"
// @Failure      404  {object}  validation.ErrorResponse  "Language not found"
// @Failure      500  {object}  validation.ErrorResponse  "Internal server error"
// @Router       /languages/{id} [delete]
func (h *TaxonomyHandler) DeleteLanguage(c *gin.Context) {
	langID, ok := parseIDParam(c, "id", "LANGUAGE")
	if !ok {
		return
	}

	if err := h.catalog.DeleteLanguage(c.Request.Context(), langID, auth.ActorFrom(c)); err != nil {
		writeServiceError(c, err, "LANGUAGE", "DELETE")
		return
	}

	c.Status(http.StatusNoContent)
}
