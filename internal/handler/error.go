package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/locallibrary/internal/apperr"
	"github.com/snnyvrz/locallibrary/internal/validation"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
		Errors:  nil,
	})
}

// writeServiceError maps a service error to a response. resource prefixes the
// codes of lookups, e.g. BOOK_NOT_FOUND; op names the failed operation in the
// code of unexpected errors, e.g. BOOK_CREATE_FAILED.
func writeServiceError(c *gin.Context, err error, resource, op string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, validation.ErrorResponse{
			Code:    "VALIDATION_FAILED",
			Message: "validation failed",
			Errors:  validation.FieldErrorsOf(err),
		})
	case errors.Is(err, apperr.ErrNotFound) && op == "LIST":
		writeError(c, http.StatusNotFound, "PAGE_NOT_FOUND", "invalid page")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(c, http.StatusNotFound, resource+"_NOT_FOUND", resourceName(resource)+" not found")
	case errors.Is(err, apperr.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", "you are not allowed to do this")
	case errors.Is(err, apperr.ErrDateInPast):
		writeError(c, http.StatusBadRequest, "DATE_IN_PAST", apperr.ErrDateInPast.Error())
	case errors.Is(err, apperr.ErrDateTooFarAhead):
		writeError(c, http.StatusBadRequest, "DATE_TOO_FAR_AHEAD", apperr.ErrDateTooFarAhead.Error())
	case errors.Is(err, apperr.ErrNotAvailable):
		writeError(c, http.StatusConflict, "NOT_AVAILABLE", "copy is not available")
	case errors.Is(err, apperr.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, apperr.ErrConflict):
		writeError(c, http.StatusConflict, "CONFLICT", "copy was changed by another request, try again")
	default:
		writeError(c, http.StatusInternalServerError, resource+"_"+op+"_FAILED", "failed to "+opVerb(op)+" "+resourceName(resource))
	}
}

var resourceNames = map[string]string{
	"BOOK":     "book",
	"AUTHOR":   "author",
	"GENRE":    "genre",
	"LANGUAGE": "language",
	"COPY":     "book copy",
	"USER":     "user",
	"STATS":    "catalog stats",
	"LOAN":     "loans",
}

func resourceName(resource string) string {
	if n, ok := resourceNames[resource]; ok {
		return n
	}
	return "resource"
}

var opVerbs = map[string]string{
	"FETCH":    "fetch",
	"LIST":     "list",
	"CREATE":   "create",
	"UPDATE":   "update",
	"DELETE":   "delete",
	"RESERVE":  "reserve",
	"CHECKOUT": "check out",
	"LEND":     "lend",
	"RENEW":    "renew",
	"RETURN":   "return",
	"MAINTAIN": "send to maintenance",
	"RELEASE":  "release",
}

func opVerb(op string) string {
	if v, ok := opVerbs[op]; ok {
		return v
	}
	return "update"
}
