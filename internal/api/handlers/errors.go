package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leozw/pdns-rest/internal/zones"
)

var badRequestErrors = []error{
	zones.ErrEmptyBody,
	zones.ErrMalformedBody,
	zones.ErrMissingType,
	zones.ErrInvalidDomainType,
	zones.ErrInvalidDomainName,
	zones.ErrMissingRecordFields,
	zones.ErrInvalidRecords,
	zones.ErrInvalidRecordField,
	zones.ErrMissingNameserver,
	zones.ErrInvalidIP,
	zones.ErrInvalidAccount,
}

// errorResponse maps a service error to the status and plain-text body sent
// back. Store failures never leak their underlying message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, zones.ErrDomainNotFound):
		return http.StatusNotFound, zones.ErrDomainNotFound.Error()
	case errors.Is(err, zones.ErrSaveFailed):
		return http.StatusInternalServerError, zones.ErrSaveFailed.Error()
	case errors.Is(err, zones.ErrRecordSaveFailed):
		return http.StatusInternalServerError, zones.ErrRecordSaveFailed.Error()
	case errors.Is(err, zones.ErrStore):
		return http.StatusInternalServerError, zones.ErrStore.Error()
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	return http.StatusInternalServerError, "internal server error"
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	c.String(status, body)
}
