package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UpdateDomain handles PUT/POST /api/domain/:domain. The body of a
// successful response is the domain id.
func (h *Handler) UpdateDomain(c *gin.Context) {
	data, ok := h.parseBody(c)
	if !ok {
		return
	}

	domain, err := h.zones.UpdateDomain(c.Request.Context(), c.Param("domain"), data)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.String(http.StatusOK, strconv.FormatInt(domain.ID, 10))
}

func (h *Handler) GetDomain(c *gin.Context) {
	domain, err := h.zones.Domain(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, domain)
}
