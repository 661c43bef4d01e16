package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) UpdateSupermaster(c *gin.Context) {
	data, ok := h.parseBody(c)
	if !ok {
		return
	}

	sm, err := h.zones.UpdateSupermaster(c.Request.Context(), c.Param("ip"), data)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sm)
}

func (h *Handler) ListSupermasters(c *gin.Context) {
	sms, err := h.zones.Supermasters(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supermasters": sms,
		"count":        len(sms),
	})
}
