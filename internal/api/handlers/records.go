package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leozw/pdns-rest/internal/zonefile"
)

// UpdateRecords handles PUT/POST /api/record/:domain, replacing the whole
// record set of the domain.
func (h *Handler) UpdateRecords(c *gin.Context) {
	data, ok := h.parseBody(c)
	if !ok {
		return
	}

	if _, err := h.zones.UpdateRecords(c.Request.Context(), c.Param("domain"), data); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *Handler) ListRecords(c *gin.Context) {
	_, records, err := h.zones.Records(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// ExportZone renders the domain's records as a zone file.
func (h *Handler) ExportZone(c *gin.Context) {
	domain, records, err := h.zones.Records(c.Request.Context(), c.Param("domain"))
	if err != nil {
		h.fail(c, err)
		return
	}

	text, skipped := zonefile.Render(domain, records)
	for _, s := range skipped {
		h.logger.Warn("record left out of zone export",
			zap.String("domain", domain.Name),
			zap.Int64("record_id", s.Record.ID),
			zap.String("type", s.Record.Type),
			zap.Error(s.Err),
		)
	}

	c.String(http.StatusOK, text)
}
