package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leozw/pdns-rest/internal/zones"
)

type Handler struct {
	zones  *zones.Service
	parser *zones.Parser
	logger *zap.Logger
}

func NewHandler(service *zones.Service, parser *zones.Parser, logger *zap.Logger) *Handler {
	return &Handler{
		zones:  service,
		parser: parser,
		logger: logger,
	}
}

// parseBody decodes the request body, writing the error response itself
// when the body is unusable.
func (h *Handler) parseBody(c *gin.Context) (zones.Object, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("could not read request body", zap.Error(err))
		c.String(http.StatusBadRequest, "could not read request body")
		return nil, false
	}

	data, err := h.parser.Parse(body)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}

	return data, true
}
