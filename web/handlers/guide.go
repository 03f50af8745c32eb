package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"corpus-prep/web/format"
)

// GuideHandler serves the analyst guide, rendered once at startup.
type GuideHandler struct {
	page []byte
}

func NewGuideHandler(markdown string) *GuideHandler {
	return &GuideHandler{page: []byte(format.Page("corpus-prep", format.ToHTML(markdown)))}
}

// Index handles GET /.
func (h *GuideHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}
