// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/pkg/productmeta"
)

// ProductHandler handles the product metadata fetch endpoint
type ProductHandler struct {
	fetcher *productmeta.Fetcher
	config  *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(cfg *config.Config) *ProductHandler {
	return &ProductHandler{
		fetcher: productmeta.NewFetcher(cfg),
		config:  cfg,
	}
}

// FetchMetadata handles POST /products/fetch. Best-effort: a page that cannot
// be fetched or parsed yields an empty result, not an error, so clients can
// always fall back to manual entry.
func (h *ProductHandler) FetchMetadata(c *gin.Context) {
	var req struct {
		URL string `json:"url" binding:"required,max=2048"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.fetcher.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		result = &productmeta.Result{}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Metadata fetched",
		"data":    result,
	})
}
