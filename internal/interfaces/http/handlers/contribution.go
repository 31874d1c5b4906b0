// internal/interfaces/http/handlers/contribution.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/contribution"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// ContributionHandler handles contribution endpoints
type ContributionHandler struct {
	contributionService *contribution.Service
	config              *config.Config
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contribution.NewService(db, publisher, cfg),
		config:              cfg,
	}
}

// Contribute handles POST /wishlists/s/:slug/items/:id/contribute. The
// returned secret is the only way to view or cancel the pledge; it is never
// shown again.
func (h *ContributionHandler) Contribute(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req contribution.ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.contributionService.Contribute(c.Param("slug"), itemID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contribution recorded successfully",
		"data":    response,
	})
}

// GetContribution handles GET /contributions/:contributor_secret
func (h *ContributionHandler) GetContribution(c *gin.Context) {
	view, err := h.contributionService.Get(c.Param("contributor_secret"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Contribution retrieved successfully",
		"data":    view,
	})
}

// CancelContribution handles DELETE /contributions/:contributor_secret
func (h *ContributionHandler) CancelContribution(c *gin.Context) {
	if err := h.contributionService.Cancel(c.Param("contributor_secret")); err != nil {
		writeDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
