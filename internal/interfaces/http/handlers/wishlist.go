// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
	"github.com/your-org/wishlist-backend/internal/interfaces/http/middleware"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// WishlistHandler handles wishlist and item endpoints. Management routes are
// keyed by the creator secret in the path; the public route by the slug.
type WishlistHandler struct {
	wishlistService *wishlist.Service
	config          *config.Config
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlist.NewService(db, publisher, cfg),
		config:          cfg,
	}
}

// CreateWishlist handles POST /wishlists. Works without authentication; a
// valid token attaches the list to the account.
func (h *WishlistHandler) CreateWishlist(c *gin.Context) {
	var req wishlist.CreateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var userID *uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		userID = &id
	}

	view, err := h.wishlistService.Create(userID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist created successfully",
		"data":    view,
	})
}

// GetMyWishlists handles GET /wishlists/mine (JWT required)
func (h *WishlistHandler) GetMyWishlists(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	views, err := h.wishlistService.ListByUser(userID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlists retrieved successfully",
		"data":    views,
	})
}

// GetPublicWishlist handles GET /wishlists/s/:slug
func (h *WishlistHandler) GetPublicWishlist(c *gin.Context) {
	view, err := h.wishlistService.GetPublic(c.Param("slug"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    view,
	})
}

// GetManagedWishlist handles GET /wishlists/m/:creator_secret
func (h *WishlistHandler) GetManagedWishlist(c *gin.Context) {
	view, err := h.wishlistService.GetManage(c.Param("creator_secret"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data":    view,
	})
}

// UpdateWishlist handles PATCH /wishlists/m/:creator_secret
func (h *WishlistHandler) UpdateWishlist(c *gin.Context) {
	var req wishlist.UpdateWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.wishlistService.Update(c.Param("creator_secret"), &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist updated successfully",
		"data":    view,
	})
}

// DeleteWishlist handles DELETE /wishlists/m/:creator_secret
func (h *WishlistHandler) DeleteWishlist(c *gin.Context) {
	if err := h.wishlistService.Delete(c.Param("creator_secret")); err != nil {
		writeDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddItem handles POST /wishlists/m/:creator_secret/items
func (h *WishlistHandler) AddItem(c *gin.Context) {
	var req wishlist.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.wishlistService.AddItem(c.Param("creator_secret"), &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added successfully",
		"data":    view,
	})
}

// UpdateItem handles PATCH /wishlists/m/:creator_secret/items/:id
func (h *WishlistHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req wishlist.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.wishlistService.UpdateItem(c.Param("creator_secret"), itemID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item updated successfully",
		"data":    view,
	})
}

// DeleteItem handles DELETE /wishlists/m/:creator_secret/items/:id
func (h *WishlistHandler) DeleteItem(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	if err := h.wishlistService.DeleteItem(c.Param("creator_secret"), itemID); err != nil {
		writeDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseItemID reads the :id path parameter, writing the 400 itself on failure.
func parseItemID(c *gin.Context) (uint, bool) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return 0, false
	}
	return uint(itemID), true
}
