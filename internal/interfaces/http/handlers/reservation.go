// internal/interfaces/http/handlers/reservation.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/reservation"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// ReservationHandler handles reservation endpoints
type ReservationHandler struct {
	reservationService *reservation.Service
	config             *config.Config
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservation.NewService(db, publisher, cfg),
		config:             cfg,
	}
}

// Reserve handles POST /wishlists/s/:slug/items/:id/reserve. The returned
// secret is the only way to view or cancel the reservation; it is never
// shown again.
func (h *ReservationHandler) Reserve(c *gin.Context) {
	itemID, ok := parseItemID(c)
	if !ok {
		return
	}

	var req reservation.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	response, err := h.reservationService.Reserve(c.Param("slug"), itemID, &req)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item reserved successfully",
		"data":    response,
	})
}

// GetReservation handles GET /reservations/:reserver_secret
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	view, err := h.reservationService.Get(c.Param("reserver_secret"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation retrieved successfully",
		"data":    view,
	})
}

// CancelReservation handles DELETE /reservations/:reserver_secret
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	if err := h.reservationService.Cancel(c.Param("reserver_secret")); err != nil {
		writeDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
