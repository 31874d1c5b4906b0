// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
)

// writeDomainError maps domain errors onto HTTP statuses. Unknown slugs,
// secrets and ids are all 404; a live reservation racing another is 409; state
// and amount problems are 400. Anything else is a 500 with a generic message
// so internals never leak.
func writeDomainError(c *gin.Context, err error) {
	var limitErr *wishlist.LimitExceededError
	var minErr *wishlist.BelowMinimumError

	switch {
	case errors.Is(err, wishlist.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Not found",
		})
	case errors.Is(err, wishlist.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.As(err, &limitErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": limitErr.Error(),
			"data": gin.H{
				"price":     limitErr.Price,
				"total":     limitErr.Total,
				"remaining": limitErr.Remaining,
			},
		})
	case errors.As(err, &minErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": minErr.Error(),
			"data": gin.H{
				"min_contribution": minErr.Minimum,
			},
		})
	case errors.Is(err, wishlist.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
