// internal/domain/wishlist/errors.go
package wishlist

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Secrets double as authorization, so an unknown id and a wrong secret must be
// indistinguishable: both are ErrNotFound. There is no "forbidden" in this
// domain.
var (
	// ErrNotFound covers unknown slugs, secrets and ids alike.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the item already carries a live reservation.
	ErrConflict = errors.New("item is already reserved")

	// ErrInvalidState means the operation is not permitted for the item's
	// current state (no price set, or the gift is claimed outright).
	ErrInvalidState = errors.New("operation not permitted in current item state")
)

// LimitExceededError is returned when a contribution would push the item's
// pledged total past its price. It carries the numbers the client needs to
// render "you can contribute at most X more".
type LimitExceededError struct {
	Price     decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf(
		"contributions cannot exceed the item price (%s): %s pledged, %s remaining",
		e.Price.StringFixed(2), e.Total.StringFixed(2), e.Remaining.StringFixed(2),
	)
}

// BelowMinimumError is returned when a contribution is under the item's floor.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum contribution for this item is %s", e.Minimum.StringFixed(2))
}
