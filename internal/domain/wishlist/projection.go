// internal/domain/wishlist/projection.go
package wishlist

import (
	"time"

	"github.com/shopspring/decimal"
)

// Projections are the only shapes that leave the domain. They are derived from
// the entity graph on demand, never stored. The public and manage views share
// ItemView, which deliberately reduces reservations to a boolean and
// contributions to their sum: the creator must not learn who reserved or who
// pledged how much.

// ItemView is the redacted rendering of one item.
type ItemView struct {
	ID               uint             `json:"id"`
	WishlistID       uint             `json:"wishlist_id"`
	Title            string           `json:"title"`
	Link             *string          `json:"link"`
	Price            *decimal.Decimal `json:"price"`
	MinContribution  *decimal.Decimal `json:"min_contribution"`
	ImageURL         *string          `json:"image_url"`
	SortOrder        int              `json:"sort_order"`
	IsReserved       bool             `json:"is_reserved"`
	TotalContributed decimal.Decimal  `json:"total_contributed"`
	CreatedAt        time.Time        `json:"created_at"`
}

// PublicView is what anyone holding the slug sees. It is also the exact
// payload broadcast to websocket subscribers.
type PublicView struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Occasion  *string    `json:"occasion"`
	EventDate *time.Time `json:"event_date"`
	Currency  string     `json:"currency"`
	Slug      string     `json:"slug"`
	Items     []ItemView `json:"items"`
}

// ManageView is the creator's view: public fields plus the management secret.
// Reserver and contributor identities stay redacted even here.
type ManageView struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Occasion      *string    `json:"occasion"`
	EventDate     *time.Time `json:"event_date"`
	Currency      string     `json:"currency"`
	Slug          string     `json:"slug"`
	CreatorSecret string     `json:"creator_secret"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []ItemView `json:"items"`
}

// ReservationView is the actor projection for one reservation, resolved by its
// own secret. It reveals nothing about sibling reservations or contributions.
type ReservationView struct {
	ID             uint      `json:"id"`
	WishlistItemID uint      `json:"wishlist_item_id"`
	ReserverName   string    `json:"reserver_name"`
	ReservedAt     time.Time `json:"reserved_at"`
	ItemTitle      string    `json:"item_title"`
}

// ContributionView is the actor projection for one contribution.
type ContributionView struct {
	ID              uint            `json:"id"`
	WishlistItemID  uint            `json:"wishlist_item_id"`
	ContributorName string          `json:"contributor_name"`
	Amount          decimal.Decimal `json:"amount"`
	ContributedAt   time.Time       `json:"contributed_at"`
	ItemTitle       string          `json:"item_title"`
}

// BuildItemView renders one item with reservation state reduced to a boolean
// and contributions reduced to their sum.
func BuildItemView(item *WishlistItem) ItemView {
	return ItemView{
		ID:               item.ID,
		WishlistID:       item.WishlistID,
		Title:            item.Title,
		Link:             item.Link,
		Price:            item.Price,
		MinContribution:  item.MinContribution,
		ImageURL:         item.ImageURL,
		SortOrder:        item.SortOrder,
		IsReserved:       item.IsReserved(),
		TotalContributed: item.TotalContributed(),
		CreatedAt:        item.CreatedAt,
	}
}

func buildItemViews(items []WishlistItem) []ItemView {
	views := make([]ItemView, len(items))
	for i := range items {
		views[i] = BuildItemView(&items[i])
	}
	return views
}

// BuildPublicView renders the public projection for a loaded wishlist. Pure:
// the same entity state always yields the same view.
func BuildPublicView(w *Wishlist) *PublicView {
	return &PublicView{
		ID:        w.ID,
		Title:     w.Title,
		Occasion:  w.Occasion,
		EventDate: w.EventDate,
		Currency:  w.Currency,
		Slug:      w.Slug,
		Items:     buildItemViews(w.Items),
	}
}

// BuildManageView renders the creator-management projection.
func BuildManageView(w *Wishlist) *ManageView {
	return &ManageView{
		ID:            w.ID,
		Title:         w.Title,
		Occasion:      w.Occasion,
		EventDate:     w.EventDate,
		Currency:      w.Currency,
		Slug:          w.Slug,
		CreatorSecret: w.CreatorSecret,
		CreatedAt:     w.CreatedAt,
		Items:         buildItemViews(w.Items),
	}
}

// BuildReservationView renders the actor projection for a reservation.
func BuildReservationView(r *Reservation) *ReservationView {
	view := &ReservationView{
		ID:             r.ID,
		WishlistItemID: r.WishlistItemID,
		ReserverName:   r.ReserverName,
		ReservedAt:     r.ReservedAt,
	}
	if r.Item != nil {
		view.ItemTitle = r.Item.Title
	}
	return view
}

// BuildContributionView renders the actor projection for a contribution.
func BuildContributionView(c *Contribution) *ContributionView {
	view := &ContributionView{
		ID:              c.ID,
		WishlistItemID:  c.WishlistItemID,
		ContributorName: c.ContributorName,
		Amount:          c.Amount,
		ContributedAt:   c.ContributedAt,
	}
	if c.Item != nil {
		view.ItemTitle = c.Item.Title
	}
	return view
}
