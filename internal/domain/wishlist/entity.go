// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/pkg/token"
)

// Wishlist is a shareable gift list. The slug is the public capability
// (read + reserve + contribute), the creator secret is the management
// capability. Both are generated once at creation and never rotated.
type Wishlist struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        *uint      `gorm:"index" json:"user_id,omitempty"`
	Title         string     `gorm:"not null;size:255" json:"title"`
	Occasion      *string    `gorm:"size:255" json:"occasion"`
	EventDate     *time.Time `json:"event_date"`
	Currency      string     `gorm:"size:3;not null;default:'RUB'" json:"currency"`
	Slug          string     `gorm:"uniqueIndex;not null;size:64" json:"slug"`
	CreatorSecret string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	CreatedAt     time.Time  `json:"created_at"`

	Items []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// WishlistItem is one desired gift. Price and minimum contribution are exact
// decimals; a nil price means "no price set" and blocks contributions.
type WishlistItem struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	WishlistID      uint             `gorm:"not null;index" json:"wishlist_id"`
	Title           string           `gorm:"not null;size:255" json:"title"`
	Link            *string          `gorm:"size:2048" json:"link"`
	Price           *decimal.Decimal `gorm:"type:numeric(18,2)" json:"price"`
	MinContribution *decimal.Decimal `gorm:"type:numeric(18,2)" json:"min_contribution"`
	ImageURL        *string          `gorm:"size:2048" json:"image_url"`
	SortOrder       int              `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt       time.Time        `json:"created_at"`

	Reservation   *Reservation   `gorm:"foreignKey:WishlistItemID;constraint:OnDelete:CASCADE" json:"-"`
	Contributions []Contribution `gorm:"foreignKey:WishlistItemID;constraint:OnDelete:CASCADE" json:"-"`
}

// Reservation claims a whole item. The unique index on WishlistItemID is the
// arbiter under concurrent reserve attempts; a duplicated-key error at commit
// means somebody else won.
type Reservation struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WishlistItemID uint      `gorm:"uniqueIndex;not null" json:"wishlist_item_id"`
	ReserverName   string    `gorm:"not null;size:255" json:"reserver_name"`
	ReserverSecret string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ReservedAt     time.Time `gorm:"autoCreateTime" json:"reserved_at"`

	Item *WishlistItem `gorm:"foreignKey:WishlistItemID" json:"-"`
}

// Contribution is an informational pledge toward a priced item. The creator
// only ever sees the per-item sum, never names or individual amounts.
type Contribution struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	WishlistItemID    uint            `gorm:"not null;index" json:"wishlist_item_id"`
	ContributorName   string          `gorm:"not null;size:255" json:"contributor_name"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	ContributorSecret string          `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ContributedAt     time.Time       `gorm:"autoCreateTime" json:"contributed_at"`

	Item *WishlistItem `gorm:"foreignKey:WishlistItemID" json:"-"`
}

// TableName overrides the table name
func (Wishlist) TableName() string {
	return "wishlists"
}

// TableName overrides the table name
func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// TableName overrides the table name
func (Reservation) TableName() string {
	return "reservations"
}

// TableName overrides the table name
func (Contribution) TableName() string {
	return "contributions"
}

// BeforeCreate assigns the public slug and the creator secret exactly once.
func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.Slug == "" {
		w.Slug = token.MustNew()
	}
	if w.CreatorSecret == "" {
		w.CreatorSecret = token.MustNew()
	}
	if w.Currency == "" {
		w.Currency = "RUB"
	}
	return nil
}

// BeforeCreate assigns the reserver secret.
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ReserverSecret == "" {
		r.ReserverSecret = token.MustNew()
	}
	return nil
}

// BeforeCreate assigns the contributor secret.
func (c *Contribution) BeforeCreate(tx *gorm.DB) error {
	if c.ContributorSecret == "" {
		c.ContributorSecret = token.MustNew()
	}
	return nil
}

// TotalContributed sums the live contributions on the item. Exact decimal
// arithmetic; zero when nothing has been pledged.
func (i *WishlistItem) TotalContributed() decimal.Decimal {
	total := decimal.Zero
	for _, c := range i.Contributions {
		total = total.Add(c.Amount)
	}
	return total
}

// IsReserved reports whether a live reservation exists for the item.
func (i *WishlistItem) IsReserved() bool {
	return i.Reservation != nil
}
