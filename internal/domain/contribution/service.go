// internal/domain/contribution/service.go
package contribution

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// Service handles contributions ("chip in") toward priced items. Contributing
// is open to anyone holding the public slug; viewing and cancelling require
// the contributor secret handed out at creation.
type Service struct {
	db              *gorm.DB
	config          *config.Config
	wishlistService *wishlist.Service
}

// NewService creates a new contribution service
func NewService(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		wishlistService: wishlist.NewService(db, publisher, cfg),
	}
}

// ContributeRequest represents the public contribute input
type ContributeRequest struct {
	ContributorName string          `json:"contributor_name" binding:"required,max=255"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
}

// ContributeResponse carries the secret the contributor needs to manage the
// pledge later. It is shown exactly once.
type ContributeResponse struct {
	ContributorSecret string `json:"contributor_secret"`
}

// Contribute pledges an amount toward an item. Checks run in a fixed order
// against one snapshot: resolution, claimed state, priced state, price
// headroom, minimum floor. The item row is locked during check-then-insert so
// concurrent pledges cannot push the sum past the price.
func (s *Service) Contribute(slug string, itemID uint, req *ContributeRequest) (*ContributeResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: contribution amount must be positive", wishlist.ErrInvalidState)
	}

	var contrib wishlist.Contribution

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w wishlist.Wishlist
		if err := tx.Where("slug = ?", slug).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		var item wishlist.WishlistItem
		if err := lockForUpdate(tx).Where("id = ? AND wishlist_id = ?", itemID, w.ID).First(&item).Error; err != nil {
			return translateNotFound(err)
		}

		var reserved int64
		if err := tx.Model(&wishlist.Reservation{}).Where("wishlist_item_id = ?", item.ID).Count(&reserved).Error; err != nil {
			return fmt.Errorf("failed to check reservation state: %w", err)
		}
		if reserved > 0 {
			return fmt.Errorf("%w: the gift is already fully reserved", wishlist.ErrInvalidState)
		}

		if item.Price == nil || item.Price.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: the item has no price to fund", wishlist.ErrInvalidState)
		}
		price := *item.Price

		total, err := s.pledgedTotal(tx, item.ID)
		if err != nil {
			return err
		}
		if total.Add(req.Amount).GreaterThan(price) {
			return &wishlist.LimitExceededError{
				Price:     price,
				Total:     total,
				Remaining: price.Sub(total),
			}
		}

		if item.MinContribution != nil && item.MinContribution.GreaterThan(decimal.Zero) &&
			req.Amount.LessThan(*item.MinContribution) {
			return &wishlist.BelowMinimumError{Minimum: *item.MinContribution}
		}

		contrib = wishlist.Contribution{
			WishlistItemID:  item.ID,
			ContributorName: req.ContributorName,
			Amount:          req.Amount,
		}
		if err := tx.Create(&contrib).Error; err != nil {
			return fmt.Errorf("failed to create contribution: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wishlistService.BroadcastUpdate(slug)

	return &ContributeResponse{ContributorSecret: contrib.ContributorSecret}, nil
}

// Get resolves a contribution by its secret into the actor projection.
func (s *Service) Get(contributorSecret string) (*wishlist.ContributionView, error) {
	var contrib wishlist.Contribution
	if err := s.db.Preload("Item").Where("contributor_secret = ?", contributorSecret).First(&contrib).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return wishlist.BuildContributionView(&contrib), nil
}

// Cancel deletes the contribution resolved by its secret and broadcasts the
// lowered total. A second cancel finds nothing and reports not found.
func (s *Service) Cancel(contributorSecret string) error {
	var slug string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var contrib wishlist.Contribution
		if err := tx.Where("contributor_secret = ?", contributorSecret).First(&contrib).Error; err != nil {
			return translateNotFound(err)
		}

		var w wishlist.Wishlist
		if err := tx.
			Joins("JOIN wishlist_items ON wishlist_items.wishlist_id = wishlists.id").
			Where("wishlist_items.id = ?", contrib.WishlistItemID).
			First(&w).Error; err != nil {
			return fmt.Errorf("failed to resolve owning wishlist: %w", err)
		}
		slug = w.Slug

		if err := tx.Delete(&contrib).Error; err != nil {
			return fmt.Errorf("failed to delete contribution: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.wishlistService.BroadcastUpdate(slug)
	return nil
}

func (s *Service) pledgedTotal(tx *gorm.DB, itemID uint) (decimal.Decimal, error) {
	var contribs []wishlist.Contribution
	if err := tx.Where("wishlist_item_id = ?", itemID).Find(&contribs).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to load contributions: %w", err)
	}
	total := decimal.Zero
	for _, c := range contribs {
		total = total.Add(c.Amount)
	}
	return total, nil
}

// lockForUpdate takes a row lock where the dialect supports it. SQLite has a
// single writer, so the transaction alone is enough there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wishlist.ErrNotFound
	}
	return err
}
