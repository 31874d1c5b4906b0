// internal/domain/reservation/service.go
package reservation

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// Service handles gift reservations. Reserving is open to anyone holding the
// public slug; viewing and cancelling require the reserver secret handed out
// at creation.
type Service struct {
	db              *gorm.DB
	config          *config.Config
	wishlistService *wishlist.Service
}

// NewService creates a new reservation service
func NewService(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		wishlistService: wishlist.NewService(db, publisher, cfg),
	}
}

// ReserveRequest represents the public reserve input
type ReserveRequest struct {
	ReserverName string `json:"reserver_name" binding:"required,max=255"`
}

// ReserveResponse carries the secret the reserver needs to manage the
// reservation later. It is shown exactly once.
type ReserveResponse struct {
	ReserverSecret string `json:"reserver_secret"`
}

// Reserve claims an item outright. At most one live reservation may exist per
// item: the early check gives a friendly error, the unique index on
// wishlist_item_id decides races at commit time. An item with partial
// contributions remains reservable; that permissive behavior is intentional.
func (s *Service) Reserve(slug string, itemID uint, req *ReserveRequest) (*ReserveResponse, error) {
	var res wishlist.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w wishlist.Wishlist
		if err := tx.Where("slug = ?", slug).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		var item wishlist.WishlistItem
		if err := tx.Where("id = ? AND wishlist_id = ?", itemID, w.ID).First(&item).Error; err != nil {
			return translateNotFound(err)
		}

		var existing int64
		if err := tx.Model(&wishlist.Reservation{}).Where("wishlist_item_id = ?", item.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing reservation: %w", err)
		}
		if existing > 0 {
			return wishlist.ErrConflict
		}

		res = wishlist.Reservation{
			WishlistItemID: item.ID,
			ReserverName:   req.ReserverName,
		}
		if err := tx.Create(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return wishlist.ErrConflict
			}
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wishlistService.BroadcastUpdate(slug)

	return &ReserveResponse{ReserverSecret: res.ReserverSecret}, nil
}

// Get resolves a reservation by its secret into the actor projection.
func (s *Service) Get(reserverSecret string) (*wishlist.ReservationView, error) {
	var res wishlist.Reservation
	if err := s.db.Preload("Item").Where("reserver_secret = ?", reserverSecret).First(&res).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return wishlist.BuildReservationView(&res), nil
}

// Cancel deletes the reservation resolved by its secret and broadcasts the
// freed item. A second cancel finds nothing and reports not found.
func (s *Service) Cancel(reserverSecret string) error {
	var slug string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var res wishlist.Reservation
		if err := tx.Where("reserver_secret = ?", reserverSecret).First(&res).Error; err != nil {
			return translateNotFound(err)
		}

		var w wishlist.Wishlist
		if err := tx.
			Joins("JOIN wishlist_items ON wishlist_items.wishlist_id = wishlists.id").
			Where("wishlist_items.id = ?", res.WishlistItemID).
			First(&w).Error; err != nil {
			return fmt.Errorf("failed to resolve owning wishlist: %w", err)
		}
		slug = w.Slug

		if err := tx.Delete(&res).Error; err != nil {
			return fmt.Errorf("failed to delete reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.wishlistService.BroadcastUpdate(slug)
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wishlist.ErrNotFound
	}
	return err
}
