// internal/domain/wishlist/service.go
package wishlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/config"
	"github.com/your-org/wishlist-backend/internal/realtime"
)

// Service handles wishlist and item management plus the capability lookups
// the public endpoints build on. All management operations are gated by the
// creator secret; lookup failure and "no such list" are indistinguishable.
type Service struct {
	db        *gorm.DB
	publisher realtime.Publisher
	config    *config.Config
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, publisher realtime.Publisher, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		publisher: publisher,
		config:    cfg,
	}
}

// CreateWishlistRequest represents list creation input
type CreateWishlistRequest struct {
	Title     string     `json:"title" binding:"required,max=255"`
	Occasion  *string    `json:"occasion" binding:"omitempty,max=255"`
	EventDate *time.Time `json:"event_date"`
	Currency  *string    `json:"currency" binding:"omitempty,max=8"`
}

// UpdateWishlistRequest is a partial patch: only non-nil fields are applied,
// so a field set to its zero value is never clobbered by accident.
type UpdateWishlistRequest struct {
	Title     *string    `json:"title" binding:"omitempty,max=255"`
	Occasion  *string    `json:"occasion" binding:"omitempty,max=255"`
	EventDate *time.Time `json:"event_date"`
	Currency  *string    `json:"currency" binding:"omitempty,max=8"`
}

// CreateItemRequest represents item creation input
type CreateItemRequest struct {
	Title           string           `json:"title" binding:"required,max=255"`
	Link            *string          `json:"link" binding:"omitempty,max=2048"`
	Price           *decimal.Decimal `json:"price"`
	MinContribution *decimal.Decimal `json:"min_contribution"`
	ImageURL        *string          `json:"image_url" binding:"omitempty,max=2048"`
}

// UpdateItemRequest is a partial patch over item fields. Lowering the price
// below the already-pledged total is allowed; there is no retroactive
// validation of existing contributions.
type UpdateItemRequest struct {
	Title           *string          `json:"title" binding:"omitempty,max=255"`
	Link            *string          `json:"link" binding:"omitempty,max=2048"`
	Price           *decimal.Decimal `json:"price"`
	MinContribution *decimal.Decimal `json:"min_contribution"`
	ImageURL        *string          `json:"image_url" binding:"omitempty,max=2048"`
}

// Create creates a wishlist, attaching it to a user when an identity is
// present. Slug and creator secret are generated by the entity hook.
func (s *Service) Create(userID *uint, req *CreateWishlistRequest) (*ManageView, error) {
	w := Wishlist{
		Title:     req.Title,
		Occasion:  req.Occasion,
		EventDate: req.EventDate,
		UserID:    userID,
	}
	if req.Currency != nil {
		w.Currency = normalizeCurrency(*req.Currency)
	}

	if err := s.db.Create(&w).Error; err != nil {
		return nil, fmt.Errorf("failed to create wishlist: %w", err)
	}

	return BuildManageView(&w), nil
}

// GetPublic resolves a slug to the public projection.
func (s *Service) GetPublic(slug string) (*PublicView, error) {
	w, err := s.loadBySlug(s.db, slug)
	if err != nil {
		return nil, err
	}
	return BuildPublicView(w), nil
}

// GetManage resolves a creator secret to the management projection.
func (s *Service) GetManage(creatorSecret string) (*ManageView, error) {
	w, err := s.loadByCreatorSecret(s.db, creatorSecret)
	if err != nil {
		return nil, err
	}
	return BuildManageView(w), nil
}

// ListByUser returns the management projections of every list owned by the
// user, for the authenticated dashboard.
func (s *Service) ListByUser(userID uint) ([]*ManageView, error) {
	var lists []Wishlist
	if err := s.withGraph(s.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to load wishlists: %w", err)
	}

	views := make([]*ManageView, len(lists))
	for i := range lists {
		views[i] = BuildManageView(&lists[i])
	}
	return views, nil
}

// Update applies a partial patch to list metadata.
func (s *Service) Update(creatorSecret string, req *UpdateWishlistRequest) (*ManageView, error) {
	w, err := s.loadByCreatorSecret(s.db, creatorSecret)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Occasion != nil {
		updates["occasion"] = *req.Occasion
	}
	if req.EventDate != nil {
		updates["event_date"] = *req.EventDate
	}
	if req.Currency != nil {
		updates["currency"] = normalizeCurrency(*req.Currency)
	}

	if len(updates) > 0 {
		if err := s.db.Model(w).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update wishlist: %w", err)
		}
	}

	return s.GetManage(creatorSecret)
}

// Delete removes a list and everything hanging off it. The cascade is spelled
// out child-first inside one transaction so the invariant stays visible and
// testable independent of the schema's ON DELETE behavior.
func (s *Service) Delete(creatorSecret string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var w Wishlist
		if err := tx.Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		var itemIDs []uint
		if err := tx.Model(&WishlistItem{}).Where("wishlist_id = ?", w.ID).Pluck("id", &itemIDs).Error; err != nil {
			return fmt.Errorf("failed to collect item ids: %w", err)
		}

		if len(itemIDs) > 0 {
			if err := tx.Where("wishlist_item_id IN ?", itemIDs).Delete(&Reservation{}).Error; err != nil {
				return fmt.Errorf("failed to delete reservations: %w", err)
			}
			if err := tx.Where("wishlist_item_id IN ?", itemIDs).Delete(&Contribution{}).Error; err != nil {
				return fmt.Errorf("failed to delete contributions: %w", err)
			}
			if err := tx.Where("wishlist_id = ?", w.ID).Delete(&WishlistItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete items: %w", err)
			}
		}

		if err := tx.Delete(&w).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist: %w", err)
		}
		return nil
	})
}

// AddItem appends an item to the list. Sort order is one past the current
// maximum for the list, so insertion order is always reconstructible.
func (s *Service) AddItem(creatorSecret string, req *CreateItemRequest) (*ItemView, error) {
	var item WishlistItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w Wishlist
		if err := tx.Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		var maxOrder int
		row := tx.Model(&WishlistItem{}).Where("wishlist_id = ?", w.ID).Select("COALESCE(MAX(sort_order), 0)").Row()
		if err := row.Scan(&maxOrder); err != nil {
			return fmt.Errorf("failed to determine sort order: %w", err)
		}

		item = WishlistItem{
			WishlistID:      w.ID,
			Title:           req.Title,
			Link:            req.Link,
			Price:           req.Price,
			MinContribution: req.MinContribution,
			ImageURL:        req.ImageURL,
			SortOrder:       maxOrder + 1,
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.BroadcastBySecret(creatorSecret)
	view := BuildItemView(&item)
	return &view, nil
}

// UpdateItem applies a partial patch to an item owned by the secret's list.
// An item id from another list resolves as not found, never as forbidden.
func (s *Service) UpdateItem(creatorSecret string, itemID uint, req *UpdateItemRequest) (*ItemView, error) {
	var item WishlistItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w Wishlist
		if err := tx.Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		if err := tx.Where("id = ? AND wishlist_id = ?", itemID, w.ID).First(&item).Error; err != nil {
			return translateNotFound(err)
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Link != nil {
			updates["link"] = *req.Link
		}
		if req.Price != nil {
			updates["price"] = *req.Price
		}
		if req.MinContribution != nil {
			updates["min_contribution"] = *req.MinContribution
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}

		if len(updates) > 0 {
			if err := tx.Model(&item).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update item: %w", err)
			}
		}

		return tx.Preload("Reservation").Preload("Contributions").First(&item, item.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.BroadcastBySecret(creatorSecret)
	view := BuildItemView(&item)
	return &view, nil
}

// DeleteItem removes one item with its reservation and contributions.
func (s *Service) DeleteItem(creatorSecret string, itemID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var w Wishlist
		if err := tx.Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
			return translateNotFound(err)
		}

		var item WishlistItem
		if err := tx.Where("id = ? AND wishlist_id = ?", itemID, w.ID).First(&item).Error; err != nil {
			return translateNotFound(err)
		}

		if err := tx.Where("wishlist_item_id = ?", item.ID).Delete(&Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to delete reservation: %w", err)
		}
		if err := tx.Where("wishlist_item_id = ?", item.ID).Delete(&Contribution{}).Error; err != nil {
			return fmt.Errorf("failed to delete contributions: %w", err)
		}
		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.BroadcastBySecret(creatorSecret)
	return nil
}

// BroadcastUpdate pushes the current public projection to every subscriber of
// the slug. Best-effort: failures are logged and never affect the mutation
// that triggered the push.
func (s *Service) BroadcastUpdate(slug string) {
	if s.publisher == nil {
		return
	}

	view, err := s.GetPublic(slug)
	if err != nil {
		logrus.WithField("slug", slug).WithError(err).Warn("skipping broadcast: failed to rebuild public view")
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		logrus.WithField("slug", slug).WithError(err).Warn("skipping broadcast: failed to serialize public view")
		return
	}

	s.publisher.Publish(slug, payload)
}

// BroadcastBySecret resolves the slug for a creator secret and broadcasts.
func (s *Service) BroadcastBySecret(creatorSecret string) {
	var w Wishlist
	if err := s.db.Select("slug").Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
		return
	}
	s.BroadcastUpdate(w.Slug)
}

// SlugExists reports whether a slug resolves to a live list.
func (s *Service) SlugExists(slug string) bool {
	var count int64
	s.db.Model(&Wishlist{}).Where("slug = ?", slug).Count(&count)
	return count > 0
}

// withGraph preloads the full projection graph: items in insertion order with
// their reservation and contributions.
func (s *Service) withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.sort_order ASC")
		}).
		Preload("Items.Reservation").
		Preload("Items.Contributions")
}

func (s *Service) loadBySlug(db *gorm.DB, slug string) (*Wishlist, error) {
	var w Wishlist
	if err := s.withGraph(db).Where("slug = ?", slug).First(&w).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &w, nil
}

func (s *Service) loadByCreatorSecret(db *gorm.DB, creatorSecret string) (*Wishlist, error) {
	var w Wishlist
	if err := s.withGraph(db).Where("creator_secret = ?", creatorSecret).First(&w).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &w, nil
}

// translateNotFound collapses record-not-found into the domain's uniform
// ErrNotFound so callers cannot tell a wrong secret from a deleted entity.
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// normalizeCurrency uppercases and clips the code to 3 letters, defaulting
// to RUB when empty.
func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "RUB"
	}
	if len(code) > 3 {
		code = code[:3]
	}
	return code
}
