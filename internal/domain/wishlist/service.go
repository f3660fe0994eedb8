// internal/domain/wishlist/service.go
package wishlist

import (
	"errors"
	"fmt"

	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEntryNotFound = errors.New("wishlist item not found")

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	resolver    *itemref.Resolver
	cartService *cart.Service
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cartService *cart.Service) *Service {
	return &Service{
		db:          db,
		resolver:    itemref.NewResolver(db),
		cartService: cartService,
	}
}

// Toggle flips membership of an item in the user's wishlist
func (s *Service) Toggle(userID uint, model string, objectID uint) (*ToggleResult, error) {
	ref, err := itemref.NewRef(model, objectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolver.Resolve(ref); err != nil {
		return nil, err
	}

	result := &ToggleResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		deleted := tx.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, ref.Kind, ref.ID).
			Delete(&WishlistEntry{})
		if deleted.Error != nil {
			return fmt.Errorf("failed to remove wishlist item: %w", deleted.Error)
		}

		if deleted.RowsAffected == 0 {
			entry := WishlistEntry{UserID: userID, Item: ref}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to add wishlist item: %w", err)
			}
			result.Added = true
		}

		return tx.Model(&WishlistEntry{}).Where("user_id = ?", userID).Count(&result.Count).Error
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Count returns the number of wishlisted items
func (s *Service) Count(userID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&WishlistEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}
	return count, nil
}

// List returns the wishlist, most recently added first
func (s *Service) List(userID uint) ([]EntryView, error) {
	var entries []WishlistEntry
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist: %w", err)
	}

	refs := make([]itemref.Ref, len(entries))
	for i, e := range entries {
		refs[i] = e.Item
	}
	items, err := s.resolver.ResolveMany(refs)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		view := EntryView{ID: e.ID, Item: e.Item, AddedAt: e.CreatedAt, Price: decimal.Zero}
		if item, ok := items[e.Item]; ok {
			view.Name = item.Name
			view.Image = item.Image
			view.Price = item.Price
		} else {
			view.Missing = true
		}
		views = append(views, view)
	}

	return views, nil
}

// Contains reports whether ref is on the user's wishlist
func (s *Service) Contains(userID uint, ref itemref.Ref) (bool, error) {
	var count int64
	err := s.db.Model(&WishlistEntry{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, ref.Kind, ref.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist item: %w", err)
	}
	return count > 0, nil
}

// MoveToCart adds a wishlisted item to the user's cart and drops it from
// the wishlist. Both happen or neither does.
func (s *Service) MoveToCart(userID, entryID uint) (*cart.LineResult, error) {
	var line *cart.LineResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry WishlistEntry
		if err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("failed to retrieve wishlist item: %w", err)
		}

		var err error
		line, err = s.cartService.AddItemTx(tx, cart.Scope{UserID: &userID}, string(entry.Item.Kind), entry.Item.ID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&WishlistEntry{}, entry.ID).Error; err != nil {
			return fmt.Errorf("failed to remove wishlist item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}
