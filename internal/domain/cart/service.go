// internal/domain/cart/service.go
package cart

import (
	"errors"
	"fmt"

	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoSession    = errors.New("session token required for guest cart")
	ErrLineNotFound = errors.New("cart item not found")
	ErrNoCart       = errors.New("you have no active cart")
	ErrEmptyCart    = errors.New("your cart is empty")
)

// Service handles cart business logic
type Service struct {
	db       *gorm.DB
	resolver *itemref.Resolver
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:       db,
		resolver: itemref.NewResolver(db),
		logger:   logger,
	}
}

// PricedLine is an active line together with its resolved item. Item is
// nil when the referenced pet or product no longer exists.
type PricedLine struct {
	Line CartLine
	Item *itemref.Item
}

// Subtotal is the live unit price times quantity, zero for stale lines
func (p PricedLine) Subtotal() decimal.Decimal {
	if p.Item == nil {
		return decimal.Zero
	}
	return p.Item.Price.Mul(decimal.NewFromInt(int64(p.Line.Quantity)))
}

// View flattens the line for display
func (p PricedLine) View() LineView {
	lv := LineView{
		ID:        p.Line.ID,
		Item:      p.Line.Item,
		Quantity:  p.Line.Quantity,
		Subtotal:  p.Subtotal(),
		UnitPrice: decimal.Zero,
		Missing:   p.Item == nil,
	}
	if p.Item != nil {
		lv.Name = p.Item.Name
		lv.Image = p.Item.Image
		lv.UnitPrice = p.Item.Price
	}
	return lv
}

// owner is the resolved ownership scope used to filter cart_lines
type owner struct {
	userID *uint
	cartID *uint
}

func (o owner) lines(tx *gorm.DB) *gorm.DB {
	if o.userID != nil {
		return tx.Model(&CartLine{}).Where("user_id = ?", *o.userID)
	}
	return tx.Model(&CartLine{}).Where("cart_id = ? AND user_id IS NULL", *o.cartID)
}

// ResolveCart fetches or lazily creates the cart for the request scope
func (s *Service) ResolveCart(scope Scope) (*Cart, error) {
	return s.resolveCart(s.db, scope)
}

func (s *Service) resolveCart(tx *gorm.DB, scope Scope) (*Cart, error) {
	if scope.Authenticated() {
		cart, err := s.findOrCreateCart(tx, tx.Where("user_id = ?", *scope.UserID), Cart{UserID: scope.UserID})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve user cart: %w", err)
		}
		return cart, nil
	}

	if scope.SessionToken == "" {
		return nil, ErrNoSession
	}

	token := scope.SessionToken
	cart, err := s.findOrCreateCart(tx, tx.Where("session_token = ? AND user_id IS NULL", token), Cart{SessionToken: &token})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve guest cart: %w", err)
	}
	return cart, nil
}

// findOrCreateCart inserts fresh when query matches nothing. Losing the
// insert to a concurrent request on the same owner reuses the winner's row.
func (s *Service) findOrCreateCart(tx *gorm.DB, query *gorm.DB, fresh Cart) (*Cart, error) {
	var cart Cart
	err := query.Session(&gorm.Session{}).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return &fresh, nil
	}

	if err := query.Session(&gorm.Session{}).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// existingOwner resolves the scope without creating anything. ok is false
// when a guest has no cart yet.
func (s *Service) existingOwner(tx *gorm.DB, scope Scope) (owner, bool, error) {
	if scope.Authenticated() {
		return owner{userID: scope.UserID}, true, nil
	}
	if scope.SessionToken == "" {
		return owner{}, false, nil
	}

	var cart Cart
	err := tx.Where("session_token = ? AND user_id IS NULL", scope.SessionToken).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return owner{}, false, nil
	}
	if err != nil {
		return owner{}, false, fmt.Errorf("failed to load guest cart: %w", err)
	}

	return owner{cartID: &cart.ID}, true, nil
}

// AddItem adds one unit of a pet or product to the scope's cart. A line
// that was removed earlier restarts at quantity 1.
func (s *Service) AddItem(scope Scope, model string, objectID uint) (*LineResult, error) {
	var result *LineResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.AddItemTx(tx, scope, model, objectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"line_id":  result.LineID,
		"model":    model,
		"item_id":  objectID,
		"quantity": result.Quantity,
	}).Debug("cart item added")

	return result, nil
}

// AddItemTx is AddItem running inside the caller's transaction
func (s *Service) AddItemTx(tx *gorm.DB, scope Scope, model string, objectID uint) (*LineResult, error) {
	ref, err := itemref.NewRef(model, objectID)
	if err != nil {
		return nil, err
	}

	item, err := s.resolver.WithDB(tx).Resolve(ref)
	if err != nil {
		return nil, err
	}

	cart, err := s.resolveCart(tx, scope)
	if err != nil {
		return nil, err
	}

	o := owner{cartID: &cart.ID}
	if scope.Authenticated() {
		o = owner{userID: scope.UserID}
	}

	line, err := s.addLine(tx, o, ref)
	if err != nil {
		return nil, err
	}

	totals, err := s.totals(tx, o)
	if err != nil {
		return nil, err
	}

	return &LineResult{
		LineID:   line.ID,
		Quantity: line.Quantity,
		Subtotal: item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		Totals:   totals,
	}, nil
}

// Contains reports whether ref is an active line in the scope's cart
func (s *Service) Contains(scope Scope, ref itemref.Ref) (bool, error) {
	o, ok, err := s.existingOwner(s.db, scope)
	if err != nil || !ok {
		return false, err
	}

	var count int64
	err = o.lines(s.db).
		Where("item_type = ? AND item_id = ? AND status = ?", ref.Kind, ref.ID, LineActive).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check cart item: %w", err)
	}
	return count > 0, nil
}

func (s *Service) addLine(tx *gorm.DB, o owner, ref itemref.Ref) (CartLine, error) {
	var line CartLine
	err := o.lines(tx).
		Where("item_type = ? AND item_id = ?", ref.Kind, ref.ID).
		First(&line).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = CartLine{
			UserID:   o.userID,
			CartID:   o.cartID,
			Item:     ref,
			Quantity: 1,
			Status:   LineActive,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&line)
		if result.Error != nil {
			return line, fmt.Errorf("failed to create cart item: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return line, nil
		}
		// A concurrent request created the same line first; count this add on top of it.
		if err := o.lines(tx).Where("item_type = ? AND item_id = ?", ref.Kind, ref.ID).First(&line).Error; err != nil {
			return line, fmt.Errorf("failed to load cart item: %w", err)
		}
		return s.incrementLine(tx, line.ID, 1)

	case err != nil:
		return line, fmt.Errorf("failed to load cart item: %w", err)

	case !line.IsActive():
		err := tx.Model(&CartLine{}).Where("id = ?", line.ID).Updates(map[string]interface{}{
			"status":   LineActive,
			"quantity": 1,
		}).Error
		if err != nil {
			return line, fmt.Errorf("failed to reactivate cart item: %w", err)
		}
		line.Status = LineActive
		line.Quantity = 1
		return line, nil

	default:
		return s.incrementLine(tx, line.ID, 1)
	}
}

// incrementLine adds delta with a single arithmetic UPDATE and reloads the line
func (s *Service) incrementLine(tx *gorm.DB, lineID uint, delta int) (CartLine, error) {
	var line CartLine
	err := tx.Model(&CartLine{}).
		Where("id = ?", lineID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
	if err != nil {
		return line, fmt.Errorf("failed to update cart item quantity: %w", err)
	}
	if err := tx.First(&line, lineID).Error; err != nil {
		return line, fmt.Errorf("failed to reload cart item: %w", err)
	}
	return line, nil
}

// DecrementLine removes one unit from an active line, deleting it at quantity 1
func (s *Service) DecrementLine(scope Scope, lineID uint) (*LineResult, error) {
	var o owner
	var line CartLine
	deleted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ok bool
		var err error
		o, ok, err = s.existingOwner(tx, scope)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLineNotFound
		}

		if err := o.lines(tx).Where("id = ? AND status = ?", lineID, LineActive).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLineNotFound
			}
			return fmt.Errorf("failed to load cart item: %w", err)
		}

		result := tx.Model(&CartLine{}).
			Where("id = ? AND quantity > 1", lineID).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", 1))
		if result.Error != nil {
			return fmt.Errorf("failed to decrement cart item: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return tx.First(&line, lineID).Error
		}

		if err := tx.Where("id = ? AND quantity <= 1", lineID).Delete(&CartLine{}).Error; err != nil {
			return fmt.Errorf("failed to delete cart item: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	totals, err := s.totals(s.db, o)
	if err != nil {
		return nil, err
	}

	result := &LineResult{LineID: lineID, Subtotal: decimal.Zero, Totals: totals}
	if !deleted {
		result.Quantity = line.Quantity
		if item, err := s.resolver.Resolve(line.Item); err == nil {
			result.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		}
	}

	return result, nil
}

// DeleteLine hard-deletes a line of the scope regardless of quantity or state
func (s *Service) DeleteLine(scope Scope, lineID uint) (*LineResult, error) {
	o, ok, err := s.existingOwner(s.db, scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLineNotFound
	}

	result := o.lines(s.db).Where("id = ?", lineID).Delete(&CartLine{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLineNotFound
	}

	totals, err := s.totals(s.db, o)
	if err != nil {
		return nil, err
	}

	return &LineResult{LineID: lineID, Subtotal: decimal.Zero, Totals: totals}, nil
}

// Merge moves a guest cart into the user's scope. It is safe to call again
// after the guest cart has already been merged and deleted.
func (s *Service) Merge(userID uint, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	moved, combined := 0, 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Concurrent merges of the same session queue on the guest cart row;
		// the loser finds it deleted and has nothing to do.
		var guest Cart
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_token = ? AND user_id IS NULL", sessionToken).
			First(&guest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load guest cart: %w", err)
		}

		var guestLines []CartLine
		if err := tx.Where("cart_id = ?", guest.ID).Find(&guestLines).Error; err != nil {
			return fmt.Errorf("failed to load guest cart items: %w", err)
		}

		for _, g := range guestLines {
			if !g.IsActive() {
				if err := tx.Delete(&CartLine{}, g.ID).Error; err != nil {
					return fmt.Errorf("failed to discard removed guest item: %w", err)
				}
				continue
			}

			var existing CartLine
			err := tx.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, g.Item.Kind, g.Item.ID).
				First(&existing).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				err := tx.Model(&CartLine{}).Where("id = ?", g.ID).Updates(map[string]interface{}{
					"user_id": userID,
					"cart_id": nil,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to move guest item: %w", err)
				}
				moved++
				continue

			case err != nil:
				return fmt.Errorf("failed to load user cart item: %w", err)

			case existing.ID == g.ID:
				// Already carries the user; only the guest cart link is left.
				if err := tx.Model(&CartLine{}).Where("id = ?", g.ID).Update("cart_id", nil).Error; err != nil {
					return fmt.Errorf("failed to move guest item: %w", err)
				}
				moved++
				continue

			case existing.IsActive():
				if _, err := s.incrementLine(tx, existing.ID, g.Quantity); err != nil {
					return err
				}

			default:
				err := tx.Model(&CartLine{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
					"status":   LineActive,
					"quantity": g.Quantity,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to reactivate user cart item: %w", err)
				}
			}

			if err := tx.Delete(&CartLine{}, g.ID).Error; err != nil {
				return fmt.Errorf("failed to delete merged guest item: %w", err)
			}
			combined++
		}

		if err := tx.Delete(&Cart{}, guest.ID).Error; err != nil {
			return fmt.Errorf("failed to delete guest cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if moved+combined > 0 {
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"moved":    moved,
			"combined": combined,
		}).Info("guest cart merged")
	}

	return nil
}

// Totals returns the live-priced totals of the scope's active lines
func (s *Service) Totals(scope Scope) (Totals, error) {
	o, ok, err := s.existingOwner(s.db, scope)
	if err != nil || !ok {
		return Totals{TotalPrice: decimal.Zero}, err
	}
	return s.totals(s.db, o)
}

// Count returns the total active quantity in the scope's cart
func (s *Service) Count(scope Scope) (int, error) {
	o, ok, err := s.existingOwner(s.db, scope)
	if err != nil || !ok {
		return 0, err
	}

	var count int64
	err = o.lines(s.db).
		Where("status = ?", LineActive).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return int(count), nil
}

// View returns the scope's active lines with their catalog details
func (s *Service) View(scope Scope) (*View, error) {
	view := &View{Lines: []LineView{}, Totals: Totals{TotalPrice: decimal.Zero}}

	o, ok, err := s.existingOwner(s.db, scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return view, nil
	}
	view.CartID = o.cartID

	priced, err := s.pricedLines(s.db, o)
	if err != nil {
		return nil, err
	}

	for _, p := range priced {
		view.Lines = append(view.Lines, p.View())
	}
	view.Totals = SumTotals(priced)

	return view, nil
}

// ActiveLines loads the active lines a checkout would consume, inside the
// caller's transaction
func (s *Service) ActiveLines(tx *gorm.DB, scope Scope) ([]PricedLine, error) {
	o, ok, err := s.existingOwner(tx, scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoCart
	}

	priced, err := s.pricedLines(tx, o)
	if err != nil {
		return nil, err
	}
	if len(priced) == 0 {
		return nil, ErrEmptyCart
	}

	return priced, nil
}

// DeactivateLines marks lines consumed by an order as removed
func (s *Service) DeactivateLines(tx *gorm.DB, lineIDs []uint) error {
	if len(lineIDs) == 0 {
		return nil
	}
	err := tx.Model(&CartLine{}).
		Where("id IN ? AND status = ?", lineIDs, LineActive).
		Update("status", LineRemoved).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate cart items: %w", err)
	}
	return nil
}

func (s *Service) pricedLines(tx *gorm.DB, o owner) ([]PricedLine, error) {
	var lines []CartLine
	if err := o.lines(tx).Where("status = ?", LineActive).Order("id ASC").Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	refs := make([]itemref.Ref, len(lines))
	for i, line := range lines {
		refs[i] = line.Item
	}

	items, err := s.resolver.WithDB(tx).ResolveMany(refs)
	if err != nil {
		return nil, err
	}

	priced := make([]PricedLine, len(lines))
	for i, line := range lines {
		priced[i] = PricedLine{Line: line}
		if item, ok := items[line.Item]; ok {
			item := item
			priced[i].Item = &item
		}
	}

	return priced, nil
}

func (s *Service) totals(tx *gorm.DB, o owner) (Totals, error) {
	priced, err := s.pricedLines(tx, o)
	if err != nil {
		return Totals{}, err
	}
	return SumTotals(priced), nil
}

// SumTotals adds up quantities and live subtotals. Stale lines count
// towards quantity but contribute nothing to the price.
func SumTotals(priced []PricedLine) Totals {
	totals := Totals{TotalPrice: decimal.Zero}
	for _, p := range priced {
		totals.TotalQuantity += p.Line.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(p.Subtotal())
	}
	return totals
}
