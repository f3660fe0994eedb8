// internal/domain/checkout/service.go
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/itemref"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrMissingFields is returned when buyer contact or shipping details are absent
var ErrMissingFields = errors.New("missing required fields")

// Service turns a single item or the active cart into an order
type Service struct {
	db          *gorm.DB
	config      *config.Config
	cartService *cart.Service
	resolver    *itemref.Resolver
	dispatcher  *notify.Dispatcher
	logger      *logrus.Logger
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, cartService *cart.Service, dispatcher *notify.Dispatcher, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		cartService: cartService,
		resolver:    itemref.NewResolver(db),
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// PaymentOption represents a selectable payment method
type PaymentOption struct {
	Method      payment.Method `json:"method"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
}

// Preview is what the buyer reviews before placing the order
type Preview struct {
	SingleItem     bool            `json:"is_single_item"`
	Item           *itemref.Item   `json:"item,omitempty"`
	Lines          []cart.LineView `json:"lines,omitempty"`
	TotalQuantity  int             `json:"total_qty"`
	Total          decimal.Decimal `json:"total"`
	PaymentOptions []PaymentOption `json:"payment_options"`
}

// PlaceOrderRequest represents the checkout form
type PlaceOrderRequest struct {
	BuyerName       string `json:"buyer_name" form:"buyer_name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	ShippingAddress string `json:"shipping_address" form:"shipping_address"`
	PaymentMethod   string `json:"payment_method" form:"payment_method"`
	UserUPIID       string `json:"user_upi_id" form:"user_upi_id"`
	IsSingleItem    bool   `json:"is_single_item" form:"is_single_item"`
	ItemModel       string `json:"item_model" form:"item_model"`
	ItemID          uint   `json:"item_id" form:"item_id"`
}

// PlaceOrderResult is the outcome of a successful checkout. UPIURI is set
// only for UPI orders.
type PlaceOrderResult struct {
	Order  *order.Order
	UPIURI string
}

// Preview prices a single item when model is given, otherwise the scope's cart
func (s *Service) Preview(scope cart.Scope, model string, itemID uint) (*Preview, error) {
	preview := &Preview{PaymentOptions: PaymentOptions()}

	if model != "" || itemID != 0 {
		ref, err := itemref.NewRef(model, itemID)
		if err != nil {
			return nil, err
		}
		item, err := s.resolver.Resolve(ref)
		if err != nil {
			return nil, err
		}
		preview.SingleItem = true
		preview.Item = item
		preview.TotalQuantity = 1
		preview.Total = item.Price
		return preview, nil
	}

	priced, err := s.cartService.ActiveLines(s.db, scope)
	if err != nil {
		return nil, err
	}
	for _, p := range priced {
		preview.Lines = append(preview.Lines, p.View())
	}
	totals := cart.SumTotals(priced)
	preview.TotalQuantity = totals.TotalQuantity
	preview.Total = totals.TotalPrice

	return preview, nil
}

// PlaceOrder validates the form, writes the order and consumes the cart
// lines in one transaction, then dispatches the order notification
func (s *Service) PlaceOrder(scope cart.Scope, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	o := &order.Order{
		UserID:          scope.UserID,
		BuyerName:       strings.TrimSpace(req.BuyerName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		PaymentMethod:   method,
		PaymentStatus:   payment.StatusPending,
	}
	if scope.UserID == nil && scope.SessionToken != "" {
		token := scope.SessionToken
		o.SessionToken = &token
	}
	if method == payment.MethodUPI {
		if upiID := strings.TrimSpace(req.UserUPIID); upiID != "" {
			o.UserUPIID = &upiID
		}
	}

	if req.IsSingleItem {
		err = s.placeSingleItem(o, req)
	} else {
		err = s.placeCart(o, scope)
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"payment_method": o.PaymentMethod,
		"amount":         o.Amount.StringFixed(2),
	}).Info("order placed")

	s.dispatcher.OrderPlaced(order.NewEvent(o))

	result := &PlaceOrderResult{Order: o}
	if method == payment.MethodUPI {
		result.UPIURI = payment.NewOrderIntent(s.config, o.ID, o.Amount).URI()
	}

	return result, nil
}

func (s *Service) placeSingleItem(o *order.Order, req *PlaceOrderRequest) error {
	ref, err := itemref.NewRef(req.ItemModel, req.ItemID)
	if err != nil {
		return err
	}
	item, err := s.resolver.Resolve(ref)
	if err != nil {
		return err
	}

	o.ItemName = item.Name
	o.Amount = item.Price

	if err := s.db.Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *Service) placeCart(o *order.Order, scope cart.Scope) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		priced, err := s.cartService.ActiveLines(tx, scope)
		if err != nil {
			return err
		}

		lineIDs := make([]uint, 0, len(priced))
		available := 0
		for _, p := range priced {
			lineIDs = append(lineIDs, p.Line.ID)
			if p.Item != nil {
				available++
			}
		}
		if available == 0 {
			return cart.ErrEmptyCart
		}

		o.ItemName = fmt.Sprintf("Cart order with %d items", available)
		o.Amount = cart.SumTotals(priced).TotalPrice

		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return s.cartService.DeactivateLines(tx, lineIDs)
	})
}

// PaymentOptions lists the payment methods offered at checkout
func PaymentOptions() []PaymentOption {
	return []PaymentOption{
		{Method: payment.MethodCOD, Name: "Cash on Delivery", Description: "Pay when your order arrives"},
		{Method: payment.MethodCard, Name: "Card", Description: "Credit or debit card"},
		{Method: payment.MethodUPI, Name: "UPI", Description: "Pay from any UPI app"},
	}
}

func validate(req *PlaceOrderRequest) error {
	fields := []struct{ name, value string }{
		{"buyer_name", req.BuyerName},
		{"email", req.Email},
		{"phone", req.Phone},
		{"shipping_address", req.ShippingAddress},
		{"payment_method", req.PaymentMethod},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}
