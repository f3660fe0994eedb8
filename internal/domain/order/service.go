// internal/domain/order/service.go
package order

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pawverse/petstore-backend/internal/config"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/notify"
	"github.com/pawverse/petstore-backend/internal/domain/payment"
	"github.com/pawverse/petstore-backend/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotUPIOrder      = errors.New("order was not placed with UPI")
	ErrPaymentFinalized = errors.New("order payment is already settled")
)

// Service handles order queries and payment status changes
type Service struct {
	db         *gorm.DB
	config     *config.Config
	dispatcher *notify.Dispatcher
	pdf        *pdf.Service
	logger     *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, dispatcher *notify.Dispatcher, logger *logrus.Logger) *Service {
	return &Service{
		db:         db,
		config:     cfg,
		dispatcher: dispatcher,
		pdf:        pdf.NewService(cfg),
		logger:     logger,
	}
}

// OrderListRequest represents admin order list filters
type OrderListRequest struct {
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=20"`
	PaymentStatus string `form:"payment_status"`
	PaymentMethod string `form:"payment_method"`
	Search        string `form:"search"`
}

// OrderListResponse represents a page of orders
type OrderListResponse struct {
	Orders     []Order            `json:"orders"`
	Pagination catalog.Pagination `json:"pagination"`
}

// GetOrder returns an order if the scope placed it
func (s *Service) GetOrder(orderID uint, scope cart.Scope) (*Order, error) {
	order, err := s.FindOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !ownedBy(order, scope) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// FindOrder loads an order without an ownership check
func (s *Service) FindOrder(orderID uint) (*Order, error) {
	var order Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// ListUserOrders returns a user's orders, newest first
func (s *Service) ListUserOrders(userID uint, page, limit int) (*OrderListResponse, error) {
	return s.list(s.db.Model(&Order{}).Where("user_id = ?", userID), page, limit)
}

// ListOrders returns all orders matching the admin filters
func (s *Service) ListOrders(req *OrderListRequest) (*OrderListResponse, error) {
	return s.list(s.filtered(req), req.Page, req.Limit)
}

func (s *Service) list(query *gorm.DB, page, limit int) (*OrderListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return &OrderListResponse{
		Orders:     orders,
		Pagination: catalog.NewPagination(page, limit, total),
	}, nil
}

func (s *Service) filtered(req *OrderListRequest) *gorm.DB {
	query := s.db.Model(&Order{})
	if req.PaymentStatus != "" {
		query = query.Where("payment_status = ?", req.PaymentStatus)
	}
	if req.PaymentMethod != "" {
		query = query.Where("payment_method = ?", req.PaymentMethod)
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(buyer_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(item_name) LIKE ?", like, like, like)
	}
	return query
}

// ConfirmUPIPayment records the buyer's confirmation that the UPI transfer
// went through. Confirming an already paid order is a no-op.
func (s *Service) ConfirmUPIPayment(orderID uint, scope cart.Scope) (*Order, error) {
	order, err := s.GetOrder(orderID, scope)
	if err != nil {
		return nil, err
	}
	if !order.IsUPI() {
		return nil, ErrNotUPIOrder
	}

	switch order.PaymentStatus {
	case payment.StatusPaid:
		return order, nil
	case payment.StatusFailed:
		return nil, ErrPaymentFinalized
	}

	now := time.Now().UTC()
	result := s.db.Model(&Order{}).
		Where("id = ? AND payment_status = ?", order.ID, payment.StatusPending).
		Updates(map[string]interface{}{"payment_status": payment.StatusPaid, "paid_at": now})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// another request settled the order in between
		return s.FindOrder(order.ID)
	}

	order.PaymentStatus = payment.StatusPaid
	order.PaidAt = &now

	s.logger.WithFields(logrus.Fields{"order_id": order.ID}).Info("UPI payment confirmed")
	s.dispatcher.PaymentConfirmed(NewEvent(order))

	return order, nil
}

// MarkPaymentFailed flags a pending order as failed
func (s *Service) MarkPaymentFailed(orderID uint) (*Order, error) {
	order, err := s.FindOrder(orderID)
	if err != nil {
		return nil, err
	}

	switch order.PaymentStatus {
	case payment.StatusFailed:
		return order, nil
	case payment.StatusPaid:
		return nil, ErrPaymentFinalized
	}

	result := s.db.Model(&Order{}).
		Where("id = ? AND payment_status = ?", order.ID, payment.StatusPending).
		Update("payment_status", payment.StatusFailed)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrPaymentFinalized
	}
	order.PaymentStatus = payment.StatusFailed

	s.logger.WithFields(logrus.Fields{"order_id": order.ID}).Warn("order payment marked failed")

	return order, nil
}

// ExportOrders builds a spreadsheet of every order matching the filters
func (s *Service) ExportOrders(req *OrderListRequest) (*xlsx.File, error) {
	var orders []Order
	if err := s.filtered(req).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{
		"ID", "Summary", "Buyer", "Email", "Phone", "Shipping Address",
		"Payment Method", "UPI ID", "Payment Status", "Amount", "User ID", "Created At",
	}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.ItemName)
		row.AddCell().SetValue(o.BuyerName)
		row.AddCell().SetValue(o.Email)
		row.AddCell().SetValue(o.Phone)
		row.AddCell().SetValue(o.ShippingAddress)
		row.AddCell().SetValue(string(o.PaymentMethod))
		row.AddCell().SetValue(stringOrEmpty(o.UserUPIID))
		row.AddCell().SetValue(string(o.PaymentStatus))
		row.AddCell().SetValue(o.Amount.StringFixed(2))
		if o.UserID != nil {
			row.AddCell().SetValue(*o.UserID)
		} else {
			row.AddCell().SetValue("")
		}
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return file, nil
}

// Receipt renders a PDF receipt for an order the scope placed
func (s *Service) Receipt(orderID uint, scope cart.Scope) (*bytes.Buffer, error) {
	order, err := s.GetOrder(orderID, scope)
	if err != nil {
		return nil, err
	}
	return s.pdf.GenerateReceipt(ReceiptData(order, s.config.Payment.Currency))
}

// ReceiptData maps an order onto the receipt template
func ReceiptData(o *Order, currency string) pdf.ReceiptData {
	return pdf.ReceiptData{
		ReceiptNumber:   fmt.Sprintf("RCPT-%05d", o.ID),
		IssuedAt:        o.CreatedAt.Format("January 2, 2006"),
		OrderID:         o.ID,
		Summary:         o.ItemName,
		BuyerName:       o.BuyerName,
		Email:           o.Email,
		Phone:           o.Phone,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   strings.ToUpper(string(o.PaymentMethod)),
		PaymentStatus:   string(o.PaymentStatus),
		Amount:          o.Amount.StringFixed(2),
		Currency:        currency,
	}
}

// NewEvent builds the notification payload for an order
func NewEvent(o *Order) notify.OrderEvent {
	return notify.OrderEvent{
		OrderID:       o.ID,
		Email:         o.Email,
		BuyerName:     o.BuyerName,
		Summary:       o.ItemName,
		Amount:        o.Amount.StringFixed(2),
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Address:       o.ShippingAddress,
	}
}

// ownedBy reports whether the scope placed the order. Guest orders are
// matched by the session token they were placed from.
func ownedBy(o *Order, scope cart.Scope) bool {
	if o.UserID != nil {
		return scope.UserID != nil && *scope.UserID == *o.UserID
	}
	return o.SessionToken != nil && scope.SessionToken != "" && *o.SessionToken == scope.SessionToken
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
