// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawverse/petstore-backend/internal/domain/order"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminOrderHandler handles order administration
type AdminOrderHandler struct {
	orderService *order.Service
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(orderService *order.Service) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// GetOrders handles GET /admin/orders
func (h *AdminOrderHandler) GetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters", err)
		return
	}

	orders, err := h.orderService.ListOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// ExportOrders handles GET /admin/orders/export, streaming an xlsx workbook
// of every order matching the filters
func (h *AdminOrderHandler) ExportOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "Invalid query parameters", err)
		return
	}

	file, err := h.orderService.ExportOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		respondError(c, fmt.Errorf("failed to write workbook: %w", err))
		return
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// MarkPaymentFailed handles PUT /admin/orders/:id/payment-failed
func (h *AdminOrderHandler) MarkPaymentFailed(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.MarkPaymentFailed(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": o})
}
