package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/orders"
	"shop-service/internal/stores/kafka"
	"shop-service/pkg/ctxmanage"
	"shop-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Checkout places an order for the authenticated customer. Stock
// decrement, ledger append and customer aggregates commit together or
// not at all.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	var newOrder orders.NewOrder
	if err := c.ShouldBindJSON(&newOrder); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}

	receipt, err := h.o.PlaceOrder(c.Request.Context(), claims.Subject, newOrder)
	if err != nil {
		h.abortWithOrderError(c, traceId, err)
		return
	}

	slog.Info("order placed successfully", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, receipt.OrderID), slog.String(logkey.UserID, claims.Subject))

	if h.k != nil {
		go func(r orders.Receipt, customerID string) {
			jsonData, err := json.Marshal(kafka.OrderPlacedEvent{
				OrderID:    r.OrderID,
				CustomerID: customerID,
				Total:      r.Total,
				ItemCount:  r.ItemCount,
				CreatedAt:  time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal order placed event", slog.String(logkey.ERROR, err.Error()))
				return
			}
			if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, []byte(r.OrderID), jsonData); err != nil {
				slog.Error("failed to produce order placed event", slog.String(logkey.ERROR, err.Error()))
			}
		}(receipt, claims.Subject)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Order placed successfully",
		"order_id":   receipt.OrderID,
		"total":      receipt.Total,
		"item_count": receipt.ItemCount,
	})
}

// abortWithOrderError maps the checkout error taxonomy onto HTTP statuses.
func (h *Handler) abortWithOrderError(c *gin.Context, traceId string, err error) {
	var (
		vErr  orders.ValidationError
		nfErr orders.NotFoundError
		isErr orders.InsufficientStockError
		stErr orders.StorageError
	)
	switch {
	case errors.As(err, &vErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
	case errors.As(err, &nfErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": nfErr.Error()})
	case errors.As(err, &isErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":      isErr.Error(),
			"product_id": isErr.ProductID,
			"available":  isErr.Available,
			"requested":  isErr.Requested,
		})
	case errors.As(err, &stErr):
		slog.Error("storage failure during checkout", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
	default:
		slog.Error("error placing order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
	}
}

func (h *Handler) CustomerOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": http.StatusText(http.StatusUnauthorized)})
		return
	}

	list, err := h.o.ListOrdersByCustomer(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching customer orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ShopkeeperOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.o.ListAllOrders(c.Request.Context())
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}
