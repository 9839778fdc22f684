package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/logger"
	"storefront/orders"
)

// 送出訂單並清空購物車
func CheckoutHandler(c *gin.Context, svc *orders.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req orders.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := svc.Checkout(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	logger.L().Info("order placed",
		zap.Uint("user_id", userID),
		zap.String("transaction_id", order.TransactionID),
		zap.String("amount", order.Amount.StringFixed(2)),
	)
	c.JSON(http.StatusCreated, gin.H{"order": orderView(*order)})
}

// 查詢訂單列表
func GetOrdersHandler(c *gin.Context, svc *orders.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := svc.Orders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]gin.H, 0, len(list))
	for _, order := range list {
		result = append(result, orderView(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": result})
}

// 查詢訂單詳細資訊
func GetOrderHandler(c *gin.Context, svc *orders.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	order, err := svc.Order(c.Request.Context(), userID, c.Param("transactionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": orderView(*order)})
}
