package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/cart"
)

type cartItemRequest struct {
	ProductID interface{} `json:"product_id" binding:"required"`
}

func bindProductID(c *gin.Context) (uint, bool) {
	var req cartItemRequest
	if !bindJSON(c, &req) {
		return 0, false
	}
	id, err := looseID(req.ProductID, "product_id")
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	return id, true
}

// 查詢購物車商品
func GetCartItemsHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := svc.Items(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartItemsView(items)})
}

// 新增商品至購物車
func AddCartItemHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := bindProductID(c)
	if !ok {
		return
	}
	items, err := svc.Add(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart": cartItemsView(items)})
}

func GetCartTotalHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	totals, err := svc.Totals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_cost":         totals.TotalCost.StringFixed(2),
		"total_compare_cost": totals.TotalCompareCost.StringFixed(2),
	})
}

func GetCartItemTotalHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	total, err := svc.ItemTotal(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_items": total})
}

// 更新購物車商品數量
func UpdateCartItemHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		ProductID interface{} `json:"product_id" binding:"required"`
		Count     int         `json:"count" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	productID, err := looseID(req.ProductID, "product_id")
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := svc.Update(c.Request.Context(), userID, productID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartItemsView(items)})
}

// 刪除購物車商品
func RemoveCartItemHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := bindProductID(c)
	if !ok {
		return
	}
	items, err := svc.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartItemsView(items)})
}

// 清除購物車商品
func EmptyCartHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := svc.Empty(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": []gin.H{}})
}

// 合併前端暫存的購物車(登入後呼叫)
func SynchCartHandler(c *gin.Context, svc *cart.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		CartItems []cart.SyncItem `json:"cart_items" binding:"dive"`
	}
	if !bindJSON(c, &req) {
		return
	}
	items, err := svc.Synch(c.Request.Context(), userID, req.CartItems)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cartItemsView(items)})
}
