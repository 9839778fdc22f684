package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/wishlist"
)

func GetWishlistItemsHandler(c *gin.Context, svc *wishlist.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := svc.Items(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlistItemsView(items)})
}

func GetWishlistItemTotalHandler(c *gin.Context, svc *wishlist.Service) {
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

// 加入願望清單並從購物車移除
func AddWishlistItemHandler(c *gin.Context, svc *wishlist.Service) {
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
	c.JSON(http.StatusCreated, gin.H{"wishlist": wishlistItemsView(items)})
}

func RemoveWishlistItemHandler(c *gin.Context, svc *wishlist.Service) {
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
	c.JSON(http.StatusOK, gin.H{"wishlist": wishlistItemsView(items)})
}
