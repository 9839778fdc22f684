package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/apperr"
	"storefront/reviews"
)

type reviewRequest struct {
	Rating  string `json:"rating" binding:"required,decimal,rating"`
	Comment string `json:"comment" binding:"required"`
}

func GetProductReviewsHandler(c *gin.Context, svc *reviews.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	list, err := svc.ProductReviews(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// 查詢使用者對此商品的評論，沒有時回傳空物件
func GetProductReviewHandler(c *gin.Context, svc *reviews.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	review, err := svc.UserReview(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if review == nil {
		c.JSON(http.StatusOK, gin.H{"review": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func CreateProductReviewHandler(c *gin.Context, svc *reviews.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, list, err := svc.Create(c.Request.Context(), userID, productID, decimal.RequireFromString(req.Rating), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review, "reviews": list})
}

func UpdateProductReviewHandler(c *gin.Context, svc *reviews.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, list, err := svc.Update(c.Request.Context(), userID, productID, decimal.RequireFromString(req.Rating), req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review, "reviews": list})
}

func DeleteProductReviewHandler(c *gin.Context, svc *reviews.Service) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	list, err := svc.Delete(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}

// 依評分區間篩選評論
func FilterProductReviewsHandler(c *gin.Context, svc *reviews.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	rating, err := decimal.NewFromString(c.Query("rating"))
	if err != nil {
		respondError(c, apperr.NewInvalid("rating must be a decimal value"))
		return
	}

	list, err := svc.Filter(c.Request.Context(), productID, rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list})
}
