package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/coupons"
	"storefront/shipping"
)

// 查詢運送方式，依價格排序
func GetShippingOptionsHandler(c *gin.Context, svc *shipping.Service) {
	options, err := svc.Options(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]gin.H, 0, len(options))
	for _, option := range options {
		result = append(result, shippingView(option))
	}
	c.JSON(http.StatusOK, gin.H{"shipping_options": result})
}

// 檢查折價券是否存在
func CheckCouponHandler(c *gin.Context, svc *coupons.Service) {
	coupon, err := svc.Check(c.Request.Context(), c.Query("coupon_name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}
