package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/apperr"
	"storefront/catalog"
	"storefront/config"
	"storefront/coupons"
	"storefront/logger"
	"storefront/models"
	"storefront/shipping"
	"storefront/users"
)

// 查詢使用者列表
func GetUserListHandler(c *gin.Context, svc *users.Service) {
	list, err := svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]gin.H, 0, len(list))
	for _, user := range list {
		result = append(result, userView(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": result})
}

type productRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Photo        string `json:"photo"`
	Price        string `json:"price" binding:"required,money"`
	ComparePrice string `json:"compare_price" binding:"omitempty,money"`
	CategoryID   uint   `json:"category_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"gte=0"`
}

type productUpdateRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Description  *string `json:"description"`
	Photo        *string `json:"photo"`
	Price        *string `json:"price" binding:"omitempty,money"`
	ComparePrice *string `json:"compare_price" binding:"omitempty,money"`
	CategoryID   *uint   `json:"category_id" binding:"omitempty,gt=0"`
	Quantity     *int    `json:"quantity" binding:"omitempty,gte=0"`
}

func optionalMoney(value *string) *decimal.Decimal {
	if value == nil {
		return nil
	}
	d := decimal.RequireFromString(*value)
	return &d
}

func CreateProductHandler(c *gin.Context, svc *catalog.Service) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}

	price := decimal.RequireFromString(req.Price)
	comparePrice := price
	if req.ComparePrice != "" {
		comparePrice = decimal.RequireFromString(req.ComparePrice)
	}
	product := models.Product{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.Photo,
		Price:        price,
		ComparePrice: comparePrice,
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
	}
	if err := svc.CreateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": productView(product)})
}

// 只更新有傳入的欄位
func UpdateProductHandler(c *gin.Context, svc *catalog.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	var req productUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := svc.UpdateProduct(c.Request.Context(), productID, catalog.ProductChanges{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.Photo,
		Price:        optionalMoney(req.Price),
		ComparePrice: optionalMoney(req.ComparePrice),
		CategoryID:   req.CategoryID,
		Quantity:     req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": productView(*product)})
}

func DeleteProductHandler(c *gin.Context, svc *catalog.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}
	if err := svc.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "product deleted"})
}

// 建立分類，parent_id為空時建立根分類
func CreateCategoryHandler(c *gin.Context, svc *catalog.Service) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		ParentID *uint  `json:"parent_id" binding:"omitempty,gt=0"`
	}
	if !bindJSON(c, &req) {
		return
	}
	category, err := svc.CreateCategory(c.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": gin.H{
		"id":        category.ID,
		"name":      category.Name,
		"parent_id": category.ParentID,
	}})
}

// 刪除分類，子分類與其商品一併刪除
func DeleteCategoryHandler(c *gin.Context, svc *catalog.Service) {
	categoryID, ok := pathID(c, "categoryId", "category id")
	if !ok {
		return
	}
	if err := svc.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "category deleted"})
}

func CreateShippingHandler(c *gin.Context, svc *shipping.Service) {
	var req struct {
		Name           string `json:"name" binding:"required"`
		TimeToDelivery string `json:"time_to_delivery" binding:"required"`
		Price          string `json:"price" binding:"required,money"`
	}
	if !bindJSON(c, &req) {
		return
	}
	option, err := svc.Create(c.Request.Context(), req.Name, req.TimeToDelivery, decimal.RequireFromString(req.Price))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shipping_option": shippingView(*option)})
}

// 建立折價券，discount_price與discount_percentage只能擇一
func CreateCouponHandler(c *gin.Context, svc *coupons.Service) {
	var req struct {
		Name               string  `json:"name" binding:"required"`
		DiscountPrice      *string `json:"discount_price" binding:"omitempty,money"`
		DiscountPercentage *int    `json:"discount_percentage"`
	}
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := svc.Create(c.Request.Context(), coupons.Coupon{
		Name:               req.Name,
		DiscountPrice:      optionalMoney(req.DiscountPrice),
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

// 上傳商品圖片，檔名以uuid產生
func UploadImageHandler(c *gin.Context, cfg *config.Config) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperr.NewInvalid("image file is required"))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !cfg.IsAllowedUpload(ext) {
		respondError(c, apperr.NewInvalid("image extension "+ext+" is not allowed"))
		return
	}

	//檢查uploads資料夾是否存在，如不存在則創建
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		respondError(c, apperr.NewInternal("could not prepare upload directory", err))
		return
	}

	imageName := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(cfg.Upload.Dir, imageName)); err != nil {
		respondError(c, apperr.NewInternal("could not save image", err))
		return
	}

	logger.L().Info("image uploaded", zap.String("file", imageName), zap.Int64("size", file.Size))
	c.JSON(http.StatusCreated, gin.H{"photo": "/uploads/" + imageName})
}
