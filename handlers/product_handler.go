package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/apperr"
	"storefront/catalog"
)

// 依分類與關鍵字搜尋商品
func SearchProductsHandler(c *gin.Context, svc *catalog.Service) {
	var req struct {
		CategoryID interface{} `json:"category_id"`
		Search     string      `json:"search"`
	}
	if !bindJSON(c, &req) {
		return
	}
	categoryID, err := looseID(req.CategoryID, "category_id")
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := svc.Search(c.Request.Context(), categoryID, req.Search)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"search_products": productsView(products),
	})
}

// 依分類、價格區間與排序篩選商品
func FilterProductsHandler(c *gin.Context, svc *catalog.Service) {
	var req struct {
		CategoryID interface{} `json:"category_id"`
		PriceRange string      `json:"price_range"`
		SortBy     string      `json:"sort_by"`
		Order      string      `json:"order"`
	}
	if !bindJSON(c, &req) {
		return
	}
	categoryID, err := looseID(req.CategoryID, "category_id")
	if err != nil {
		respondError(c, err)
		return
	}

	products, err := svc.FilterProducts(c.Request.Context(), catalog.FilterParams{
		CategoryID: categoryID,
		PriceRange: req.PriceRange,
		SortBy:     req.SortBy,
		Order:      req.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filtered_products": productsView(products),
	})
}

// 查詢同分類的熱銷商品
func RelatedProductsHandler(c *gin.Context, svc *catalog.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}

	products, err := svc.Related(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"related_products": productsView(products),
	})
}

// 查詢商品列表
func ListProductsHandler(c *gin.Context, svc *catalog.Service) {
	limit := catalog.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.NewInvalid("limit must be an integer"))
			return
		}
		limit = parsed
	}

	sort := catalog.NewSort(c.Query("sortBy"), c.Query("order"))
	products, err := svc.ListProducts(c.Request.Context(), sort, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": productsView(products),
	})
}

// 查詢商品詳細資料
func ProductDetailHandler(c *gin.Context, svc *catalog.Service) {
	productID, ok := pathID(c, "productId", "product id")
	if !ok {
		return
	}

	product, err := svc.Product(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": productView(*product),
	})
}

// 查詢分類樹
func CategoryListHandler(c *gin.Context, svc *catalog.Service) {
	tree, err := svc.CategoryTree(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": tree,
	})
}
