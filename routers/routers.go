package routers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/cache"
	"storefront/cart"
	"storefront/catalog"
	"storefront/config"
	"storefront/coupons"
	"storefront/handlers"
	"storefront/jwt"
	"storefront/middleware"
	"storefront/orders"
	"storefront/reviews"
	"storefront/shipping"
	"storefront/users"
	"storefront/validation"
	"storefront/wishlist"
)

func SetupRouters(cfg *config.Config, db *gorm.DB, rdb *redis.Client, signer *jwt.Signer, log *zap.Logger) (*gin.Engine, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	var catalogCache catalog.Cache = cache.Nop{}
	if rdb != nil {
		catalogCache = cache.NewRedis(rdb, cfg.CacheTTL())
	}
	catalogSvc := catalog.NewService(catalog.NewRepository(db), catalogCache, log)
	cartSvc := cart.NewService(db)
	wishlistSvc := wishlist.NewService(db)
	orderSvc := orders.NewService(db, catalogSvc)
	reviewSvc := reviews.NewService(db)
	shippingSvc := shipping.NewService(db)
	couponSvc := coupons.NewService(db)
	userSvc := users.NewService(db)
	metrics := middleware.NewMetrics("storefront")

	//建立Gin路由器
	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(cfg.Server.AllowOrigins),
		metrics.Middleware(),
	)
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	//設定商品圖片靜態資源路徑
	router.Static("/uploads", cfg.Upload.Dir)

	api := router.Group("/api")
	////解析Token，未登入的請求照常往下
	api.Use(middleware.AuthMiddleware(signer, log))

	product := api.Group("/product")
	{
		//依分類與關鍵字搜尋
		product.POST("/search", func(context *gin.Context) {
			handlers.SearchProductsHandler(context, catalogSvc)
		})
		//依分類與價格區間搜尋
		product.POST("/by/search", func(context *gin.Context) {
			handlers.FilterProductsHandler(context, catalogSvc)
		})
		//同分類的熱銷商品
		product.GET("/related/:productId", func(context *gin.Context) {
			handlers.RelatedProductsHandler(context, catalogSvc)
		})
		//查詢商品列表
		product.GET("/get-products", func(context *gin.Context) {
			handlers.ListProductsHandler(context, catalogSvc)
		})
		//查詢商品詳細資料
		product.GET("/:productId", func(context *gin.Context) {
			handlers.ProductDetailHandler(context, catalogSvc)
		})
	}

	api.GET("/category/categories", func(context *gin.Context) {
		handlers.CategoryListHandler(context, catalogSvc)
	})
	api.GET("/shipping/get-shipping-options", func(context *gin.Context) {
		handlers.GetShippingOptionsHandler(context, shippingSvc)
	})
	api.GET("/reviews/get-reviews/:productId", func(context *gin.Context) {
		handlers.GetProductReviewsHandler(context, reviewSvc)
	})
	api.GET("/reviews/filter-reviews/:productId", func(context *gin.Context) {
		handlers.FilterProductReviewsHandler(context, reviewSvc)
	})

	auth := api.Group("/auth")
	{
		//註冊帳號
		auth.POST("/register", func(context *gin.Context) {
			handlers.RegisterHandler(context, userSvc)
		})
		//登入帳號
		auth.POST("/login", func(context *gin.Context) {
			handlers.LoginHandler(context, userSvc, signer)
		})
		//登出
		auth.POST("/logout", middleware.CheckLoginMiddleware(), func(context *gin.Context) {
			handlers.LogoutHandler(context, signer)
		})
		auth.PUT("/change-password", middleware.CheckLoginMiddleware(), func(context *gin.Context) {
			handlers.ChangePasswordHandler(context, userSvc)
		})
	}

	////需要登入，使用中間件檢查是否登入
	loginRequired := api.Group("")
	loginRequired.Use(middleware.CheckLoginMiddleware())
	{
		cartGroup := loginRequired.Group("/cart")
		cartGroup.GET("/cart-items", func(context *gin.Context) {
			handlers.GetCartItemsHandler(context, cartSvc)
		})
		cartGroup.POST("/add-item", func(context *gin.Context) {
			handlers.AddCartItemHandler(context, cartSvc)
		})
		cartGroup.GET("/get-total", func(context *gin.Context) {
			handlers.GetCartTotalHandler(context, cartSvc)
		})
		cartGroup.GET("/get-item-total", func(context *gin.Context) {
			handlers.GetCartItemTotalHandler(context, cartSvc)
		})
		cartGroup.PUT("/update-item", func(context *gin.Context) {
			handlers.UpdateCartItemHandler(context, cartSvc)
		})
		cartGroup.DELETE("/remove-item", func(context *gin.Context) {
			handlers.RemoveCartItemHandler(context, cartSvc)
		})
		cartGroup.DELETE("/empty-cart", func(context *gin.Context) {
			handlers.EmptyCartHandler(context, cartSvc)
		})
		//合併前端購物車(登入後呼叫)
		cartGroup.PUT("/synch", func(context *gin.Context) {
			handlers.SynchCartHandler(context, cartSvc)
		})

		wishlistGroup := loginRequired.Group("/wishlist")
		wishlistGroup.GET("/wishlist-items", func(context *gin.Context) {
			handlers.GetWishlistItemsHandler(context, wishlistSvc)
		})
		wishlistGroup.GET("/get-item-total", func(context *gin.Context) {
			handlers.GetWishlistItemTotalHandler(context, wishlistSvc)
		})
		wishlistGroup.POST("/add-item", func(context *gin.Context) {
			handlers.AddWishlistItemHandler(context, wishlistSvc)
		})
		wishlistGroup.DELETE("/remove-item", func(context *gin.Context) {
			handlers.RemoveWishlistItemHandler(context, wishlistSvc)
		})

		orderGroup := loginRequired.Group("/orders")
		//送出訂單並清除購物車
		orderGroup.POST("/checkout", func(context *gin.Context) {
			handlers.CheckoutHandler(context, orderSvc)
		})
		//查詢訂單列表
		orderGroup.GET("/get-orders", func(context *gin.Context) {
			handlers.GetOrdersHandler(context, orderSvc)
		})
		//查詢訂單詳細資訊
		orderGroup.GET("/get-order/:transactionId", func(context *gin.Context) {
			handlers.GetOrderHandler(context, orderSvc)
		})

		reviewGroup := loginRequired.Group("/reviews")
		reviewGroup.GET("/get-review/:productId", func(context *gin.Context) {
			handlers.GetProductReviewHandler(context, reviewSvc)
		})
		reviewGroup.POST("/create-review/:productId", func(context *gin.Context) {
			handlers.CreateProductReviewHandler(context, reviewSvc)
		})
		reviewGroup.PUT("/update-review/:productId", func(context *gin.Context) {
			handlers.UpdateProductReviewHandler(context, reviewSvc)
		})
		reviewGroup.DELETE("/delete-review/:productId", func(context *gin.Context) {
			handlers.DeleteProductReviewHandler(context, reviewSvc)
		})

		loginRequired.GET("/coupons/check-coupon", func(context *gin.Context) {
			handlers.CheckCouponHandler(context, couponSvc)
		})

		//查詢使用者資料
		loginRequired.GET("/profile/user", func(context *gin.Context) {
			handlers.GetUserProfileHandler(context, userSvc)
		})
		//修改使用者資料
		loginRequired.PUT("/profile/update", func(context *gin.Context) {
			handlers.UpdateUserProfileHandler(context, userSvc)
		})
	}

	////需要admin身分，使用中間件檢查是否登入及admin權限
	adminRequired := api.Group("/admin")
	adminRequired.Use(middleware.CheckLoginMiddleware(), middleware.CheckAdminPermissionMiddleware(log))
	{
		//查詢使用者列表
		adminRequired.GET("/users", func(context *gin.Context) {
			handlers.GetUserListHandler(context, userSvc)
		})
		//上傳商品圖片
		adminRequired.POST("/image", func(context *gin.Context) {
			handlers.UploadImageHandler(context, cfg)
		})
		//新增商品
		adminRequired.POST("/products", func(context *gin.Context) {
			handlers.CreateProductHandler(context, catalogSvc)
		})
		//修改商品
		adminRequired.PATCH("/products/:productId", func(context *gin.Context) {
			handlers.UpdateProductHandler(context, catalogSvc)
		})
		//刪除商品
		adminRequired.DELETE("/products/:productId", func(context *gin.Context) {
			handlers.DeleteProductHandler(context, catalogSvc)
		})
		adminRequired.POST("/categories", func(context *gin.Context) {
			handlers.CreateCategoryHandler(context, catalogSvc)
		})
		//刪除分類與其子分類
		adminRequired.DELETE("/categories/:categoryId", func(context *gin.Context) {
			handlers.DeleteCategoryHandler(context, catalogSvc)
		})
		adminRequired.POST("/shipping", func(context *gin.Context) {
			handlers.CreateShippingHandler(context, shippingSvc)
		})
		adminRequired.POST("/coupons", func(context *gin.Context) {
			handlers.CreateCouponHandler(context, couponSvc)
		})
	}

	return router, nil
}
