package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront/models"
)

func productView(p models.Product) gin.H {
	return gin.H{
		"id":            p.ID,
		"name":          p.Name,
		"photo":         p.ImageURL,
		"description":   p.Description,
		"price":         p.Price,
		"compare_price": p.ComparePrice,
		"category":      p.CategoryID,
		"quantity":      p.Quantity,
		"sold":          p.Sold,
		"date_created":  p.CreatedAt,
	}
}

func productsView(products []models.Product) []gin.H {
	out := make([]gin.H, 0, len(products))
	for _, p := range products {
		out = append(out, productView(p))
	}
	return out
}

func cartItemsView(items []models.CartItem) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"id":      item.ID,
			"count":   item.Count,
			"product": productView(item.Product),
		})
	}
	return out
}

func wishlistItemsView(items []models.WishListItem) []gin.H {
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"id":      item.ID,
			"product": productView(item.Product),
		})
	}
	return out
}

func orderView(o models.Order) gin.H {
	items := make([]gin.H, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, gin.H{
			"id":         item.ID,
			"product":    item.ProductID,
			"name":       item.Name,
			"price":      item.Price,
			"count":      item.Count,
			"date_added": item.DateAdded,
		})
	}
	return gin.H{
		"status":                o.Status,
		"transaction_id":        o.TransactionID,
		"amount":                o.Amount,
		"full_name":             o.FullName,
		"address_line_1":        o.AddressLine1,
		"address_line_2":        o.AddressLine2,
		"city":                  o.City,
		"state_province_region": o.StateProvinceRegion,
		"postal_zip_code":       o.PostalZipCode,
		"country_region":        o.CountryRegion,
		"telephone_number":      o.TelephoneNumber,
		"shipping_name":         o.ShippingName,
		"shipping_time":         o.ShippingTime,
		"shipping_price":        o.ShippingPrice,
		"date_issued":           o.DateIssued,
		"order_items":           items,
	}
}

func profileView(p models.UserProfile) gin.H {
	return gin.H{
		"address_line_1":        p.AddressLine1,
		"address_line_2":        p.AddressLine2,
		"city":                  p.City,
		"state_province_region": p.StateProvinceRegion,
		"zipcode":               p.Zipcode,
		"phone":                 p.Phone,
		"country_region":        p.CountryRegion,
	}
}

func userView(u models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       u.Role,
		"is_active":  u.IsActive,
	}
}

func shippingView(s models.Shipping) gin.H {
	return gin.H{
		"id":               s.ID,
		"name":             s.Name,
		"time_to_delivery": s.TimeToDelivery,
		"price":            s.Price,
	}
}
