package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/apperr"
	"storefront/models"
)

var (
	ErrProductNotFound = apperr.NewNotFound("product not found")
	ErrReviewNotFound  = apperr.NewNotFound("review for this product does not exist")
	ErrReviewExists    = apperr.NewConflict("review for this product already created")
	ErrInvalidRating   = apperr.NewInvalid("rating must be between 0.5 and 5.0")
	ErrMissingComment  = apperr.NewInvalid("must pass a comment when creating review")
)

var (
	MinRating = decimal.RequireFromString("0.5")
	MaxRating = decimal.NewFromInt(5)
	step      = decimal.RequireFromString("0.5")
)

// Review is the public shape of a review: only the author's first name leaves the service.
type Review struct {
	ID          uint            `json:"id"`
	Rating      decimal.Decimal `json:"rating"`
	Comment     string          `json:"comment"`
	DateCreated time.Time       `json:"date_created"`
	User        string          `json:"user"`
}

func toReview(r models.Review) Review {
	return Review{
		ID:          r.ID,
		Rating:      r.Rating,
		Comment:     r.Comment,
		DateCreated: r.CreatedAt,
		User:        r.User.FirstName,
	}
}

// ClampFilterRating maps the filter query onto [0.5, 5.0]; zero means 5.0.
func ClampFilterRating(rating decimal.Decimal) decimal.Decimal {
	switch {
	case rating.IsZero():
		return MaxRating
	case rating.GreaterThan(MaxRating):
		return MaxRating
	case rating.LessThan(MinRating):
		return MinRating
	}
	return rating
}

func validRating(rating decimal.Decimal) error {
	if rating.LessThan(MinRating) || rating.GreaterThan(MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func productExists(tx *gorm.DB, productID uint) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return apperr.NewInternal("could not load product", err)
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return nil
}

func list(tx *gorm.DB, productID uint, scopes ...func(*gorm.DB) *gorm.DB) ([]Review, error) {
	var rows []models.Review
	err := tx.Preload("User").
		Scopes(scopes...).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, apperr.NewInternal("could not load reviews", err)
	}

	result := make([]Review, 0, len(rows))
	for _, r := range rows {
		result = append(result, toReview(r))
	}
	return result, nil
}

func findOwn(tx *gorm.DB, userID, productID uint) (*models.Review, error) {
	var review models.Review
	err := tx.Preload("User").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&review).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, apperr.NewInternal("could not load review", err)
	}
	return &review, nil
}

// ProductReviews lists a product's reviews, newest first.
func (s *Service) ProductReviews(ctx context.Context, productID uint) ([]Review, error) {
	db := s.db.WithContext(ctx)
	if err := productExists(db, productID); err != nil {
		return nil, err
	}
	return list(db, productID)
}

// UserReview returns the caller's review of the product, or nil when there is none.
func (s *Service) UserReview(ctx context.Context, userID, productID uint) (*Review, error) {
	db := s.db.WithContext(ctx)
	if err := productExists(db, productID); err != nil {
		return nil, err
	}
	review, err := findOwn(db, userID, productID)
	if errors.Is(err, ErrReviewNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := toReview(*review)
	return &out, nil
}

// Create stores the caller's review and returns it with the product's reviews.
func (s *Service) Create(ctx context.Context, userID, productID uint, rating decimal.Decimal, comment string) (*Review, []Review, error) {
	if err := validRating(rating); err != nil {
		return nil, nil, err
	}
	if comment == "" {
		return nil, nil, ErrMissingComment
	}

	var created Review
	var all []Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, productID); err != nil {
			return err
		}
		_, err := findOwn(tx, userID, productID)
		if err == nil {
			return ErrReviewExists
		}
		if !errors.Is(err, ErrReviewNotFound) {
			return err
		}

		row := models.Review{UserID: userID, ProductID: productID, Rating: rating.Round(1), Comment: comment}
		if err := tx.Omit("User", "Product").Create(&row).Error; err != nil {
			return apperr.NewInternal("could not create review", err)
		}
		saved, err := findOwn(tx, userID, productID)
		if err != nil {
			return err
		}
		created = toReview(*saved)
		all, err = list(tx, productID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &created, all, nil
}

func (s *Service) Update(ctx context.Context, userID, productID uint, rating decimal.Decimal, comment string) (*Review, []Review, error) {
	if err := validRating(rating); err != nil {
		return nil, nil, err
	}
	if comment == "" {
		return nil, nil, ErrMissingComment
	}

	var updated Review
	var all []Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, productID); err != nil {
			return err
		}
		review, err := findOwn(tx, userID, productID)
		if err != nil {
			return err
		}
		err = tx.Model(review).Updates(map[string]interface{}{
			"rating":  rating.Round(1),
			"comment": comment,
		}).Error
		if err != nil {
			return apperr.NewInternal("could not update review", err)
		}
		review.Rating = rating.Round(1)
		review.Comment = comment
		updated = toReview(*review)
		all, err = list(tx, productID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &updated, all, nil
}

// Delete removes the caller's review and returns the remaining ones.
func (s *Service) Delete(ctx context.Context, userID, productID uint) ([]Review, error) {
	var all []Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := productExists(tx, productID); err != nil {
			return err
		}
		review, err := findOwn(tx, userID, productID)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(review).Error; err != nil {
			return apperr.NewInternal("could not delete review", err)
		}
		all, err = list(tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Filter returns reviews in the half star band ending at rating. The lowest band
// holds exactly 0.5; every other band is [rating-0.5, rating].
func (s *Service) Filter(ctx context.Context, productID uint, rating decimal.Decimal) ([]Review, error) {
	db := s.db.WithContext(ctx)
	if err := productExists(db, productID); err != nil {
		return nil, err
	}

	rating = ClampFilterRating(rating)
	band := func(q *gorm.DB) *gorm.DB {
		if rating.Equal(MinRating) {
			return q.Where("rating = ?", rating)
		}
		return q.Where("rating >= ? AND rating <= ?", rating.Sub(step), rating)
	}
	return list(db, productID, band)
}
