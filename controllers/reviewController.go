package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (c *Controller) findReview(ctx *gin.Context, customerID, dishID uint) (models.Review, error) {
	var review models.Review
	err := c.DB.WithContext(ctx.Request.Context()).
		Where("customer_id = ? AND dish_id = ?", customerID, dishID).
		First(&review).Error
	return review, err
}

// AddReview records a customer's review of a dish. Reviewing the same dish
// again replaces the rating and comment.
func (c *Controller) AddReview(ctx *gin.Context) {
	var data models.ReviewData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if !c.authorizeCustomer(ctx, data.CustomerID) {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var dishes int64
	if err := db.Model(&models.Dish{}).Where("id = ?", data.DishID).Count(&dishes).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate dish", err)
		return
	}
	if dishes == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, msgDishNotFound)
		return
	}

	_, err := c.findReview(ctx, data.CustomerID, data.DishID)
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save review", err)
		return
	}

	review := models.Review{
		CustomerID: data.CustomerID,
		DishID:     data.DishID,
		Rating:     data.Rating,
		Comment:    data.Comment,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "dish_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(&review).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save review", err)
		return
	}

	saved, err := c.findReview(ctx, data.CustomerID, data.DishID)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save review", err)
		return
	}

	status, message := http.StatusOK, "Review updated"
	if created {
		status, message = http.StatusCreated, "Review added"
	}
	sendJSONResponse(ctx, status, gin.H{"message": message, "review": saved})
}

func (c *Controller) UpdateReview(ctx *gin.Context) {
	var data models.ReviewData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if !c.authorizeCustomer(ctx, data.CustomerID) {
		return
	}

	review, err := c.findReview(ctx, data.CustomerID, data.DishID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgReviewNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch review", err)
		return
	}

	if err := c.DB.WithContext(ctx.Request.Context()).Model(&review).Updates(map[string]any{
		"rating":  data.Rating,
		"comment": data.Comment,
	}).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update review", err)
		return
	}
	review.Rating = data.Rating
	review.Comment = data.Comment

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Review updated", "review": review})
}

// GetDishReviews lists a dish's reviews with the reviewer's name and the
// average rating.
func (c *Controller) GetDishReviews(ctx *gin.Context) {
	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var reviews []models.Review
	if err := db.
		Preload("Customer", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("dish_id = ?", dishID).
		Order("created_at " + sortDirection(ctx)).
		Find(&reviews).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch reviews", err)
		return
	}

	var average float64
	if len(reviews) > 0 {
		var sum int
		for _, review := range reviews {
			sum += review.Rating
		}
		average = float64(sum) / float64(len(reviews))
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"reviews":       reviews,
		"count":         len(reviews),
		"averageRating": average,
	})
}

func (c *Controller) GetCustomerReviews(ctx *gin.Context) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return
	}

	var reviews []models.Review
	if err := c.DB.WithContext(ctx.Request.Context()).
		Preload("Dish", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("customer_id = ?", customerID).
		Order("created_at " + sortDirection(ctx)).
		Find(&reviews).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch reviews", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"reviews": reviews})
}

// DeleteReview removes a review; only its author or an admin may do so.
func (c *Controller) DeleteReview(ctx *gin.Context) {
	reviewID, ok := parseIDParam(ctx, "reviewId")
	if !ok {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var review models.Review
	if err := db.First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgReviewNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch review", err)
		return
	}
	if !c.authorizeCustomer(ctx, review.CustomerID) {
		return
	}

	if err := db.Unscoped().Delete(&review).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete review", err)
		return
	}

	middlewares.LoggerFrom(ctx).WithField("review_id", reviewID).Info("Review deleted")
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Review deleted successfully."})
}
