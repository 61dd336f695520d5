package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// availableDish loads a dish for the cart, answering 400 when it is missing
// or off the menu.
func (c *Controller) availableDish(ctx *gin.Context, dishID uint) (models.Dish, bool) {
	var dish models.Dish
	if err := c.DB.WithContext(ctx.Request.Context()).First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgDishNotFound)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch dish", err)
		}
		return models.Dish{}, false
	}
	if !dish.Available {
		sendErrorResponse(ctx, http.StatusBadRequest, dish.Name+" is currently unavailable")
		return models.Dish{}, false
	}
	return dish, true
}

// AddToCart adds a dish to the cart, merging the quantity into an existing
// line for the same dish.
func (c *Controller) AddToCart(ctx *gin.Context) {
	var data models.CartItemData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if !c.authorizeCustomer(ctx, data.CustomerID) {
		return
	}

	dish, ok := c.availableDish(ctx, data.DishID)
	if !ok {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var existing int64
	if err := db.Model(&models.CartItem{}).
		Where("customer_id = ? AND dish_id = ?", data.CustomerID, data.DishID).
		Count(&existing).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch cart item", err)
		return
	}

	item := models.CartItem{
		CustomerID: data.CustomerID,
		DishID:     data.DishID,
		Quantity:   data.Quantity,
		Amount:     dish.Price * float64(data.Quantity),
	}
	// amount must come before quantity: MySQL applies assignments left to right.
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "dish_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "amount"}, Value: gorm.Expr("(quantity + ?) * ?", data.Quantity, dish.Price)},
			{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("quantity + ?", data.Quantity)},
			{Column: clause.Column{Name: "updated_at"}, Value: time.Now()},
		},
	}).Create(&item).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to save cart item", err)
		return
	}

	var saved models.CartItem
	if err := db.Where("customer_id = ? AND dish_id = ?", data.CustomerID, data.DishID).First(&saved).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch cart item", err)
		return
	}

	if existing > 0 {
		sendJSONResponse(ctx, http.StatusOK, gin.H{
			"message": "Cart item quantity updated",
			"item":    saved,
		})
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": dish.Name + " added to cart",
		"item":    saved,
	})
}

func (c *Controller) GetCart(ctx *gin.Context) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return
	}

	var items []models.CartItem
	if err := c.DB.WithContext(ctx.Request.Context()).
		Preload("Dish").
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&items).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch cart", err)
		return
	}

	var total float64
	for _, item := range items {
		total += item.Amount
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"items": items, "total": total})
}

// UpdateCartItem sets the quantity of a line; zero removes it.
func (c *Controller) UpdateCartItem(ctx *gin.Context) {
	var data models.CartUpdateData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if !c.authorizeCustomer(ctx, data.CustomerID) {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var item models.CartItem
	if err := db.Preload("Dish").Where("customer_id = ? AND dish_id = ?", data.CustomerID, data.DishID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCartItemNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch cart item", err)
		return
	}

	if data.Quantity == 0 {
		if err := db.Unscoped().Delete(&item).Error; err != nil {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to remove cart item", err)
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
		return
	}

	var price float64
	if item.Dish != nil {
		price = item.Dish.Price
	}
	if err := db.Model(&item).Updates(map[string]any{
		"quantity": data.Quantity,
		"amount":   price * float64(data.Quantity),
	}).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.", err)
		return
	}
	item.Quantity = data.Quantity
	item.Amount = price * float64(data.Quantity)

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item updated", "item": item})
}

func (c *Controller) RemoveCartItem(ctx *gin.Context) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}
	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return
	}

	result := c.DB.WithContext(ctx.Request.Context()).Unscoped().
		Where("customer_id = ? AND dish_id = ?", customerID, dishID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to remove cart item", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, msgCartItemNotFound)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item removed"})
}

func (c *Controller) ClearCart(ctx *gin.Context) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return
	}

	result := c.DB.WithContext(ctx.Request.Context()).Unscoped().
		Where("customer_id = ?", customerID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to clear cart", result.Error)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart cleared", "removed": result.RowsAffected})
}
