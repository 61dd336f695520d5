package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/notifier"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const publishTimeout = 5 * time.Second

var errDishesMissing = errors.New("one or more dishes do not exist")

// loadOrderDishes returns the ordered dishes keyed by id, failing when any is
// missing or unavailable.
func (c *Controller) loadOrderDishes(ctx *gin.Context, items []models.OrderItemData) (map[uint]models.Dish, error) {
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.DishID] {
			seen[item.DishID] = true
			ids = append(ids, item.DishID)
		}
	}

	var dishes []models.Dish
	if err := c.DB.WithContext(ctx.Request.Context()).Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}

	byID := make(map[uint]models.Dish, len(dishes))
	for _, dish := range dishes {
		byID[dish.ID] = dish
	}
	if len(byID) != len(ids) {
		return nil, errDishesMissing
	}
	return byID, nil
}

// PlaceOrder records the order and its items in one transaction and clears
// the customer's cart. The confirmation email and broker event follow the
// commit and never change the outcome.
func (c *Controller) PlaceOrder(ctx *gin.Context) {
	var data models.PlaceOrderData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	if !c.authorizeCustomer(ctx, data.CustomerID) {
		return
	}

	amount := models.OrderTotal(data.Items)
	if data.Discount > amount {
		sendErrorResponse(ctx, http.StatusBadRequest, "Discount cannot exceed the order amount")
		return
	}

	dishes, err := c.loadOrderDishes(ctx, data.Items)
	if err != nil {
		if errors.Is(err, errDishesMissing) {
			sendErrorResponse(ctx, http.StatusBadRequest, "One or more dishes do not exist")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to place order", err)
		return
	}
	for _, dish := range dishes {
		if !dish.Available {
			sendErrorResponse(ctx, http.StatusBadRequest, dish.Name+" is currently unavailable")
			return
		}
	}

	var customer models.Customer
	if err := c.DB.WithContext(ctx.Request.Context()).First(&customer, data.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to place order", err)
		return
	}

	order := models.Order{
		CustomerID: data.CustomerID,
		Amount:     amount,
		Discount:   data.Discount,
		Status:     models.OrderStatusPending,
	}

	err = c.DB.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		items := make([]models.OrderItem, 0, len(data.Items))
		for _, item := range data.Items {
			items = append(items, models.OrderItem{
				OrderID:  order.ID,
				DishID:   item.DishID,
				DishName: dishes[item.DishID].Name,
				Quantity: item.Quantity,
				Price:    item.Price,
				Amount:   item.LineAmount(),
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		if err := tx.Unscoped().Where("customer_id = ?", data.CustomerID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		order.Items = items
		return nil
	})
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to place order", err)
		return
	}

	c.Metrics.OrdersPlaced.Inc()
	c.Metrics.OrderAmount.Observe(order.Amount)
	middlewares.LoggerFrom(ctx).WithField("order_id", order.ID).WithField("amount", order.Amount).Info("Order placed")

	if job, err := notifier.OrderPlacedJob(customer, order); err == nil {
		c.enqueue(ctx, job)
	} else {
		middlewares.LoggerFrom(ctx).WithError(err).Error("Unable to build order notification")
	}
	c.publishOrderPlaced(ctx, order)

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":  "Order placed successfully",
		"orderId":  order.ID,
		"amount":   order.Amount,
		"discount": order.Discount,
		"payable":  order.Payable(),
	})
}

func (c *Controller) publishOrderPlaced(ctx *gin.Context, order models.Order) {
	pubCtx, cancel := context.WithTimeout(ctx.Request.Context(), publishTimeout)
	defer cancel()

	err := c.Publisher.PublishOrderPlaced(pubCtx, utils.OrderEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Amount:     order.Amount,
		Discount:   order.Discount,
		ItemCount:  len(order.Items),
		PlacedAt:   order.CreatedAt,
	})
	if err != nil {
		middlewares.LoggerFrom(ctx).WithError(err).WithField("order_id", order.ID).Warn("Unable to publish order event")
	}
}

// withOrderItems preloads items and their dishes, deleted dishes included.
func withOrderItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Dish", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (c *Controller) GetCustomerOrders(ctx *gin.Context) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return
	}

	sortOrder := sortDirection(ctx)
	var orders []models.Order
	if err := withOrderItems(c.DB.WithContext(ctx.Request.Context())).
		Where("customer_id = ?", customerID).
		Order("created_at " + sortOrder).
		Order("id " + sortOrder).
		Find(&orders).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch orders.", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func (c *Controller) findCustomerOrder(ctx *gin.Context) (models.Order, bool) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return models.Order{}, false
	}
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return models.Order{}, false
	}
	if !c.authorizeCustomer(ctx, customerID) {
		return models.Order{}, false
	}

	var order models.Order
	err := withOrderItems(c.DB.WithContext(ctx.Request.Context())).
		Where("id = ? AND customer_id = ?", orderID, customerID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgOrderNotFound)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch order.", err)
		}
		return models.Order{}, false
	}
	return order, true
}

func (c *Controller) GetCustomerOrder(ctx *gin.Context) {
	order, ok := c.findCustomerOrder(ctx)
	if !ok {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order, "payable": order.Payable()})
}

// GetOrderNotifications reports the delivery state of an order's emails.
func (c *Controller) GetOrderNotifications(ctx *gin.Context) {
	order, ok := c.findCustomerOrder(ctx)
	if !ok {
		return
	}

	var jobs []models.NotificationJob
	if err := c.DB.WithContext(ctx.Request.Context()).Where("order_id = ?", order.ID).Order("id").Find(&jobs).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch notifications", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"notifications": jobs})
}

// GetOrders lists every order for the admin dashboard.
func (c *Controller) GetOrders(ctx *gin.Context) {
	p := parsePage(ctx, 15)
	query := c.DB.WithContext(ctx.Request.Context()).Model(&models.Order{})

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := ctx.Query("customerId"); customerID != "" {
		id, err := strconv.ParseUint(customerID, 10, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid customerId")
			return
		}
		query = query.Where("customer_id = ?", id)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", err)
		return
	}

	sortOrder := sortDirection(ctx)
	var orders []models.Order
	if err := withOrderItems(query).
		Preload("Customer").
		Order("created_at " + sortOrder).
		Order("id " + sortOrder).
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&orders).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"orders":   orders,
		"metadata": p.metadata(total),
	})
}

func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := parseIDParam(ctx, "orderId")
	if !ok {
		return
	}

	var data models.OrderStatusData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgOrderNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch order.", err)
		return
	}

	if err := db.Model(&order).Update("status", data.Status).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update order status", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}
