package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (c *Controller) GetProfile(ctx *gin.Context) {
	claims, _ := middlewares.ClaimsFrom(ctx)

	var customer models.Customer
	if err := c.DB.WithContext(ctx.Request.Context()).First(&customer, claims.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch profile", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"customer": customer})
}

func (c *Controller) UpdateProfile(ctx *gin.Context) {
	claims, _ := middlewares.ClaimsFrom(ctx)

	var data models.ProfileData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	updates := data.Updates()
	if len(updates) == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Nothing to update")
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	result := db.Model(&models.Customer{}).Where("id = ?", claims.CustomerID).Updates(updates)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgContactAlreadyInUse)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to update profile", result.Error)
		return
	}

	var customer models.Customer
	if err := db.First(&customer, claims.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch profile", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Profile updated", "customer": customer})
}

// GetCustomers lists customers for the admin dashboard.
func (c *Controller) GetCustomers(ctx *gin.Context) {
	p := parsePage(ctx, 20)
	query := c.DB.WithContext(ctx.Request.Context()).Model(&models.Customer{})

	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}
	if ctx.Query("admins") == "true" {
		query = query.Where("is_admin = ?", true)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch customers", err)
		return
	}

	var customers []models.Customer
	if err := query.Order("id " + sortDirection(ctx)).Limit(p.Limit).Offset(p.Offset).Find(&customers).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch customers", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"customers": customers,
		"metadata":  p.metadata(total),
	})
}

func (c *Controller) PromoteCustomer(ctx *gin.Context) {
	c.setAdmin(ctx, true)
}

func (c *Controller) DemoteCustomer(ctx *gin.Context) {
	c.setAdmin(ctx, false)
}

func (c *Controller) setAdmin(ctx *gin.Context, isAdmin bool) {
	customerID, ok := parseIDParam(ctx, "customerId")
	if !ok {
		return
	}

	claims, _ := middlewares.ClaimsFrom(ctx)
	if !isAdmin && claims != nil && claims.CustomerID == customerID {
		sendErrorResponse(ctx, http.StatusBadRequest, "You cannot demote yourself")
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var customer models.Customer
	if err := db.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCustomerNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch customer", err)
		return
	}

	if err := db.Model(&customer).Update("is_admin", isAdmin).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to update customer role", err)
		return
	}
	customer.IsAdmin = isAdmin

	message := "Customer promoted to admin"
	if !isAdmin {
		message = "Customer demoted from admin"
	}
	middlewares.LoggerFrom(ctx).WithField("customer_id", customerID).Info(message)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": message, "customer": customer})
}

// GetStats summarises the store for the admin dashboard.
func (c *Controller) GetStats(ctx *gin.Context) {
	db := c.DB.WithContext(ctx.Request.Context())

	var customers, orders, dishes int64
	if err := db.Model(&models.Customer{}).Count(&customers).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to compute stats", err)
		return
	}
	if err := db.Model(&models.Order{}).Count(&orders).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to compute stats", err)
		return
	}
	if err := db.Model(&models.Dish{}).Count(&dishes).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to compute stats", err)
		return
	}

	var revenue float64
	if err := db.Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(amount - discount), 0)").
		Scan(&revenue).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to compute stats", err)
		return
	}

	var byStatus []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to compute stats", err)
		return
	}

	stats := gin.H{
		"customers":      customers,
		"orders":         orders,
		"dishes":         dishes,
		"revenue":        revenue,
		"ordersByStatus": byStatus,
	}
	if c.Notifier != nil {
		if notifications, err := c.Notifier.Stats(ctx.Request.Context()); err == nil {
			stats["notifications"] = notifications
		} else {
			middlewares.LoggerFrom(ctx).WithError(err).Warn("Unable to read notification stats")
		}
	}

	sendJSONResponse(ctx, http.StatusOK, stats)
}
