package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/notifier"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (c *Controller) checkCustomerExists(ctx *gin.Context, email, phone string) (bool, error) {
	var count int64
	err := c.DB.WithContext(ctx.Request.Context()).Model(&models.Customer{}).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	return count > 0, err
}

func (c *Controller) findCustomerByEmail(ctx *gin.Context, email string) (models.Customer, error) {
	var customer models.Customer
	err := c.DB.WithContext(ctx.Request.Context()).Where("email = ?", email).First(&customer).Error
	return customer, err
}

// Register creates a customer account.
func (c *Controller) Register(ctx *gin.Context) {
	var data models.RegisterData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}
	data.Email = normalizeEmail(data.Email)

	exists, err := c.checkCustomerExists(ctx, data.Email, data.Phone)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
		return
	}
	if exists {
		sendErrorResponse(ctx, http.StatusBadRequest, msgContactAlreadyInUse)
		return
	}

	hashedPassword, err := utils.HashPassword(data.Password)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, msgFailedToHashPassword, err)
		return
	}

	customer := models.Customer{
		Name:     data.Name,
		Email:    data.Email,
		Phone:    data.Phone,
		Password: hashedPassword,
		Address: models.Address{
			HouseNo:  data.HouseNo,
			Street:   data.Street,
			Landmark: data.Landmark,
			City:     data.City,
			State:    data.State,
			Pincode:  data.Pincode,
		},
	}

	if err := c.DB.WithContext(ctx.Request.Context()).Create(&customer).Error; err != nil {
		// Covers the race where two registrations pass the existence check.
		if isDuplicateKey(err) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgContactAlreadyInUse)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
		return
	}

	if job, err := notifier.WelcomeJob(customer); err == nil {
		c.enqueue(ctx, job)
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":    "Registration successful",
		"customerId": customer.ID,
	})
}

// Login exchanges an email and password for a bearer token. Unknown emails
// and wrong passwords get the same answer.
func (c *Controller) Login(ctx *gin.Context) {
	var data models.LoginData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	customer, err := c.findCustomerByEmail(ctx, normalizeEmail(data.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, msgInternalServerError, err)
		return
	}

	if err := utils.ComparePasswords(customer.Password, data.Password); err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := c.Tokens.Generate(customer)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, msgFailedToGenerateJWT, err)
		return
	}

	middlewares.LoggerFrom(ctx).WithField("customer_id", customer.ID).Info("Customer logged in")
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"token":    token,
		"customer": customer,
	})
}

// enqueue hands a job to the notifier. Failures are logged and counted but
// never fail the request that triggered them.
func (c *Controller) enqueue(ctx *gin.Context, job *models.NotificationJob) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Enqueue(ctx.Request.Context(), job); err != nil {
		c.Metrics.NotificationsQueued.WithLabelValues(job.Kind, "error").Inc()
		middlewares.LoggerFrom(ctx).WithError(err).WithField("kind", job.Kind).Error("Unable to enqueue notification")
		return
	}
	c.Metrics.NotificationsQueued.WithLabelValues(job.Kind, "ok").Inc()
}
