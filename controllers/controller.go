package controllers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/Kariqs/smartbite-api/utils"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	mysqlDuplicateEntry = 1062

	// Standard response messages
	msgInvalidInput         = "invalid input"
	msgInternalServerError  = "Internal server error"
	msgForbidden            = "You are not allowed to access this resource"
	msgDishNotFound         = "Dish not found"
	msgCustomerNotFound     = "Customer not found"
	msgOrderNotFound        = "Order not found"
	msgMenuNotFound         = "Menu not found"
	msgReviewNotFound       = "Review not found"
	msgCartItemNotFound     = "Cart item not found"
	msgContactAlreadyInUse  = "Email or phone already in use"
	msgInvalidCredentials   = "Invalid email or password"
	msgFailedToGenerateJWT  = "failed to generate token"
	msgFailedToHashPassword = "failed to hash password"
)

// Notifier accepts outbound notification jobs.
type Notifier interface {
	Enqueue(ctx context.Context, job *models.NotificationJob) error
	Stats(ctx context.Context) (map[string]int64, error)
}

// Controller carries the dependencies shared by every handler.
type Controller struct {
	DB        *gorm.DB
	Tokens    *utils.TokenManager
	Notifier  Notifier
	Publisher utils.Publisher
	Uploader  utils.Uploader
	Metrics   *middlewares.Metrics
	Log       *logrus.Logger
}

// New fills in no-op collaborators for anything optional left unset.
func New(c Controller) *Controller {
	if c.Publisher == nil {
		c.Publisher = utils.NoopPublisher{}
	}
	if c.Metrics == nil {
		c.Metrics = middlewares.NewMetrics()
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	return &c
}

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"error": message})
}

func sendValidationError(ctx *gin.Context, err error) {
	sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"error": msgInvalidInput, "details": err.Error()})
}

// respondWithError logs the cause and sends only the public message.
func respondWithError(ctx *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = ctx.Error(err)
		middlewares.LoggerFrom(ctx).WithError(err).Error(message)
	}
	sendErrorResponse(ctx, status, message)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse "+name)
		return 0, false
	}
	return uint(id), true
}

type page struct {
	Page   int
	Limit  int
	Offset int
}

func parsePage(ctx *gin.Context, defaultLimit int) page {
	p, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || p < 1 {
		p = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page{Page: p, Limit: limit, Offset: (p - 1) * limit}
}

func (p page) metadata(total int64) gin.H {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return gin.H{
		"total":        total,
		"currentPage":  p.Page,
		"limit":        p.Limit,
		"totalPages":   totalPages,
		"hasPrevPage":  p.Page > 1,
		"hasNextPage":  totalPages > p.Page,
		"previousPage": p.Page - 1,
		"nextPage":     p.Page + 1,
	}
}

func sortDirection(ctx *gin.Context) string {
	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return sortOrder
}

// isAdmin trusts the token only as far as the current database row agrees.
func (c *Controller) isAdmin(ctx *gin.Context, claims *utils.Claims) bool {
	if !claims.IsAdmin {
		return false
	}
	var customer models.Customer
	err := c.DB.WithContext(ctx.Request.Context()).Select("id", "is_admin").First(&customer, claims.CustomerID).Error
	return err == nil && customer.IsAdmin
}

// authorizeCustomer lets a caller act on their own records, or an admin on
// anyone's. It writes the error response when access is refused.
func (c *Controller) authorizeCustomer(ctx *gin.Context, customerID uint) bool {
	claims, ok := middlewares.ClaimsFrom(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Authorization token required")
		return false
	}
	if claims.CustomerID == customerID || c.isAdmin(ctx, claims) {
		return true
	}
	sendErrorResponse(ctx, http.StatusForbidden, msgForbidden)
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
