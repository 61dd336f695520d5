package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Kariqs/smartbite-api/middlewares"
	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxImageSize = 5 << 20

func (c *Controller) menuExists(ctx *gin.Context, menuID uint) (bool, error) {
	var count int64
	err := c.DB.WithContext(ctx.Request.Context()).Model(&models.Menu{}).Where("id = ?", menuID).Count(&count).Error
	return count > 0, err
}

// GetDishes lists dishes with optional menu, type, availability and name
// filters.
func (c *Controller) GetDishes(ctx *gin.Context) {
	p := parsePage(ctx, 20)
	query := c.DB.WithContext(ctx.Request.Context()).Model(&models.Dish{})

	if menuID := ctx.Query("menuId"); menuID != "" {
		id, err := strconv.ParseUint(menuID, 10, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid menuId")
			return
		}
		query = query.Where("menu_id = ?", id)
	}
	if dishType := ctx.Query("type"); dishType != "" {
		if dishType != models.DishTypeVeg && dishType != models.DishTypeNonVeg {
			sendErrorResponse(ctx, http.StatusBadRequest, "type must be veg or non-veg")
			return
		}
		query = query.Where("type = ?", dishType)
	}
	if available := ctx.Query("available"); available != "" {
		flag, err := strconv.ParseBool(available)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "Invalid available flag")
			return
		}
		query = query.Where("available = ?", flag)
	}
	if search := ctx.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch dishes", err)
		return
	}

	var dishes []models.Dish
	if err := query.Preload("Menu").Order("id").Limit(p.Limit).Offset(p.Offset).Find(&dishes).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch dishes", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"dishes":   dishes,
		"metadata": p.metadata(total),
	})
}

func (c *Controller) GetDish(ctx *gin.Context) {
	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}

	var dish models.Dish
	if err := c.DB.WithContext(ctx.Request.Context()).Preload("Menu").First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgDishNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve dish", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"dish": dish})
}

func (c *Controller) CreateDish(ctx *gin.Context) {
	var data models.DishData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	exists, err := c.menuExists(ctx, data.MenuID)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate menu", err)
		return
	}
	if !exists {
		sendErrorResponse(ctx, http.StatusBadRequest, msgMenuNotFound)
		return
	}

	var dish models.Dish
	data.Apply(&dish)
	if err := c.DB.WithContext(ctx.Request.Context()).Create(&dish).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create dish", err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Dish created", "dish": dish})
}

func (c *Controller) UpdateDish(ctx *gin.Context) {
	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}

	var data models.DishData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var dish models.Dish
	if err := db.First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgDishNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve dish", err)
		return
	}

	exists, err := c.menuExists(ctx, data.MenuID)
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate menu", err)
		return
	}
	if !exists {
		sendErrorResponse(ctx, http.StatusBadRequest, msgMenuNotFound)
		return
	}

	data.Apply(&dish)
	dish.Menu = nil
	if err := db.Save(&dish).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update dish", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Dish updated", "dish": dish})
}

// DeleteDish soft-deletes the dish so past orders keep resolving it, and
// drops it from every cart.
func (c *Controller) DeleteDish(ctx *gin.Context) {
	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}

	err := c.DB.WithContext(ctx.Request.Context()).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Dish{}, dishID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Unscoped().Where("dish_id = ?", dishID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgDishNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete dish", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Dish deleted successfully."})
}

// UploadDishImage stores the multipart "image" file and points the dish at it.
func (c *Controller) UploadDishImage(ctx *gin.Context) {
	if c.Uploader == nil {
		sendErrorResponse(ctx, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	dishID, ok := parseIDParam(ctx, "dishId")
	if !ok {
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "No image uploaded")
		return
	}
	if file.Size > maxImageSize {
		sendErrorResponse(ctx, http.StatusBadRequest, "Image exceeds the 5MB limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		sendErrorResponse(ctx, http.StatusBadRequest, "Uploaded file is not an image")
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var dish models.Dish
	if err := db.First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgDishNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to validate dish", err)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Unable to read image", err)
		return
	}
	defer f.Close()

	key := fmt.Sprintf("dishes/%d-%s-%s", dishID, time.Now().Format("20060102150405"), filepath.Base(file.Filename))
	location, err := c.Uploader.Upload(ctx.Request.Context(), key, f, contentType)
	if err != nil {
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", err)
		return
	}

	if err := db.Model(&dish).Update("image_url", location).Error; err != nil {
		// The object is already stored; report the URL so it can be retried.
		middlewares.LoggerFrom(ctx).WithError(err).WithField("url", location).Error("Image uploaded but not saved on dish")
		sendJSONResponse(ctx, http.StatusInternalServerError, gin.H{"error": "Image uploaded but dish not updated", "imageUrl": location})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Image uploaded", "imageUrl": location})
}
