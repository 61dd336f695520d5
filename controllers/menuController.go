package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/smartbite-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (c *Controller) GetMenus(ctx *gin.Context) {
	var menus []models.Menu
	if err := c.DB.WithContext(ctx.Request.Context()).Order("id").Find(&menus).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menus", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"menus": menus})
}

func (c *Controller) GetMenuDishes(ctx *gin.Context) {
	menuID, ok := parseIDParam(ctx, "menuId")
	if !ok {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var menu models.Menu
	if err := db.First(&menu, menuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgMenuNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu", err)
		return
	}

	query := db.Where("menu_id = ?", menuID)
	if ctx.Query("available") == "true" {
		query = query.Where("available = ?", true)
	}
	if err := query.Order("id").Find(&menu.Dishes).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch dishes", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"menu": menu})
}

func (c *Controller) CreateMenu(ctx *gin.Context) {
	var data models.MenuData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	menu := models.Menu{Name: data.Name, Icon: data.Icon, Description: data.Description}
	if err := c.DB.WithContext(ctx.Request.Context()).Create(&menu).Error; err != nil {
		if isDuplicateKey(err) {
			sendErrorResponse(ctx, http.StatusBadRequest, "Menu already exists")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create menu", err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Menu created", "menu": menu})
}

func (c *Controller) UpdateMenu(ctx *gin.Context) {
	menuID, ok := parseIDParam(ctx, "menuId")
	if !ok {
		return
	}

	var data models.MenuData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendValidationError(ctx, err)
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var menu models.Menu
	if err := db.First(&menu, menuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgMenuNotFound)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch menu", err)
		return
	}

	menu.Name = data.Name
	menu.Icon = data.Icon
	menu.Description = data.Description
	if err := db.Save(&menu).Error; err != nil {
		if isDuplicateKey(err) {
			sendErrorResponse(ctx, http.StatusBadRequest, "Menu already exists")
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update menu", err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Menu updated", "menu": menu})
}

// DeleteMenu refuses to remove a menu that still groups dishes, including
// deleted ones that past orders may reference.
func (c *Controller) DeleteMenu(ctx *gin.Context) {
	menuID, ok := parseIDParam(ctx, "menuId")
	if !ok {
		return
	}

	db := c.DB.WithContext(ctx.Request.Context())
	var dishes int64
	if err := db.Unscoped().Model(&models.Dish{}).Where("menu_id = ?", menuID).Count(&dishes).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete menu", err)
		return
	}
	if dishes > 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Menu still has dishes")
		return
	}

	result := db.Unscoped().Delete(&models.Menu{}, menuID)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Failed to delete menu", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, msgMenuNotFound)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Menu deleted successfully."})
}
