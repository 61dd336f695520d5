package models

import "gorm.io/gorm"

const (
	DishTypeVeg    = "veg"
	DishTypeNonVeg = "non-veg"
)

type Menu struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Icon        string `json:"icon" gorm:"size:255"`
	Description string `json:"description" gorm:"type:text"`
	Dishes      []Dish `json:"dishes,omitempty" gorm:"foreignKey:MenuID"`
}

type Dish struct {
	gorm.Model
	Name        string  `json:"name" gorm:"size:150;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Price       float64 `json:"price" gorm:"not null"`
	ImageURL    string  `json:"imageUrl" gorm:"size:512"`
	MenuID      uint    `json:"menuId" gorm:"index"`
	Menu        *Menu   `json:"menu,omitempty"`
	Type        string  `json:"type" gorm:"size:10;not null"`
	Available   bool    `json:"available"`
}

type MenuData struct {
	Name        string `json:"name" binding:"required,max=100"`
	Icon        string `json:"icon" binding:"max=255"`
	Description string `json:"description"`
}

type DishData struct {
	Name        string  `json:"name" binding:"required,max=150"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	ImageURL    string  `json:"imageUrl" binding:"omitempty,url"`
	MenuID      uint    `json:"menuId" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=veg non-veg"`
	Available   *bool   `json:"available"`
}

// Apply copies the request onto the dish. A missing availability flag
// defaults to true on create and is left unchanged on update.
func (d DishData) Apply(dish *Dish) {
	dish.Name = d.Name
	dish.Description = d.Description
	dish.Price = d.Price
	if d.ImageURL != "" {
		dish.ImageURL = d.ImageURL
	}
	dish.MenuID = d.MenuID
	dish.Type = d.Type
	if d.Available != nil {
		dish.Available = *d.Available
	} else if dish.ID == 0 {
		dish.Available = true
	}
}

// DefaultMenus is the reference data seeded into an empty menus table.
var DefaultMenus = []Menu{
	{Name: "Starters", Icon: "starter.png", Description: "Small plates to begin with"},
	{Name: "Main Course", Icon: "main-course.png", Description: "Hearty mains and curries"},
	{Name: "Breads & Rice", Icon: "breads.png", Description: "Rotis, naans and biryanis"},
	{Name: "Desserts", Icon: "dessert.png", Description: "Something sweet"},
	{Name: "Beverages", Icon: "beverage.png", Description: "Hot and cold drinks"},
}
