package models

import "gorm.io/gorm"

type CartItem struct {
	gorm.Model
	CustomerID uint    `json:"customerId" gorm:"not null;uniqueIndex:idx_cart_customer_dish,priority:1"`
	DishID     uint    `json:"dishId" gorm:"not null;uniqueIndex:idx_cart_customer_dish,priority:2"`
	Dish       *Dish   `json:"dish,omitempty"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	Amount     float64 `json:"amount" gorm:"not null"`
}

type CartItemData struct {
	CustomerID uint `json:"customerId" binding:"required"`
	DishID     uint `json:"dishId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

// CartUpdateData sets an absolute quantity; zero removes the line.
type CartUpdateData struct {
	CustomerID uint `json:"customerId" binding:"required"`
	DishID     uint `json:"dishId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"min=0"`
}
