package models

import "gorm.io/gorm"

// Review is unique per (customer, dish); a second review for the same dish
// replaces the first.
type Review struct {
	gorm.Model
	CustomerID uint      `json:"customerId" gorm:"not null;uniqueIndex:idx_review_customer_dish,priority:1"`
	Customer   *Customer `json:"customer,omitempty"`
	DishID     uint      `json:"dishId" gorm:"not null;index;uniqueIndex:idx_review_customer_dish,priority:2"`
	Dish       *Dish     `json:"dish,omitempty"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
}

type ReviewData struct {
	CustomerID uint   `json:"customerId" binding:"required"`
	DishID     uint   `json:"dishId" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment" binding:"max=1000"`
}
