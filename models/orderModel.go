package models

import "gorm.io/gorm"

const (
	OrderStatusPending   = "Pending"
	OrderStatusPreparing = "Preparing"
	OrderStatusOnTheWay  = "Out for delivery"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

type Order struct {
	gorm.Model
	CustomerID uint        `json:"customerId" gorm:"index;not null"`
	Customer   *Customer   `json:"customer,omitempty"`
	Amount     float64     `json:"amount" gorm:"not null"`
	Discount   float64     `json:"discount"`
	Status     string      `json:"status" gorm:"size:32;not null"`
	Items      []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Payable is what the customer is charged once the discount is applied.
func (o Order) Payable() float64 {
	return o.Amount - o.Discount
}

type OrderItem struct {
	gorm.Model
	OrderID  uint    `json:"orderId" gorm:"index;not null"`
	DishID   uint    `json:"dishId" gorm:"index;not null"`
	Dish     *Dish   `json:"dish,omitempty"`
	DishName string  `json:"dishName" gorm:"size:150"`
	Quantity int     `json:"quantity" gorm:"not null"`
	Price    float64 `json:"price" gorm:"not null"`
	Amount   float64 `json:"amount" gorm:"not null"`
}

type OrderItemData struct {
	DishID   uint    `json:"dishId" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"min=0"`
}

type PlaceOrderData struct {
	CustomerID uint            `json:"customerId" binding:"required"`
	Items      []OrderItemData `json:"items" binding:"required,min=1,dive"`
	Discount   float64         `json:"discount" binding:"min=0"`
}

type OrderStatusData struct {
	Status string `json:"status" binding:"required,oneof=Pending Preparing 'Out for delivery' Delivered Cancelled"`
}

// LineAmount is the price of a single order line.
func (i OrderItemData) LineAmount() float64 {
	return i.Price * float64(i.Quantity)
}

// OrderTotal sums price × quantity over every line.
func OrderTotal(items []OrderItemData) float64 {
	var total float64
	for _, item := range items {
		total += item.LineAmount()
	}
	return total
}
