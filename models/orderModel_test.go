package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotal(t *testing.T) {
	items := []OrderItemData{
		{DishID: 1, Quantity: 2, Price: 100},
		{DishID: 2, Quantity: 1, Price: 50},
	}

	assert.Equal(t, 250.0, OrderTotal(items))
	assert.Equal(t, 200.0, items[0].LineAmount())
	assert.Zero(t, OrderTotal(nil))
}

func TestOrderPayable(t *testing.T) {
	order := Order{Amount: 250, Discount: 30}
	assert.Equal(t, 220.0, order.Payable())
}
