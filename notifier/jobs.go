package notifier

import (
	"encoding/json"
	"fmt"

	"github.com/Kariqs/smartbite-api/models"
	"gorm.io/datatypes"
)

// OrderPlacedJob builds the confirmation email for a freshly placed order.
func OrderPlacedJob(customer models.Customer, order models.Order) (*models.NotificationJob, error) {
	items := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]any{
			"name":     item.DishName,
			"quantity": item.Quantity,
			"price":    item.Price,
			"amount":   item.Amount,
		})
	}

	payload, err := json.Marshal(map[string]any{
		"customerName": customer.Name,
		"orderId":      order.ID,
		"amount":       order.Amount,
		"discount":     order.Discount,
		"payable":      order.Payable(),
		"items":        items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order payload: %w", err)
	}

	orderID := order.ID
	return &models.NotificationJob{
		Kind:      models.NotificationKindOrderPlaced,
		Recipient: customer.Email,
		Subject:   fmt.Sprintf("SmartBite order #%d confirmed", order.ID),
		Payload:   datatypes.JSON(payload),
		OrderID:   &orderID,
	}, nil
}

func WelcomeJob(customer models.Customer) (*models.NotificationJob, error) {
	payload, err := json.Marshal(map[string]any{"customerName": customer.Name})
	if err != nil {
		return nil, fmt.Errorf("encode welcome payload: %w", err)
	}
	return &models.NotificationJob{
		Kind:      models.NotificationKindWelcome,
		Recipient: customer.Email,
		Subject:   "Welcome to SmartBite",
		Payload:   datatypes.JSON(payload),
	}, nil
}
