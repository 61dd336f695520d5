package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationKindOrderPlaced = "order_placed"
	NotificationKindWelcome     = "welcome"

	NotificationStatusPending    = "pending"
	NotificationStatusInProgress = "in_progress"
	NotificationStatusSent       = "sent"
	NotificationStatusFailed     = "failed"
)

// NotificationJob is an outbound email waiting for, or done with, delivery.
type NotificationJob struct {
	gorm.Model
	Kind      string         `json:"kind" gorm:"size:32;index;not null"`
	Recipient string         `json:"recipient" gorm:"size:191;not null"`
	Subject   string         `json:"subject" gorm:"size:255"`
	Payload   datatypes.JSON `json:"payload"`
	Status    string         `json:"status" gorm:"size:16;index;not null"`
	Attempts  int            `json:"attempts"`
	LastError string         `json:"lastError" gorm:"type:text"`
	ClaimedAt *time.Time     `json:"claimedAt"`
	SentAt    *time.Time     `json:"sentAt"`
	OrderID   *uint          `json:"orderId" gorm:"index"`
}
