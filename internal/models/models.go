// internal/models/models.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// Order statuses. The set is closed on the storefront side, but unknown
// values may still reach this service (e.g. a migration adds a status before
// it is redeployed), so nothing here rejects a status it does not know.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// Notification event types.
const (
	TypeStatusUpdate  = "status_update"
	TypeOrderReceived = "order_received"
)

// ShippingAddress carries the contact fields entered at checkout. Every
// field is optional; a guest can check out with only a phone number.
type ShippingAddress struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
}

// Order is the slice of the storefront order this service reads and
// updates. Total is in XOF, which has no decimal minor units.
type Order struct {
	ID        string          `json:"id" gorm:"primaryKey"`
	Status    string          `json:"status"`
	Total     int64           `json:"total"`
	UserID    *string         `json:"user_id"` // nil means guest order
	Shipping  ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsGuest reports whether the order belongs to no registered account.
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// ChannelError records a single channel's failure during a fan-out.
type ChannelError struct {
	Type  string `json:"type"` // "email", "whatsapp" or "internal"
	Error string `json:"error"`
}

// NotificationData is the structured payload persisted with every
// NotificationEvent. OrderID is always written as a string; older records
// produced by the previous storefront may hold a JSON number instead.
type NotificationData struct {
	OrderID                string         `json:"orderId"`
	CustomerName           string         `json:"customerName,omitempty"`
	CustomerEmail          string         `json:"customerEmail,omitempty"`
	CustomerPhone          string         `json:"customerPhone,omitempty"`
	PreviousStatus         string         `json:"previousStatus,omitempty"`
	NewStatus              string         `json:"newStatus"`
	StatusConfig           any            `json:"statusConfig,omitempty"`
	EmailSent              bool           `json:"emailSent"`
	WhatsappSent           bool           `json:"whatsappSent"`
	SentAt                 time.Time      `json:"sentAt"`
	Errors                 []ChannelError `json:"errors"`
	IsCustomerNotification bool           `json:"isCustomerNotification,omitempty"`
}

// NotificationEvent is one persisted notification attempt. Events are
// append-only: the core never mutates or deletes them.
type NotificationEvent struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Type         string         `json:"type" gorm:"index"`
	TargetUserID *string        `json:"target_user_id"` // nil targets the admin inbox
	Data         datatypes.JSON `json:"data"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    time.Time      `json:"created_at"`
}

// StatusChangeMessage is the message published to RabbitMQ when an order's
// status changes (or when a fresh order is created, with an empty
// PreviousStatus).
type StatusChangeMessage struct {
	OrderID        string `json:"order_id"`
	NewStatus      string `json:"new_status"`
	PreviousStatus string `json:"previous_status,omitempty"`
}
