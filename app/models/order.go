package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "Pending"
	OrderStatusCODPending = "COD - Pending"
	OrderStatusConfirmed  = "Confirmed"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

const (
	DeliveryModeSelf    = "self"
	DeliveryModeShipped = "shipped"
)

// Order keeps Total and Items as the strings submitted at checkout; they are
// not normalised into line items.
type Order struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Phone         string    `gorm:"size:20;not null" json:"phone"`
	Email         string    `gorm:"size:100" json:"email"`
	HouseNo       string    `gorm:"size:100" json:"house_no"`
	Address       string    `gorm:"type:text;not null" json:"address"`
	Landmark      string    `gorm:"size:100" json:"landmark"`
	Pincode       string    `gorm:"size:10" json:"pincode"`
	CustomDetails string    `gorm:"type:text" json:"custom_details"`
	Total         string    `gorm:"size:20;not null" json:"total"`
	Items         string    `gorm:"type:text;not null" json:"items"`
	Status        string    `gorm:"size:50;not null" json:"status"`
	DeliveryMode  string    `gorm:"size:20;not null" json:"delivery_mode"`
	DateOrdered   time.Time `gorm:"index" json:"date_ordered"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.DeliveryMode == "" {
		o.DeliveryMode = DeliveryModeSelf
	}
	if o.DateOrdered.IsZero() {
		o.DateOrdered = time.Now().UTC()
	}
	return
}
