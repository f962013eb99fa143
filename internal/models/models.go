package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/temantani/smartfarm/internal/lifecycle"
)

// DeviceLifecycle is the persisted onboarding state, one row per
// farmer-role account. Status only moves through the lifecycle package.
type DeviceLifecycle struct {
	gorm.Model
	FarmerID       string                 `gorm:"uniqueIndex;not null"`
	Status         lifecycle.DeviceStatus `gorm:"type:varchar(40);not null"`
	LastTransition time.Time
}

func (DeviceLifecycle) TableName() string {
	return "device_lifecycles"
}

// DevicePurchase records a device package purchase, created on the purchase
// transition.
type DevicePurchase struct {
	gorm.Model
	PurchaseID  string `gorm:"uniqueIndex;not null"`
	FarmerID    string `gorm:"index;not null"`
	PackageName string `gorm:"type:varchar(60);not null"`
	PurchasedAt time.Time
}

func (DevicePurchase) TableName() string {
	return "device_purchases"
}

// ProduceOrder is one marketplace purchase order. Orders are created
// post-payment, so they start in processing.
type ProduceOrder struct {
	gorm.Model
	OrderID   string                `gorm:"uniqueIndex;not null"`
	BuyerID   string                `gorm:"index;not null"`
	FarmerID  string                `gorm:"index;not null"`
	Total     float64               `gorm:"not null"`
	Status    lifecycle.OrderStatus `gorm:"type:varchar(20);not null"`
	OrderedAt time.Time
}

func (ProduceOrder) TableName() string {
	return "produce_orders"
}

// PumpLogEntry is one automatic pump transition, appended in strictly
// increasing timestamp order.
type PumpLogEntry struct {
	gorm.Model
	FarmerID  string `gorm:"index;not null"`
	Timestamp time.Time
	Message   string
}

func (PumpLogEntry) TableName() string {
	return "pump_log_entries"
}

// SprayEvent is one completed mist spray.
type SprayEvent struct {
	gorm.Model
	FarmerID        string `gorm:"index;not null"`
	StartedAt       time.Time
	DurationSeconds int `gorm:"not null"`
}

func (SprayEvent) TableName() string {
	return "spray_events"
}
