// Package store provides the persistence implementations behind the
// engine's Store interface.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/models"
	"github.com/temantani/smartfarm/internal/service"
)

// Gorm persists engine entities in PostgreSQL.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Migrate creates or updates the schema for every engine table.
func (s *Gorm) Migrate() error {
	return s.db.AutoMigrate(
		&models.DeviceLifecycle{},
		&models.DevicePurchase{},
		&models.ProduceOrder{},
		&models.PumpLogEntry{},
		&models.SprayEvent{},
	)
}

func (s *Gorm) CreateDevice(ctx context.Context, d models.DeviceLifecycle) error {
	return s.db.WithContext(ctx).Create(&d).Error
}

func (s *Gorm) GetDevice(ctx context.Context, farmerID string) (models.DeviceLifecycle, error) {
	var d models.DeviceLifecycle
	err := s.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DeviceLifecycle{}, service.ErrUnknownFarmer
	}
	return d, err
}

func (s *Gorm) SaveDevice(ctx context.Context, d models.DeviceLifecycle) error {
	return s.db.WithContext(ctx).Save(&d).Error
}

func (s *Gorm) ListDevicesByStatus(ctx context.Context, status lifecycle.DeviceStatus) ([]models.DeviceLifecycle, error) {
	var out []models.DeviceLifecycle
	err := s.db.WithContext(ctx).Where("status = ?", status).Find(&out).Error
	return out, err
}

func (s *Gorm) CreatePurchase(ctx context.Context, p models.DevicePurchase) error {
	return s.db.WithContext(ctx).Create(&p).Error
}

func (s *Gorm) CreateOrder(ctx context.Context, o models.ProduceOrder) error {
	return s.db.WithContext(ctx).Create(&o).Error
}

func (s *Gorm) GetOrder(ctx context.Context, orderID string) (models.ProduceOrder, error) {
	var o models.ProduceOrder
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProduceOrder{}, service.ErrUnknownOrder
	}
	return o, err
}

func (s *Gorm) SaveOrder(ctx context.Context, o models.ProduceOrder) error {
	return s.db.WithContext(ctx).Save(&o).Error
}

func (s *Gorm) AppendPumpLog(ctx context.Context, e models.PumpLogEntry) error {
	return s.db.WithContext(ctx).Create(&e).Error
}

func (s *Gorm) AppendSprayEvent(ctx context.Context, e models.SprayEvent) error {
	return s.db.WithContext(ctx).Create(&e).Error
}
