package service

import (
	"context"
	"errors"

	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/models"
)

// Store abstracts persistence so the engine never reaches into ambient
// global state: entities are loaded, transformed, and saved back.
type Store interface {
	CreateDevice(ctx context.Context, d models.DeviceLifecycle) error
	GetDevice(ctx context.Context, farmerID string) (models.DeviceLifecycle, error)
	SaveDevice(ctx context.Context, d models.DeviceLifecycle) error
	ListDevicesByStatus(ctx context.Context, status lifecycle.DeviceStatus) ([]models.DeviceLifecycle, error)

	CreatePurchase(ctx context.Context, p models.DevicePurchase) error

	CreateOrder(ctx context.Context, o models.ProduceOrder) error
	GetOrder(ctx context.Context, orderID string) (models.ProduceOrder, error)
	SaveOrder(ctx context.Context, o models.ProduceOrder) error

	AppendPumpLog(ctx context.Context, e models.PumpLogEntry) error
	AppendSprayEvent(ctx context.Context, e models.SprayEvent) error
}

// Sentinel lookup errors, mapped by Store implementations.
var (
	ErrUnknownFarmer = errors.New("unknown farmer")
	ErrUnknownOrder  = errors.New("unknown order")
)
