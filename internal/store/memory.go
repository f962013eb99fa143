package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/models"
	"github.com/temantani/smartfarm/internal/service"
)

// Memory is an in-memory Store for the debug command and tests. The engine
// is persistence-agnostic, so the two implementations are interchangeable.
type Memory struct {
	mu        sync.Mutex
	devices   map[string]models.DeviceLifecycle
	purchases []models.DevicePurchase
	orders    map[string]models.ProduceOrder
	pumpLog   []models.PumpLogEntry
	sprays    []models.SprayEvent
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		devices: make(map[string]models.DeviceLifecycle),
		orders:  make(map[string]models.ProduceOrder),
	}
}

func (s *Memory) CreateDevice(_ context.Context, d models.DeviceLifecycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[d.FarmerID]; ok {
		return fmt.Errorf("device lifecycle already exists for farmer %s", d.FarmerID)
	}
	s.devices[d.FarmerID] = d
	return nil
}

func (s *Memory) GetDevice(_ context.Context, farmerID string) (models.DeviceLifecycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[farmerID]
	if !ok {
		return models.DeviceLifecycle{}, service.ErrUnknownFarmer
	}
	return d, nil
}

func (s *Memory) SaveDevice(_ context.Context, d models.DeviceLifecycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.FarmerID] = d
	return nil
}

func (s *Memory) ListDevicesByStatus(_ context.Context, status lifecycle.DeviceStatus) ([]models.DeviceLifecycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DeviceLifecycle
	for _, d := range s.devices {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Memory) CreatePurchase(_ context.Context, p models.DevicePurchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases = append(s.purchases, p)
	return nil
}

func (s *Memory) CreateOrder(_ context.Context, o models.ProduceOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.OrderID]; ok {
		return fmt.Errorf("order %s already exists", o.OrderID)
	}
	s.orders[o.OrderID] = o
	return nil
}

func (s *Memory) GetOrder(_ context.Context, orderID string) (models.ProduceOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return models.ProduceOrder{}, service.ErrUnknownOrder
	}
	return o, nil
}

func (s *Memory) SaveOrder(_ context.Context, o models.ProduceOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderID] = o
	return nil
}

func (s *Memory) AppendPumpLog(_ context.Context, e models.PumpLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pumpLog = append(s.pumpLog, e)
	return nil
}

func (s *Memory) AppendSprayEvent(_ context.Context, e models.SprayEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sprays = append(s.sprays, e)
	return nil
}

// PumpLog returns the persisted pump log entries in append order.
func (s *Memory) PumpLog() []models.PumpLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PumpLogEntry, len(s.pumpLog))
	copy(out, s.pumpLog)
	return out
}

// SprayEvents returns the persisted spray events in append order.
func (s *Memory) SprayEvents() []models.SprayEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SprayEvent, len(s.sprays))
	copy(out, s.sprays)
	return out
}

// Purchases returns the recorded device purchases.
func (s *Memory) Purchases() []models.DevicePurchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DevicePurchase, len(s.purchases))
	copy(out, s.purchases)
	return out
}
