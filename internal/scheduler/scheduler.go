package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/sensor"
	"github.com/temantani/smartfarm/internal/service"
)

// TelemetrySource supplies live device readings. Nil means simulate only.
type TelemetrySource interface {
	LatestSample(farmerID string) (sensor.Sample, bool)
	SubscribeTelemetry(farmerID string)
}

// Scheduler drives the automation loop: a sensor job that feeds every online
// device a fresh reading, and a faster watering job that nudges humidity up
// while a pump runs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	engine    *service.Engine
	store     service.Store
	telemetry TelemetrySource

	sampleInterval   time.Duration
	wateringInterval time.Duration

	mu         sync.Mutex
	simulators map[string]*sensor.Simulator
	subscribed map[string]bool
}

// NewScheduler creates a scheduler. telemetry may be nil; devices then run on
// simulated readings alone.
func NewScheduler(engine *service.Engine, store service.Store, telemetry TelemetrySource, sampleInterval, wateringInterval time.Duration) *Scheduler {
	if sampleInterval <= 0 {
		sampleInterval = 5 * time.Second
	}
	if wateringInterval <= 0 {
		wateringInterval = 3 * time.Second
	}
	return &Scheduler{
		scheduler:        gocron.NewScheduler(time.UTC),
		engine:           engine,
		store:            store,
		telemetry:        telemetry,
		sampleInterval:   sampleInterval,
		wateringInterval: wateringInterval,
		simulators:       make(map[string]*sensor.Simulator),
		subscribed:       make(map[string]bool),
	}
}

// Start begins the scheduler's job execution.
func (s *Scheduler) Start() {
	log.Printf("Scheduling sensor job every %v and watering job every %v", s.sampleInterval, s.wateringInterval)
	if _, err := s.scheduler.Every(s.sampleInterval).Do(s.RunSensorJob); err != nil {
		log.Fatalf("Failed to schedule sensor job: %v", err)
	}
	if _, err := s.scheduler.Every(s.wateringInterval).Do(s.RunWateringJob); err != nil {
		log.Fatalf("Failed to schedule watering job: %v", err)
	}
	s.scheduler.StartAsync()
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.scheduler.Stop()
}

// RunSensorJob produces one reading per online device and runs the
// controllers on it. It can also be called directly for debugging purposes.
func (s *Scheduler) RunSensorJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.sampleInterval)
	defer cancel()

	devices, err := s.store.ListDevicesByStatus(ctx, lifecycle.StatusDeviceOnline)
	if err != nil {
		log.Printf("Failed to list online devices: %v", err)
		return
	}

	now := time.Now()
	for _, d := range devices {
		sample, live := s.liveSample(d.FarmerID)
		if !live {
			sample = s.simulator(d.FarmerID).Next(now)
		}
		if _, _, err := s.engine.Tick(ctx, d.FarmerID, sample); err != nil {
			log.Printf("Sensor tick failed for farmer %s: %v", d.FarmerID, err)
		}
	}
}

// RunWateringJob feeds watering readings to devices whose pump is running,
// raising humidity faster than the regular sensor cadence.
func (s *Scheduler) RunWateringJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.wateringInterval)
	defer cancel()

	devices, err := s.store.ListDevicesByStatus(ctx, lifecycle.StatusDeviceOnline)
	if err != nil {
		log.Printf("Failed to list online devices: %v", err)
		return
	}

	now := time.Now()
	for _, d := range devices {
		if !s.engine.PumpOn(d.FarmerID) {
			continue
		}
		sample := s.simulator(d.FarmerID).NextWatering(now)
		if _, _, err := s.engine.Tick(ctx, d.FarmerID, sample); err != nil {
			log.Printf("Watering tick failed for farmer %s: %v", d.FarmerID, err)
		}
	}
}

// liveSample returns broker telemetry when a device publishes it, subscribing
// lazily the first time a farmer shows up online.
func (s *Scheduler) liveSample(farmerID string) (sensor.Sample, bool) {
	if s.telemetry == nil {
		return sensor.Sample{}, false
	}
	s.mu.Lock()
	if !s.subscribed[farmerID] {
		s.subscribed[farmerID] = true
		s.mu.Unlock()
		s.telemetry.SubscribeTelemetry(farmerID)
	} else {
		s.mu.Unlock()
	}
	return s.telemetry.LatestSample(farmerID)
}

func (s *Scheduler) simulator(farmerID string) *sensor.Simulator {
	s.mu.Lock()
	defer s.mu.Unlock()
	sim, ok := s.simulators[farmerID]
	if !ok {
		sim = sensor.NewSimulator(0)
		s.simulators[farmerID] = sim
	}
	return sim
}
