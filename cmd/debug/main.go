// Command debug runs the automation engine offline: in-memory storage, a
// simulated sensor feed, no broker, no database. Useful for exercising the
// controllers and analytics end to end from a terminal.
package main

import (
	"context"
	"log"
	"time"

	"github.com/temantani/smartfarm/internal/controller"
	"github.com/temantani/smartfarm/internal/ecoscore"
	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/sensor"
	"github.com/temantani/smartfarm/internal/service"
	"github.com/temantani/smartfarm/internal/store"
)

const farmerID = "debug-farmer"

func main() {
	log.Println("Starting debug run...")

	st := store.NewMemory()
	engine := service.NewEngine(st, nil, nil, service.Options{})
	ctx := context.Background()

	// Walk the device through onboarding to online.
	if _, err := engine.RegisterFarmer(ctx, farmerID); err != nil {
		log.Fatalf("Failed to register farmer: %v", err)
	}
	for _, ev := range []lifecycle.DeviceEvent{
		lifecycle.EventPurchase,
		lifecycle.EventConfirmShipment,
		lifecycle.EventConfirmDelivery,
		lifecycle.EventReportInstallation,
		lifecycle.EventConfirmInstallation,
		lifecycle.EventConnect,
	} {
		d, err := engine.ApplyLifecycleEvent(ctx, farmerID, ev)
		if err != nil {
			log.Fatalf("Lifecycle event %s failed: %v", ev, err)
		}
		log.Printf("Lifecycle: %s -> %s", ev, d.Status)
	}

	engine.SetPumpMode(farmerID, controller.ModeAutomatic)
	engine.SetSprayerMode(farmerID, controller.ModeAutomatic)

	// Feed simulated readings through both controllers.
	sim := sensor.NewSimulator(1)
	now := time.Now()
	for i := 0; i < 30; i++ {
		now = now.Add(5 * time.Second)
		irr, mist, err := engine.Tick(ctx, farmerID, sim.Next(now))
		if err != nil {
			log.Fatalf("Tick failed: %v", err)
		}
		log.Printf("Tick %2d: pump=%v sprayer=%s", i+1, irr.PumpOn, mist.Phase)
	}

	irr, mist := engine.Controls(farmerID)
	log.Printf("Pump log entries: %d, spray history: %d", len(irr.Log), len(mist.History))
	for _, entry := range controller.RecentFirst(irr.Log) {
		log.Printf("  %s %s", entry.Timestamp.Format(time.RFC3339), entry.Message)
	}

	report, err := engine.ComputeEcoScore(farmerID, ecoscore.Inputs{
		FertilizerKg: 5,
		PesticideKg:  2,
		EnergyKWh:    10,
		WasteKg:      3,
	})
	if err != nil {
		log.Fatalf("Eco score failed: %v", err)
	}
	log.Printf("Eco score: %.2f (%s), water used: %.1f L",
		report.Score.Total, report.Interpretation.Category, report.WaterUsage.TotalLiters())

	result, err := engine.RunForecast("Chili", []float64{10, 12, 14.4})
	if err != nil {
		log.Fatalf("Forecast failed: %v", err)
	}
	log.Printf("Forecast for %s: %v (avg growth %.3f)", result.Commodity, result.Projected, result.AvgGrowthRate)

	log.Println("Debug run finished.")
}
