// Package app wires configuration, storage, messaging and the HTTP surface
// into one runnable unit.
package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/temantani/smartfarm/internal/config"
	"github.com/temantani/smartfarm/internal/controller"
	"github.com/temantani/smartfarm/internal/ecoscore"
	"github.com/temantani/smartfarm/internal/mqtt"
	"github.com/temantani/smartfarm/internal/scheduler"
	"github.com/temantani/smartfarm/internal/server"
	"github.com/temantani/smartfarm/internal/service"
	slacknotify "github.com/temantani/smartfarm/internal/slack"
	"github.com/temantani/smartfarm/internal/store"
	"github.com/temantani/smartfarm/internal/weather"
)

type App struct {
	cfg        *config.Config
	mqttClient *mqtt.Client
	scheduler  *scheduler.Scheduler
	httpServer *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	st := store.NewGorm(db)
	if err := st.Migrate(); err != nil {
		return nil, err
	}

	// MQTT is optional: without a broker the simulator supplies readings and
	// actuator commands stay local.
	var mqttClient *mqtt.Client
	if cfg.MQTT.Broker != "" {
		mqttClient, err = mqtt.NewClient(
			cfg.MQTT.Broker,
			cfg.MQTT.ClientID,
			cfg.MQTT.Username,
			cfg.MQTT.Password,
		)
		if err != nil {
			return nil, err
		}
	}

	notifier := slacknotify.NewNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID)

	engine := service.NewEngine(st, mqttClient, notifier, service.Options{
		Thresholds: controller.Thresholds{
			OnAboveC:  cfg.Controller.PumpOnAboveC,
			OffBelowC: cfg.Controller.PumpOffBelowC,
		},
		SprayDuration: cfg.SprayDuration(),
		TargetBand: controller.Band{
			Min: cfg.Controller.TargetHumidityMin,
			Max: cfg.Controller.TargetHumidityMax,
		},
		PumpFlowLPM: cfg.Controller.PumpFlowLPM,
		MistFlowLPS: cfg.Controller.MistFlowLPS,
		EcoIdeals:   ecoscore.DefaultIdeals(),
	})

	var telemetry scheduler.TelemetrySource
	if mqttClient != nil {
		telemetry = mqttClient
	}
	sched := scheduler.NewScheduler(engine, st, telemetry, cfg.SampleInterval(), cfg.WateringInterval())

	var weatherClient *weather.Client
	if cfg.Weather.APIKey != "" {
		weatherClient = weather.NewClient(cfg.Weather.APIKey)
	}

	httpServer := server.New(cfg, engine, weatherClient)

	return &App{
		cfg:        cfg,
		mqttClient: mqttClient,
		scheduler:  sched,
		httpServer: httpServer,
	}, nil
}

func (a *App) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.scheduler.Start()

	go func() {
		log.Printf("API server listening on %s", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	log.Println("Smart farm engine started. Press Ctrl+C to stop.")

	<-sigChan

	a.Stop()
	return nil
}

func (a *App) Stop() {
	log.Println("Shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}

	if a.mqttClient != nil {
		a.mqttClient.Close()
	}

	log.Println("Smart farm engine stopped")
}
