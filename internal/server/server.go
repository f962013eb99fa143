package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"

	"github.com/temantani/smartfarm/internal/config"
	"github.com/temantani/smartfarm/internal/service"
	"github.com/temantani/smartfarm/internal/weather"
)

type StatusResponse struct {
	Environment string `json:"environment"`
	Status      string `json:"status"`
}

// New creates the HTTP server and sets up the routes.
func New(cfg *config.Config, engine *service.Engine, weatherClient *weather.Client) *http.Server {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "OK")
	})

	// Slack events endpoint
	mux.HandleFunc("POST /slack/events", SlackEventsHandler(cfg))

	// Onboarding lifecycle
	mux.HandleFunc("POST /api/v1/farmers", RegisterFarmerHandler(engine))
	mux.HandleFunc("GET /api/v1/farmers/{id}/lifecycle", GetLifecycleHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/lifecycle/events", LifecycleEventHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/purchase", PurchaseHandler(engine))

	// Produce orders
	mux.HandleFunc("POST /api/v1/orders", CreateOrderHandler(engine))
	mux.HandleFunc("GET /api/v1/orders/{id}", GetOrderHandler(engine))
	mux.HandleFunc("POST /api/v1/orders/{id}/events", OrderEventHandler(engine))

	// Automation controls
	mux.HandleFunc("GET /api/v1/farmers/{id}/controls", ControlsHandler(engine))
	mux.HandleFunc("GET /api/v1/farmers/{id}/samples", SamplesHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/pump", PumpToggleHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/pump/mode", PumpModeHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/sprayer", SprayerToggleHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/sprayer/mode", SprayerModeHandler(engine))
	mux.HandleFunc("POST /api/v1/farmers/{id}/sprayer/target", SprayerTargetHandler(engine))

	// Analytics
	mux.HandleFunc("POST /api/v1/farmers/{id}/eco-score", EcoScoreHandler(engine))
	mux.HandleFunc("POST /api/v1/forecast", ForecastHandler(engine))
	mux.HandleFunc("GET /api/v1/weather", WeatherHandler(cfg, weatherClient))

	// Application status
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
		writeJSON(w, http.StatusOK, StatusResponse{Environment: env, Status: "ok"})
	})

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("API Server configured to listen on %s", addr)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
	})
	handler := c.Handler(mux)

	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] Failed to encode response: %v", err)
	}
}
