package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/temantani/smartfarm/internal/config"
	"github.com/temantani/smartfarm/internal/controller"
	"github.com/temantani/smartfarm/internal/ecoscore"
	"github.com/temantani/smartfarm/internal/forecast"
	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/models"
	"github.com/temantani/smartfarm/internal/service"
	"github.com/temantani/smartfarm/internal/weather"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps engine errors onto HTTP status codes: unknown entities are
// 404, rejected transitions and ownership conflicts are 409, bad domain input
// is 422, anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnknownFarmer), errors.Is(err, service.ErrUnknownOrder):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition), errors.Is(err, service.ErrAutoModeActive):
		status = http.StatusConflict
	case errors.Is(err, forecast.ErrInvalidInput), errors.Is(err, service.ErrNoSensorData), errors.Is(err, service.ErrInvalidBand):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Printf("[ERROR] Request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// --- Lifecycle ---

type lifecycleResponse struct {
	FarmerID       string                 `json:"farmerId"`
	Status         lifecycle.DeviceStatus `json:"status"`
	StatusLabel    string                 `json:"statusLabel"`
	LastTransition time.Time              `json:"lastTransition"`
}

func toLifecycleResponse(d models.DeviceLifecycle) lifecycleResponse {
	return lifecycleResponse{
		FarmerID:       d.FarmerID,
		Status:         d.Status,
		StatusLabel:    DeviceStatusLabel(d.Status),
		LastTransition: d.LastTransition,
	}
}

type registerFarmerRequest struct {
	FarmerID string `json:"farmerId"`
}

// RegisterFarmerHandler creates the onboarding record for a new farmer.
func RegisterFarmerHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerFarmerRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.FarmerID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "farmerId is required"})
			return
		}
		d, err := engine.RegisterFarmer(r.Context(), req.FarmerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLifecycleResponse(d))
	}
}

// GetLifecycleHandler returns the current onboarding state.
func GetLifecycleHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := engine.GetLifecycle(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLifecycleResponse(d))
	}
}

type lifecycleEventRequest struct {
	Event lifecycle.DeviceEvent `json:"event"`
}

// LifecycleEventHandler advances the onboarding state machine by one event.
func LifecycleEventHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycleEventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !slices.Contains(lifecycle.DeviceEvents(), req.Event) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown lifecycle event"})
			return
		}
		d, err := engine.ApplyLifecycleEvent(r.Context(), r.PathValue("id"), req.Event)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLifecycleResponse(d))
	}
}

type purchaseRequest struct {
	PackageName string `json:"packageName"`
}

type purchaseResponse struct {
	PurchaseID  string    `json:"purchaseId"`
	FarmerID    string    `json:"farmerId"`
	PackageName string    `json:"packageName"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// PurchaseHandler runs the device purchase flow for a farmer.
func PurchaseHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req purchaseRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PackageName == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "packageName is required"})
			return
		}
		p, err := engine.PurchaseDevice(r.Context(), r.PathValue("id"), req.PackageName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, purchaseResponse{
			PurchaseID:  p.PurchaseID,
			FarmerID:    p.FarmerID,
			PackageName: p.PackageName,
			PurchasedAt: p.PurchasedAt,
		})
	}
}

// --- Orders ---

type orderResponse struct {
	OrderID     string                `json:"orderId"`
	BuyerID     string                `json:"buyerId"`
	FarmerID    string                `json:"farmerId"`
	Total       float64               `json:"total"`
	Status      lifecycle.OrderStatus `json:"status"`
	StatusLabel string                `json:"statusLabel"`
	OrderedAt   time.Time             `json:"orderedAt"`
}

func toOrderResponse(o models.ProduceOrder) orderResponse {
	return orderResponse{
		OrderID:     o.OrderID,
		BuyerID:     o.BuyerID,
		FarmerID:    o.FarmerID,
		Total:       o.Total,
		Status:      o.Status,
		StatusLabel: OrderStatusLabel(o.Status),
		OrderedAt:   o.OrderedAt,
	}
}

type createOrderRequest struct {
	BuyerID  string  `json:"buyerId"`
	FarmerID string  `json:"farmerId"`
	Total    float64 `json:"total"`
}

// CreateOrderHandler records a new produce order.
func CreateOrderHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.BuyerID == "" || req.FarmerID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "buyerId and farmerId are required"})
			return
		}
		o, err := engine.CreateOrder(r.Context(), req.BuyerID, req.FarmerID, req.Total)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toOrderResponse(o))
	}
}

// GetOrderHandler returns one order by ID.
func GetOrderHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := engine.GetOrder(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponse(o))
	}
}

type orderEventRequest struct {
	Event lifecycle.OrderEvent `json:"event"`
}

// OrderEventHandler advances the order state machine by one event.
func OrderEventHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderEventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !slices.Contains(lifecycle.OrderEvents(), req.Event) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown order event"})
			return
		}
		o, err := engine.ApplyOrderEvent(r.Context(), r.PathValue("id"), req.Event)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponse(o))
	}
}

// --- Controls ---

type controlsResponse struct {
	Pump    pumpView             `json:"pump"`
	Sprayer controller.MistState `json:"sprayer"`
}

type pumpView struct {
	Mode   controller.Mode       `json:"mode"`
	PumpOn bool                  `json:"pumpOn"`
	Log    []controller.LogEntry `json:"log"`
}

// ControlsHandler returns both controller states. The pump log is rendered
// newest first.
func ControlsHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		irr, mist := engine.Controls(r.PathValue("id"))
		writeJSON(w, http.StatusOK, controlsResponse{
			Pump: pumpView{
				Mode:   irr.Mode,
				PumpOn: irr.PumpOn,
				Log:    controller.RecentFirst(irr.Log),
			},
			Sprayer: mist,
		})
	}
}

// SamplesHandler returns the retained sensor window, oldest first.
func SamplesHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.Samples(r.PathValue("id")))
	}
}

type toggleRequest struct {
	On bool `json:"on"`
}

// PumpToggleHandler flips the pump manually.
func PumpToggleHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		s, err := engine.ToggleManualPump(r.PathValue("id"), req.On)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// SprayerToggleHandler flips the mist sprayer manually.
func SprayerToggleHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		s, err := engine.ToggleManualSprayer(r.PathValue("id"), req.On)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

type modeRequest struct {
	Mode controller.Mode `json:"mode"`
}

func (req modeRequest) valid() bool {
	return req.Mode == controller.ModeManual || req.Mode == controller.ModeAutomatic
}

// PumpModeHandler switches pump ownership between operator and controller.
func PumpModeHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !req.valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "mode must be manual or automatic"})
			return
		}
		writeJSON(w, http.StatusOK, engine.SetPumpMode(r.PathValue("id"), req.Mode))
	}
}

// SprayerModeHandler switches sprayer ownership between operator and
// controller.
func SprayerModeHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !req.valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "mode must be manual or automatic"})
			return
		}
		writeJSON(w, http.StatusOK, engine.SetSprayerMode(r.PathValue("id"), req.Mode))
	}
}

// SprayerTargetHandler updates the target humidity band.
func SprayerTargetHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var band controller.Band
		if !decodeJSON(w, r, &band) {
			return
		}
		s, err := engine.SetTargetBand(r.PathValue("id"), band)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// --- Analytics ---

// EcoScoreHandler scores the farmer's resource usage.
func EcoScoreHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ecoscore.Inputs
		if !decodeJSON(w, r, &in) {
			return
		}
		report, err := engine.ComputeEcoScore(r.PathValue("id"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

type forecastRequest struct {
	Commodity string    `json:"commodity"`
	History   []float64 `json:"history"`
}

// ForecastHandler projects a commodity price three steps ahead.
func ForecastHandler(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := engine.RunForecast(req.Commodity, req.History)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// WeatherHandler proxies current outdoor conditions for the configured farm
// coordinates.
func WeatherHandler(cfg *config.Config, client *weather.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "weather client is not configured"})
			return
		}
		cond, err := client.Current(r.Context(), cfg.Weather.Latitude, cfg.Weather.Longitude)
		if err != nil {
			log.Printf("[ERROR] Weather lookup failed: %v", err)
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "weather lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, cond)
	}
}

// --- Slack ---

// SlackEventsHandler creates a new http.HandlerFunc for handling Slack events.
// It verifies the request signature using the signing secret.
func SlackEventsHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verifier, err := slack.NewSecretsVerifier(r.Header, cfg.Slack.SigningSecret)
		if err != nil {
			log.Printf("[ERROR] Failed to create secrets verifier: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("[ERROR] Failed to read request body: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewBuffer(body))

		if _, err := verifier.Write(body); err != nil {
			log.Printf("[ERROR] Failed to write body to verifier: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if err := verifier.Ensure(); err != nil {
			log.Printf("[WARN] Invalid Slack signature: %v", err)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			log.Printf("[ERROR] Failed to parse Slack event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if eventsAPIEvent.Type == slackevents.URLVerification {
			var challenge *slackevents.ChallengeResponse
			if err := json.Unmarshal(body, &challenge); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte(challenge.Challenge))
			return
		}

		if eventsAPIEvent.Type == slackevents.CallbackEvent {
			log.Printf("[INFO] Received a callback event: %v", eventsAPIEvent.InnerEvent.Type)
			w.WriteHeader(http.StatusOK)
		}
	}
}
