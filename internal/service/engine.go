package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/temantani/smartfarm/internal/controller"
	"github.com/temantani/smartfarm/internal/ecoscore"
	"github.com/temantani/smartfarm/internal/forecast"
	"github.com/temantani/smartfarm/internal/lifecycle"
	"github.com/temantani/smartfarm/internal/models"
	"github.com/temantani/smartfarm/internal/sensor"
)

// Engine errors, all local and recoverable.
var (
	// ErrAutoModeActive rejects manual actuator overrides while automatic
	// control owns the actuator.
	ErrAutoModeActive = errors.New("automatic mode owns the actuator")
	// ErrNoSensorData rejects scoring before any sensor observation exists.
	ErrNoSensorData = errors.New("no sensor data")
	// ErrInvalidBand rejects a malformed target humidity band.
	ErrInvalidBand = errors.New("invalid target band: min must be below max")
)

// Actuator pushes pump/sprayer commands toward the device. Implementations
// must tolerate being called from the tick path; failures are logged, not
// propagated, because actuation is best-effort in this simulation.
type Actuator interface {
	SetPump(farmerID string, on bool) error
	SetSprayer(farmerID string, on bool) error
}

// Notifier delivers operational notifications. A nil Notifier disables them.
type Notifier interface {
	Notify(message string)
}

// Options tunes the engine. Zero values fall back to the defaults.
type Options struct {
	Thresholds    controller.Thresholds
	SprayDuration time.Duration
	TargetBand    controller.Band // initial humidity band for new sessions
	PumpFlowLPM   float64         // liters per minute, default 5
	MistFlowLPS   float64         // liters per second, default 0.5
	EcoIdeals     ecoscore.Ideals
}

// Engine is the automation and lifecycle core exposed to the dashboard
// shell. All per-farmer state is serialized through one session, preserving
// the single-timeline invariant if callers are concurrent.
type Engine struct {
	store    Store
	actuator Actuator
	notifier Notifier

	irrigation *controller.Irrigation
	mist       *controller.Mist
	targetBand controller.Band

	pumpFlowLPM float64
	mistFlowLPS float64
	ecoIdeals   ecoscore.Ideals

	now      func() time.Time
	schedule func(d time.Duration, fn func())

	mu       sync.Mutex
	sessions map[string]*session
}

// session holds the in-memory controller state for one farmer.
type session struct {
	mu sync.Mutex

	ring       *sensor.Ring
	irrigation controller.IrrigationState
	mist       controller.MistState

	pumpSecondsOn    float64
	sprayerSecondsOn float64
	lastSampleAt     time.Time
}

// NewEngine builds the engine. store is required; actuator and notifier may
// be nil.
func NewEngine(store Store, actuator Actuator, notifier Notifier, opts Options) *Engine {
	if opts.PumpFlowLPM <= 0 {
		opts.PumpFlowLPM = 5
	}
	if opts.MistFlowLPS <= 0 {
		opts.MistFlowLPS = 0.5
	}
	if opts.EcoIdeals == (ecoscore.Ideals{}) {
		opts.EcoIdeals = ecoscore.DefaultIdeals()
	}
	return &Engine{
		store:       store,
		actuator:    actuator,
		notifier:    notifier,
		irrigation:  controller.NewIrrigation(opts.Thresholds),
		mist:        controller.NewMist(opts.SprayDuration),
		targetBand:  opts.TargetBand,
		pumpFlowLPM: opts.PumpFlowLPM,
		mistFlowLPS: opts.MistFlowLPS,
		ecoIdeals:   opts.EcoIdeals,
		now:         time.Now,
		schedule: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
		sessions: make(map[string]*session),
	}
}

// SetClock overrides the time source, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// SetScheduler overrides the single-shot timer mechanism, for tests.
func (e *Engine) SetScheduler(schedule func(d time.Duration, fn func())) {
	e.schedule = schedule
}

func (e *Engine) session(farmerID string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[farmerID]
	if !ok {
		s = &session{
			ring:       sensor.NewRing(0),
			irrigation: controller.NewIrrigationState(),
			mist:       controller.NewMistState(),
		}
		if e.targetBand.Valid() {
			s.mist.Target = e.targetBand
		}
		e.sessions[farmerID] = s
	}
	return s
}

func (e *Engine) notify(format string, args ...any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(fmt.Sprintf(format, args...))
}

func (e *Engine) setPump(farmerID string, on bool) {
	if e.actuator == nil {
		return
	}
	if err := e.actuator.SetPump(farmerID, on); err != nil {
		log.Printf("[ERROR] Failed to push pump command for %s: %v", farmerID, err)
	}
}

func (e *Engine) setSprayer(farmerID string, on bool) {
	if e.actuator == nil {
		return
	}
	if err := e.actuator.SetSprayer(farmerID, on); err != nil {
		log.Printf("[ERROR] Failed to push sprayer command for %s: %v", farmerID, err)
	}
}

// --- Lifecycle ---

// RegisterFarmer creates the onboarding record in the registered state.
func (e *Engine) RegisterFarmer(ctx context.Context, farmerID string) (models.DeviceLifecycle, error) {
	d := models.DeviceLifecycle{
		FarmerID:       farmerID,
		Status:         lifecycle.StatusRegistered,
		LastTransition: e.now(),
	}
	if err := e.store.CreateDevice(ctx, d); err != nil {
		return models.DeviceLifecycle{}, err
	}
	return d, nil
}

// GetLifecycle returns the current onboarding state for a farmer.
func (e *Engine) GetLifecycle(ctx context.Context, farmerID string) (models.DeviceLifecycle, error) {
	return e.store.GetDevice(ctx, farmerID)
}

// ApplyLifecycleEvent advances the onboarding state machine. Each successful
// transition is timestamped; nothing else mutates the status.
func (e *Engine) ApplyLifecycleEvent(ctx context.Context, farmerID string, ev lifecycle.DeviceEvent) (models.DeviceLifecycle, error) {
	d, err := e.store.GetDevice(ctx, farmerID)
	if err != nil {
		return models.DeviceLifecycle{}, err
	}
	next, err := lifecycle.Transition(d.Status, ev)
	if err != nil {
		return models.DeviceLifecycle{}, err
	}
	d.Status = next
	d.LastTransition = e.now()
	if err := e.store.SaveDevice(ctx, d); err != nil {
		return models.DeviceLifecycle{}, err
	}
	e.notify("Farmer %s lifecycle: %s (%s)", farmerID, next, ev)
	return d, nil
}

// PurchaseDevice runs the purchase transition and records the purchase.
// Payment is simulated as instantaneous, so the successful path lands in
// pending_shipment.
func (e *Engine) PurchaseDevice(ctx context.Context, farmerID, packageName string) (models.DevicePurchase, error) {
	if _, err := e.ApplyLifecycleEvent(ctx, farmerID, lifecycle.EventPurchase); err != nil {
		return models.DevicePurchase{}, err
	}
	p := models.DevicePurchase{
		PurchaseID:  uuid.NewString(),
		FarmerID:    farmerID,
		PackageName: packageName,
		PurchasedAt: e.now(),
	}
	if err := e.store.CreatePurchase(ctx, p); err != nil {
		return models.DevicePurchase{}, err
	}
	return p, nil
}

// --- Orders ---

// CreateOrder records a produce order. Orders are created post-payment and
// start in processing.
func (e *Engine) CreateOrder(ctx context.Context, buyerID, farmerID string, total float64) (models.ProduceOrder, error) {
	o := models.ProduceOrder{
		OrderID:   uuid.NewString(),
		BuyerID:   buyerID,
		FarmerID:  farmerID,
		Total:     total,
		Status:    lifecycle.OrderProcessing,
		OrderedAt: e.now(),
	}
	if err := e.store.CreateOrder(ctx, o); err != nil {
		return models.ProduceOrder{}, err
	}
	return o, nil
}

// GetOrder returns one order by ID.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (models.ProduceOrder, error) {
	return e.store.GetOrder(ctx, orderID)
}

// ApplyOrderEvent advances the order state machine. Terminal orders reject
// every event.
func (e *Engine) ApplyOrderEvent(ctx context.Context, orderID string, ev lifecycle.OrderEvent) (models.ProduceOrder, error) {
	o, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.ProduceOrder{}, err
	}
	next, err := lifecycle.TransitionOrder(o.Status, ev)
	if err != nil {
		return models.ProduceOrder{}, err
	}
	o.Status = next
	if err := e.store.SaveOrder(ctx, o); err != nil {
		return models.ProduceOrder{}, err
	}
	return o, nil
}

// --- Controllers ---

// Tick feeds one sensor sample through both controllers. The scheduler calls
// it once per polling interval while the device is online; sample production
// always precedes evaluation.
func (e *Engine) Tick(ctx context.Context, farmerID string, sample sensor.Sample) (controller.IrrigationState, controller.MistState, error) {
	d, err := e.store.GetDevice(ctx, farmerID)
	if err != nil {
		return controller.IrrigationState{}, controller.MistState{}, err
	}
	if !lifecycle.DeviceOnline(d.Status) {
		return controller.IrrigationState{}, controller.MistState{}, fmt.Errorf("device for farmer %s is not online", farmerID)
	}

	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Accumulate pump on-time over the elapsed interval before the new
	// sample can change the pump state.
	if s.irrigation.PumpOn && !s.lastSampleAt.IsZero() {
		s.pumpSecondsOn += sample.Timestamp.Sub(s.lastSampleAt).Seconds()
	}
	s.lastSampleAt = sample.Timestamp
	s.ring.Append(sample)

	wasOn := s.irrigation.PumpOn
	s.irrigation = e.irrigation.Evaluate(s.irrigation, sample.Temperature, sample.Timestamp)
	if s.irrigation.PumpOn != wasOn {
		e.setPump(farmerID, s.irrigation.PumpOn)
		// Evaluate appends exactly one log entry per transition. The
		// in-memory log is capped, so take the entry from the tail; slicing
		// from the pre-call length would miss it once the cap trims.
		entry := s.irrigation.Log[len(s.irrigation.Log)-1]
		if err := e.store.AppendPumpLog(ctx, models.PumpLogEntry{
			FarmerID:  farmerID,
			Timestamp: entry.Timestamp,
			Message:   entry.Message,
		}); err != nil {
			log.Printf("[ERROR] Failed to persist pump log for %s: %v", farmerID, err)
		}
		e.notify("Farmer %s: %s", farmerID, entry.Message)
	}

	var started bool
	s.mist, started = e.mist.Evaluate(s.mist, sample.Humidity, sample.Timestamp)
	if started {
		e.setSprayer(farmerID, true)
		// Single-shot completion; the spraying phase blocks re-arming until
		// this fires.
		e.schedule(e.mist.SprayDuration(), func() {
			e.completeSpray(farmerID)
		})
	}

	return s.irrigation, s.mist, nil
}

// completeSpray closes an in-flight automatic spray. A disconnect does not
// cancel the pending completion; the spray finishes naturally.
func (e *Engine) completeSpray(farmerID string) {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mist.SprayerOn() {
		return
	}
	// CompleteSpray clears the start timestamp, so capture it first; deriving
	// the start from the completion clock would drift when the timer fires
	// late.
	startedAt := s.mist.SprayStartedAt
	s.mist = e.mist.CompleteSpray(s.mist, e.now())
	record := s.mist.History[len(s.mist.History)-1]
	s.sprayerSecondsOn += float64(record.DurationSeconds)
	e.setSprayer(farmerID, false)
	if err := e.store.AppendSprayEvent(context.Background(), models.SprayEvent{
		FarmerID:        farmerID,
		StartedAt:       startedAt,
		DurationSeconds: record.DurationSeconds,
	}); err != nil {
		log.Printf("[ERROR] Failed to persist spray event for %s: %v", farmerID, err)
	}
}

// Controls returns the current controller states for display.
func (e *Engine) Controls(farmerID string) (controller.IrrigationState, controller.MistState) {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.irrigation, s.mist
}

// PumpOn reports whether the farmer's pump is currently running.
func (e *Engine) PumpOn(farmerID string) bool {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.irrigation.PumpOn
}

// ToggleManualPump flips the pump by operator action. Rejected while the
// hysteresis rule owns the pump.
func (e *Engine) ToggleManualPump(farmerID string, on bool) (controller.IrrigationState, error) {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.irrigation.Mode == controller.ModeAutomatic {
		return s.irrigation, ErrAutoModeActive
	}
	s.irrigation.PumpOn = on
	e.setPump(farmerID, on)
	return s.irrigation, nil
}

// ToggleManualSprayer flips the sprayer by operator action. Rejected while
// automatic control owns it.
func (e *Engine) ToggleManualSprayer(farmerID string, on bool) (controller.MistState, error) {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mist.Mode == controller.ModeAutomatic {
		return s.mist, ErrAutoModeActive
	}
	if on {
		s.mist.Phase = controller.PhaseSpraying
		s.mist.SprayStartedAt = e.now()
		s.mist.SprayUntil = time.Time{}
	} else {
		if s.mist.SprayerOn() && !s.mist.SprayStartedAt.IsZero() {
			s.sprayerSecondsOn += e.now().Sub(s.mist.SprayStartedAt).Seconds()
		}
		s.mist.Phase = controller.PhaseIdle
		s.mist.SprayStartedAt = time.Time{}
	}
	e.setSprayer(farmerID, on)
	return s.mist, nil
}

// SetPumpMode switches pump ownership between operator and controller.
func (e *Engine) SetPumpMode(farmerID string, mode controller.Mode) controller.IrrigationState {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.irrigation.Mode = mode
	return s.irrigation
}

// SetSprayerMode switches sprayer ownership between operator and controller.
// A manual spray still running is closed first: it has no scheduled
// completion, and once automatic control owns the sprayer no toggle could
// turn it off.
func (e *Engine) SetSprayerMode(farmerID string, mode controller.Mode) controller.MistState {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == controller.ModeAutomatic && s.mist.SprayerOn() && s.mist.SprayUntil.IsZero() {
		if !s.mist.SprayStartedAt.IsZero() {
			s.sprayerSecondsOn += e.now().Sub(s.mist.SprayStartedAt).Seconds()
		}
		s.mist.Phase = controller.PhaseIdle
		s.mist.SprayStartedAt = time.Time{}
		e.setSprayer(farmerID, false)
	}
	s.mist.Mode = mode
	return s.mist
}

// SetTargetBand updates the mist target humidity band.
func (e *Engine) SetTargetBand(farmerID string, band controller.Band) (controller.MistState, error) {
	if !band.Valid() {
		return controller.MistState{}, ErrInvalidBand
	}
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mist.Target = band
	return s.mist, nil
}

// Samples returns the retained sensor window, oldest first.
func (e *Engine) Samples(farmerID string) []sensor.Sample {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Snapshot()
}

// --- Eco score ---

// EcoReport bundles the score with its static interpretation.
type EcoReport struct {
	Score          ecoscore.Score          `json:"score"`
	Interpretation ecoscore.Interpretation `json:"interpretation"`
	WaterUsage     ecoscore.WaterUsage     `json:"waterUsage"`
}

// ComputeEcoScore derives water usage from accumulated pump and sprayer
// observations and scores it together with the manual inputs. Scoring with
// no sensor history is rejected.
func (e *Engine) ComputeEcoScore(farmerID string, in ecoscore.Inputs) (EcoReport, error) {
	s := e.session(farmerID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ring.Len() == 0 {
		return EcoReport{}, ErrNoSensorData
	}
	usage := ecoscore.WaterUsage{
		PumpFlowLPM: e.pumpFlowLPM,
		PumpMinutes: s.pumpSecondsOn / 60,
		MistFlowLPS: e.mistFlowLPS,
		MistSeconds: s.sprayerSecondsOn,
	}
	score := ecoscore.Compute(in, usage, e.ecoIdeals)
	return EcoReport{
		Score:          score,
		Interpretation: ecoscore.Interpret(score.Total),
		WaterUsage:     usage,
	}, nil
}

// --- Forecast ---

// HistoryLength is the number of historical values the dashboard supplies.
const HistoryLength = 3

// RunForecast validates the fixed-length history and projects three steps
// ahead.
func (e *Engine) RunForecast(commodity string, history []float64) (forecast.Result, error) {
	if len(history) != HistoryLength {
		return forecast.Result{}, fmt.Errorf("%w: expected %d historical values, got %d",
			forecast.ErrInvalidInput, HistoryLength, len(history))
	}
	return forecast.Run(commodity, history, forecast.DefaultHorizon)
}
