package controller

import "time"

// SprayPhase is a tagged state for the mist sprayer. The phase field is the
// single-shot lock: a spray in flight cannot be re-armed until it completes.
type SprayPhase string

const (
	PhaseIdle     SprayPhase = "idle"
	PhaseSpraying SprayPhase = "spraying"
)

// DefaultSprayDuration is one fixed 5-second burst per activation.
const DefaultSprayDuration = 5 * time.Second

// Band is the target humidity band in percent. Min must be below Max.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultBand returns the default target band of 60–70 %.
func DefaultBand() Band {
	return Band{Min: 60, Max: 70}
}

// Valid reports whether the band is well-formed.
func (b Band) Valid() bool {
	return b.Min < b.Max
}

// SprayRecord is one completed spray, appended in ascending timestamp order.
type SprayRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	DurationSeconds int       `json:"durationSeconds"`
}

// MistState is the sprayer state for one farmer session.
type MistState struct {
	Mode           Mode          `json:"mode"`
	Phase          SprayPhase    `json:"phase"`
	SprayStartedAt time.Time     `json:"sprayStartedAt,omitempty"`
	SprayUntil     time.Time     `json:"sprayUntil,omitempty"`
	Target         Band          `json:"targetBand"`
	History        []SprayRecord `json:"history"`
}

// NewMistState returns a manual-mode idle state with the default band.
func NewMistState() MistState {
	return MistState{Mode: ModeManual, Phase: PhaseIdle, Target: DefaultBand()}
}

// SprayerOn reports whether the sprayer is currently running.
func (s MistState) SprayerOn() bool {
	return s.Phase == PhaseSpraying
}

// Mist runs the threshold rule for the mist sprayer.
type Mist struct {
	sprayDuration time.Duration
}

// NewMist builds a controller with the given burst duration; zero means the
// default 5 seconds.
func NewMist(d time.Duration) *Mist {
	if d <= 0 {
		d = DefaultSprayDuration
	}
	return &Mist{sprayDuration: d}
}

// SprayDuration returns the fixed burst duration.
func (m *Mist) SprayDuration() time.Duration {
	return m.sprayDuration
}

// Evaluate applies the latest humidity sample. When the state is automatic,
// idle, and humidity is below the band minimum, it enters the spraying phase
// and reports started=true so the caller can schedule the single completion
// callback. While a spray is in flight repeated calls are no-ops: the phase
// itself enforces the lock, not caller discipline.
func (m *Mist) Evaluate(s MistState, humidity float64, now time.Time) (MistState, bool) {
	if s.Mode != ModeAutomatic || s.Phase != PhaseIdle {
		return s, false
	}
	if humidity >= s.Target.Min {
		return s, false
	}
	s.Phase = PhaseSpraying
	s.SprayStartedAt = now
	s.SprayUntil = now.Add(m.sprayDuration)
	return s, true
}

// CompleteSpray closes an in-flight spray: back to idle, one history record.
// Calling it while idle is a no-op so a stale timer cannot double-append.
func (m *Mist) CompleteSpray(s MistState, now time.Time) MistState {
	if s.Phase != PhaseSpraying {
		return s
	}
	duration := int(m.sprayDuration / time.Second)
	s.Phase = PhaseIdle
	s.SprayStartedAt = time.Time{}
	s.SprayUntil = time.Time{}
	s.History = append(s.History, SprayRecord{Timestamp: now, DurationSeconds: duration})
	return s
}
