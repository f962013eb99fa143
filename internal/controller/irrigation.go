package controller

import (
	"fmt"
	"time"
)

// Mode selects who owns an actuator: the operator or the controller.
type Mode string

const (
	ModeManual    Mode = "manual"
	ModeAutomatic Mode = "automatic"
)

const defaultLogCap = 50

// LogEntry is one pump log line. Entries are stored in ascending timestamp
// order; most-recent-first rendering is a display transform.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Thresholds holds the hysteresis band for the irrigation pump. Two distinct
// thresholds prevent oscillation near a single boundary.
type Thresholds struct {
	OnAboveC  float64
	OffBelowC float64
}

// DefaultThresholds returns the default band: pump on above 30 °C, off
// below 27 °C.
func DefaultThresholds() Thresholds {
	return Thresholds{OnAboveC: 30.0, OffBelowC: 27.0}
}

// IrrigationState is the pump state for one farmer session.
type IrrigationState struct {
	Mode   Mode       `json:"mode"`
	PumpOn bool       `json:"pumpOn"`
	Log    []LogEntry `json:"log"`
}

// NewIrrigationState returns a manual-mode state with the pump off.
func NewIrrigationState() IrrigationState {
	return IrrigationState{Mode: ModeManual}
}

// Irrigation evaluates the hysteresis rule for the water pump.
type Irrigation struct {
	thresholds Thresholds
	logCap     int
}

// NewIrrigation builds a controller for the given band. Zero thresholds fall
// back to the defaults.
func NewIrrigation(th Thresholds) *Irrigation {
	if th.OnAboveC == 0 && th.OffBelowC == 0 {
		th = DefaultThresholds()
	}
	return &Irrigation{thresholds: th, logCap: defaultLogCap}
}

// Evaluate applies the latest temperature sample to the state and returns the
// new state. In manual mode this is a no-op. Comparisons are strict: exactly
// 30.0 does not switch on and exactly 27.0 does not switch off.
func (c *Irrigation) Evaluate(s IrrigationState, tempC float64, now time.Time) IrrigationState {
	if s.Mode != ModeAutomatic {
		return s
	}
	switch {
	case !s.PumpOn && tempC > c.thresholds.OnAboveC:
		s.PumpOn = true
		s.Log = appendLog(s.Log, c.logCap, LogEntry{
			Timestamp: now,
			Message:   fmt.Sprintf("Pump on: temperature %.1f°C", tempC),
		})
	case s.PumpOn && tempC < c.thresholds.OffBelowC:
		s.PumpOn = false
		s.Log = appendLog(s.Log, c.logCap, LogEntry{
			Timestamp: now,
			Message:   fmt.Sprintf("Pump off: temperature %.1f°C", tempC),
		})
	}
	return s
}

// Thresholds returns the configured hysteresis band.
func (c *Irrigation) Thresholds() Thresholds {
	return c.thresholds
}

func appendLog(log []LogEntry, cap int, e LogEntry) []LogEntry {
	log = append(log, e)
	if len(log) > cap {
		log = log[len(log)-cap:]
	}
	return log
}

// RecentFirst returns the log in display order, newest entry first.
func RecentFirst(log []LogEntry) []LogEntry {
	out := make([]LogEntry, len(log))
	for i, e := range log {
		out[len(log)-1-i] = e
	}
	return out
}
