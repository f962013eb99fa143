package controller

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestIrrigationHysteresis(t *testing.T) {
	c := NewIrrigation(DefaultThresholds())
	s := IrrigationState{Mode: ModeAutomatic}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Rising through the band, crossing 30, dropping back to 26: the pump
	// must switch on exactly once and off exactly once, with no chatter on
	// samples strictly between 27 and 30.
	sequence := []struct {
		temp   float64
		pumpOn bool
	}{
		{26.0, false},
		{28.5, false},
		{30.0, false}, // boundary is sticky: strict >
		{30.5, true},
		{31.2, true},
		{29.0, true}, // inside the band: no change
		{27.5, true},
		{27.0, true}, // boundary is sticky: strict <
		{26.0, false},
		{28.0, false},
	}
	for i, step := range sequence {
		now = now.Add(5 * time.Second)
		s = c.Evaluate(s, step.temp, now)
		if s.PumpOn != step.pumpOn {
			t.Fatalf("step %d (%.1f°C): pumpOn = %v, want %v", i, step.temp, s.PumpOn, step.pumpOn)
		}
	}
	if len(s.Log) != 2 {
		t.Fatalf("expected exactly 2 log entries, got %d", len(s.Log))
	}
	if want := "Pump on: temperature 30.5°C"; s.Log[0].Message != want {
		t.Errorf("log[0] = %q, want %q", s.Log[0].Message, want)
	}
	if want := "Pump off: temperature 26.0°C"; s.Log[1].Message != want {
		t.Errorf("log[1] = %q, want %q", s.Log[1].Message, want)
	}
}

func TestIrrigationManualModeNoOp(t *testing.T) {
	c := NewIrrigation(DefaultThresholds())
	s := IrrigationState{Mode: ModeManual}

	s = c.Evaluate(s, 35.0, time.Now())
	if s.PumpOn {
		t.Error("manual mode must not switch the pump on")
	}
	s.PumpOn = true
	s = c.Evaluate(s, 20.0, time.Now())
	if !s.PumpOn {
		t.Error("manual mode must not switch the pump off")
	}
	if len(s.Log) != 0 {
		t.Errorf("manual mode must not log, got %d entries", len(s.Log))
	}
}

func TestIrrigationCustomThresholds(t *testing.T) {
	c := NewIrrigation(Thresholds{OnAboveC: 25, OffBelowC: 22})
	s := IrrigationState{Mode: ModeAutomatic}

	s = c.Evaluate(s, 25.5, time.Now())
	if !s.PumpOn {
		t.Fatal("expected pump on above configured threshold")
	}
	s = c.Evaluate(s, 21.9, time.Now())
	if s.PumpOn {
		t.Fatal("expected pump off below configured threshold")
	}
}

func TestIrrigationLogCap(t *testing.T) {
	c := NewIrrigation(DefaultThresholds())
	s := IrrigationState{Mode: ModeAutomatic}
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Alternate across both thresholds to generate far more than 50 entries.
	for i := 0; i < 60; i++ {
		now = now.Add(5 * time.Second)
		s = c.Evaluate(s, 31.0, now)
		now = now.Add(5 * time.Second)
		s = c.Evaluate(s, 26.0, now)
	}
	if len(s.Log) != 50 {
		t.Fatalf("log must be capped at 50 entries, got %d", len(s.Log))
	}
	// Storage order is ascending by timestamp.
	for i := 1; i < len(s.Log); i++ {
		if s.Log[i].Timestamp.Before(s.Log[i-1].Timestamp) {
			t.Fatalf("log out of order at %d", i)
		}
	}
}

func TestRecentFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var log []LogEntry
	for i := 0; i < 3; i++ {
		log = append(log, LogEntry{Timestamp: base.Add(time.Duration(i) * time.Minute), Message: fmt.Sprintf("entry %d", i)})
	}
	display := RecentFirst(log)
	if !strings.HasSuffix(display[0].Message, "2") || !strings.HasSuffix(display[2].Message, "0") {
		t.Errorf("display order must be newest first, got %v", display)
	}
	// The storage slice is untouched.
	if !strings.HasSuffix(log[0].Message, "0") {
		t.Error("RecentFirst must not mutate its input")
	}
}
