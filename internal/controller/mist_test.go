package controller

import (
	"testing"
	"time"
)

func autoMist() MistState {
	s := NewMistState()
	s.Mode = ModeAutomatic
	return s
}

func TestMistTriggersBelowBandMinimum(t *testing.T) {
	m := NewMist(0)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, started := m.Evaluate(autoMist(), 55.0, now)
	if !started {
		t.Fatal("expected spray to start below band minimum")
	}
	if s.Phase != PhaseSpraying {
		t.Fatalf("phase = %s, want spraying", s.Phase)
	}
	if !s.SprayUntil.Equal(now.Add(DefaultSprayDuration)) {
		t.Errorf("sprayUntil = %v, want %v", s.SprayUntil, now.Add(DefaultSprayDuration))
	}
}

func TestMistNoTriggerInsideBand(t *testing.T) {
	m := NewMist(0)
	for _, humidity := range []float64{60.0, 65.0, 75.0} {
		s, started := m.Evaluate(autoMist(), humidity, time.Now())
		if started || s.SprayerOn() {
			t.Errorf("humidity %.1f must not trigger a spray", humidity)
		}
	}
}

func TestMistSingleShotLock(t *testing.T) {
	m := NewMist(0)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, started := m.Evaluate(autoMist(), 50.0, now)
	if !started {
		t.Fatal("expected spray to start")
	}
	firstUntil := s.SprayUntil

	// Repeated evaluation while a spray is in flight must not re-arm the
	// timer, regardless of call frequency.
	for i := 0; i < 10; i++ {
		now = now.Add(time.Second)
		var again bool
		s, again = m.Evaluate(s, 40.0, now)
		if again {
			t.Fatalf("call %d re-armed an in-flight spray", i)
		}
	}
	if !s.SprayUntil.Equal(firstUntil) {
		t.Error("sprayUntil moved while in flight")
	}

	s = m.CompleteSpray(s, firstUntil)
	if s.Phase != PhaseIdle {
		t.Fatalf("phase after completion = %s, want idle", s.Phase)
	}
	if len(s.History) != 1 {
		t.Fatalf("expected exactly one history record per activation, got %d", len(s.History))
	}
	if s.History[0].DurationSeconds != 5 {
		t.Errorf("duration = %d, want 5", s.History[0].DurationSeconds)
	}
}

func TestMistCompleteWhileIdleIsNoOp(t *testing.T) {
	m := NewMist(0)
	s := m.CompleteSpray(autoMist(), time.Now())
	if len(s.History) != 0 {
		t.Fatal("completing an idle sprayer must not append history")
	}
}

func TestMistManualModeNoOp(t *testing.T) {
	m := NewMist(0)
	s := NewMistState() // manual
	s, started := m.Evaluate(s, 10.0, time.Now())
	if started || s.SprayerOn() {
		t.Error("manual mode must not auto-trigger the sprayer")
	}
}

func TestMistRetriggersAfterCompletion(t *testing.T) {
	m := NewMist(2 * time.Second)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s, started := m.Evaluate(autoMist(), 50.0, now)
	if !started {
		t.Fatal("first spray must start")
	}
	s = m.CompleteSpray(s, s.SprayUntil)

	s, started = m.Evaluate(s, 50.0, now.Add(10*time.Second))
	if !started {
		t.Fatal("sprayer must re-arm once the previous spray completed")
	}
	s = m.CompleteSpray(s, s.SprayUntil)
	if len(s.History) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(s.History))
	}
	if s.History[0].DurationSeconds != 2 {
		t.Errorf("configured duration = %d, want 2", s.History[0].DurationSeconds)
	}
}

func TestBandValid(t *testing.T) {
	if !DefaultBand().Valid() {
		t.Error("default band must be valid")
	}
	if (Band{Min: 70, Max: 60}).Valid() {
		t.Error("inverted band must be invalid")
	}
	if (Band{Min: 60, Max: 60}).Valid() {
		t.Error("empty band must be invalid")
	}
}
