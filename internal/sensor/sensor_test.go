package sensor

import (
	"testing"
	"time"
)

func TestRingEviction(t *testing.T) {
	r := NewRing(0)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 75; i++ {
		r.Append(Sample{Timestamp: base.Add(time.Duration(i) * 5 * time.Second), Temperature: float64(i)})
	}
	if r.Len() != RingSize {
		t.Fatalf("len = %d, want %d", r.Len(), RingSize)
	}
	snap := r.Snapshot()
	if snap[0].Temperature != 15 {
		t.Errorf("oldest retained sample = %.0f, want 15", snap[0].Temperature)
	}
	latest, ok := r.Latest()
	if !ok || latest.Temperature != 74 {
		t.Errorf("latest = %+v, want temperature 74", latest)
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing(10)
	if _, ok := r.Latest(); ok {
		t.Error("empty ring must report no latest sample")
	}
	if r.Len() != 0 {
		t.Errorf("empty ring len = %d", r.Len())
	}
}

func TestSimulatorRanges(t *testing.T) {
	g := NewSimulator(1)
	now := time.Now()
	for i := 0; i < 200; i++ {
		s := g.Next(now)
		if s.Humidity < 40 || s.Humidity > 70 {
			t.Fatalf("humidity %.1f outside 40-70", s.Humidity)
		}
		if s.Temperature < 20 || s.Temperature > 30 {
			t.Fatalf("temperature %.1f outside 20-30", s.Temperature)
		}
	}
}

func TestSimulatorWateringRaisesHumidity(t *testing.T) {
	g := NewSimulator(1)
	now := time.Now()
	prev := g.Next(now)
	for i := 0; i < 100; i++ {
		s := g.NextWatering(now.Add(time.Duration(i+1) * 3 * time.Second))
		if s.Humidity < prev.Humidity && s.Humidity < 100 {
			t.Fatalf("watering tick lowered humidity: %.1f -> %.1f", prev.Humidity, s.Humidity)
		}
		if s.Humidity > 100 {
			t.Fatalf("humidity %.1f above 100", s.Humidity)
		}
		if s.Temperature != prev.Temperature {
			t.Fatalf("watering tick changed temperature: %.1f -> %.1f", prev.Temperature, s.Temperature)
		}
		prev = s
	}
}
