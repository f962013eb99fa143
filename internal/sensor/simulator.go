package sensor

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Simulator generates plausible greenhouse readings when no hardware feed is
// connected: humidity 40–70 %, temperature 20–30 °C. While the pump runs,
// watering ticks raise humidity a little instead of drawing a fresh value.
type Simulator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last Sample
	seen bool
}

// NewSimulator builds a generator. seed 0 means time-based seeding.
func NewSimulator(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Next produces a fresh reading, one per sensor tick.
func (g *Simulator) Next(now time.Time) Sample {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Sample{
		Timestamp:   now,
		Humidity:    round1(40 + g.rng.Float64()*30),
		Temperature: round1(20 + g.rng.Float64()*10),
	}
	g.last = s
	g.seen = true
	return s
}

// NextWatering produces a reading during an active pump tick: humidity rises
// by 0.2–1.0 % (clamped to 100), temperature holds at the previous value.
func (g *Simulator) NextWatering(now time.Time) Sample {
	g.mu.Lock()
	defer g.mu.Unlock()

	humidity := 50.0
	temperature := 25.0
	if g.seen {
		humidity = math.Min(100, g.last.Humidity+0.2+g.rng.Float64()*0.8)
		temperature = g.last.Temperature
	}
	s := Sample{
		Timestamp:   now,
		Humidity:    round1(humidity),
		Temperature: round1(temperature),
	}
	g.last = s
	g.seen = true
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
