package sensor

import "time"

// RingSize is how many samples are retained for display and trends; the
// controllers only consume the latest one.
const RingSize = 60

// Sample is one validated sensor reading.
type Sample struct {
	Timestamp   time.Time `json:"timestamp"`
	Humidity    float64   `json:"humidityPercent"`
	Temperature float64   `json:"temperatureCelsius"`
}

// Ring is a bounded buffer of the most recent samples, oldest first.
type Ring struct {
	capacity int
	samples  []Sample
}

// NewRing builds a ring; capacity <= 0 means RingSize.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = RingSize
	}
	return &Ring{capacity: capacity}
}

// Append adds a sample, evicting the oldest when full.
func (r *Ring) Append(s Sample) {
	r.samples = append(r.samples, s)
	if len(r.samples) > r.capacity {
		r.samples = r.samples[len(r.samples)-r.capacity:]
	}
}

// Latest returns the newest sample, if any.
func (r *Ring) Latest() (Sample, bool) {
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}

// Len returns the number of retained samples.
func (r *Ring) Len() int {
	return len(r.samples)
}

// Snapshot copies the retained samples in storage order, oldest first.
func (r *Ring) Snapshot() []Sample {
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}
