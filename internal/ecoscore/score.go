// Package ecoscore computes the weighted sustainability score from daily
// resource usage. Water deviates linearly from its ideal; fertilizer,
// pesticide, energy and waste deviate logarithmically, since those
// quantities vary geometrically in practice and both under- and over-use
// should be penalized.
package ecoscore

import "math"

// Category weights. They sum to 1.00.
const (
	weightWater      = 0.25
	weightFertilizer = 0.20
	weightPesticide  = 0.20
	weightEnergy     = 0.20
	weightWaste      = 0.15
)

// usageFloor keeps log10 and division well-defined for zero inputs.
const usageFloor = 0.1

// Inputs are the operator-supplied daily usage quantities.
type Inputs struct {
	FertilizerKg float64 `json:"fertilizerKgPerDay"`
	PesticideKg  float64 `json:"pesticideKgPerDay"`
	EnergyKWh    float64 `json:"energyKwhPerDay"`
	WasteKg      float64 `json:"wasteKgPerDay"`
}

// WaterUsage is derived from actuator observations: flow rates multiplied by
// accumulated on-time.
type WaterUsage struct {
	PumpFlowLPM float64 `json:"pumpFlowLitersPerMinute"`
	PumpMinutes float64 `json:"pumpMinutesOn"`
	MistFlowLPS float64 `json:"mistFlowLitersPerSecond"`
	MistSeconds float64 `json:"sprayerSecondsOn"`
}

// TotalLiters is pump plus sprayer water.
func (u WaterUsage) TotalLiters() float64 {
	return u.PumpFlowLPM*u.PumpMinutes + u.MistFlowLPS*u.MistSeconds
}

// Ideals are the per-category targets a perfect score is measured against.
type Ideals struct {
	WaterL       float64
	FertilizerKg float64
	PesticideKg  float64
	EnergyKWh    float64
	WasteKg      float64
}

// DefaultIdeals returns the baseline targets: 5000 L water, 5 kg fertilizer,
// 2 kg pesticide, 10 kWh energy, 3 kg waste per day.
func DefaultIdeals() Ideals {
	return Ideals{WaterL: 5000, FertilizerKg: 5, PesticideKg: 2, EnergyKWh: 10, WasteKg: 3}
}

// Score is the composite plus the five category sub-scores, all in [0,100]
// and rounded to 2 decimal places.
type Score struct {
	Total      float64 `json:"total"`
	Water      float64 `json:"water"`
	Fertilizer float64 `json:"fertilizer"`
	Pesticide  float64 `json:"pesticide"`
	Energy     float64 `json:"energy"`
	Waste      float64 `json:"waste"`
}

// Compute scores the given usage against the ideals. Zero ideals fall back
// to the defaults.
func Compute(in Inputs, water WaterUsage, ideals Ideals) Score {
	if ideals == (Ideals{}) {
		ideals = DefaultIdeals()
	}

	fertilizer := math.Max(in.FertilizerKg, usageFloor)
	pesticide := math.Max(in.PesticideKg, usageFloor)
	energy := math.Max(in.EnergyKWh, usageFloor)
	waste := math.Max(in.WasteKg, usageFloor)

	totalWater := water.TotalLiters()

	waterScore := clampScore(100 - math.Abs(totalWater-ideals.WaterL)/ideals.WaterL*100)
	fertilizerScore := logScore(fertilizer, ideals.FertilizerKg)
	pesticideScore := logScore(pesticide, ideals.PesticideKg)
	energyScore := logScore(energy, ideals.EnergyKWh)
	wasteScore := logScore(waste, ideals.WasteKg)

	total := waterScore*weightWater +
		fertilizerScore*weightFertilizer +
		pesticideScore*weightPesticide +
		energyScore*weightEnergy +
		wasteScore*weightWaste

	return Score{
		Total:      round2(total),
		Water:      round2(waterScore),
		Fertilizer: round2(fertilizerScore),
		Pesticide:  round2(pesticideScore),
		Energy:     round2(energyScore),
		Waste:      round2(wasteScore),
	}
}

// Interpretation is the static category lookup for a composite score.
type Interpretation struct {
	Category       string `json:"category"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// Interpret maps the composite score to its category text: Poor up to 30,
// Moderate up to 60, Good above.
func Interpret(total float64) Interpretation {
	switch {
	case total <= 30:
		return Interpretation{
			Category:       "Poor",
			Description:    "The environmental impact of current practices is very high.",
			Recommendation: "Reduce chemical fertilizer and pesticide use. Improve water and energy efficiency.",
		}
	case total <= 60:
		return Interpretation{
			Category:       "Moderate",
			Description:    "There is still room for improvement.",
			Recommendation: "Optimize resource usage and cut waste to improve sustainability.",
		}
	default:
		return Interpretation{
			Category:       "Good",
			Description:    "Current farming practices are environmentally friendly.",
			Recommendation: "Keep these practices up and continue improving efficiency.",
		}
	}
}

func logScore(used, ideal float64) float64 {
	return clampScore(100 - math.Abs(math.Log10(used/ideal))*100)
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
