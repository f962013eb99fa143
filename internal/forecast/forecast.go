// Package forecast projects harvest yields by compound-growth extrapolation.
// It is deliberately not a statistical model: no confidence interval, no
// seasonality. That limitation is part of the documented behavior.
package forecast

import (
	"errors"
	"math"
)

// DefaultHorizon is the number of projected steps.
const DefaultHorizon = 3

// ErrInvalidInput is returned for malformed history values.
var ErrInvalidInput = errors.New("invalid forecast input")

// Result is the forecast outcome. Series is history followed by the
// projection, ready for charting.
type Result struct {
	Commodity     string    `json:"commodity"`
	History       []float64 `json:"history"`
	Projected     []float64 `json:"projected"`
	Series        []float64 `json:"series"`
	AvgGrowthRate float64   `json:"avgGrowthRate"`
}

// Run extrapolates horizon steps from the historical series.
//
// Pairwise growth rates are (v_i - v_{i-1}) / v_{i-1}; a zero predecessor
// yields a rate of 0 by policy, guarding the division. The mean rate is 0
// when fewer than two values are supplied. Each projected step compounds
// from the previous one and is rounded to 3 decimals before the next step;
// the rounding feeds forward.
func Run(commodity string, history []float64, horizon int) (Result, error) {
	if commodity == "" {
		return Result{}, errors.New("commodity is required")
	}
	if len(history) == 0 {
		return Result{}, ErrInvalidInput
	}
	for _, v := range history {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, ErrInvalidInput
		}
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	var rates []float64
	for i := 1; i < len(history); i++ {
		prev := history[i-1]
		if prev == 0 {
			rates = append(rates, 0)
			continue
		}
		rates = append(rates, (history[i]-prev)/prev)
	}
	avgRate := 0.0
	if len(rates) > 0 {
		sum := 0.0
		for _, r := range rates {
			sum += r
		}
		avgRate = sum / float64(len(rates))
	}

	projected := make([]float64, 0, horizon)
	cur := history[len(history)-1]
	for i := 0; i < horizon; i++ {
		cur = round3(cur * (1 + avgRate))
		projected = append(projected, cur)
	}

	series := make([]float64, 0, len(history)+horizon)
	series = append(series, history...)
	series = append(series, projected...)

	return Result{
		Commodity:     commodity,
		History:       append([]float64(nil), history...),
		Projected:     projected,
		Series:        series,
		AvgGrowthRate: avgRate,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
