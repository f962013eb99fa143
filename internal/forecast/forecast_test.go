package forecast

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRunCompoundGrowth(t *testing.T) {
	// 20% growth each step: rates [0.2, 0.2], avg 0.2, each projection
	// rounded to 3 decimals before the next compounds from it.
	result, err := Run("Padi", []float64{10, 12, 14.4}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.AvgGrowthRate, 0.2) {
		t.Errorf("avgRate = %v, want 0.2", result.AvgGrowthRate)
	}
	want := []float64{17.28, 20.736, 24.883}
	if len(result.Projected) != len(want) {
		t.Fatalf("got %d projections, want %d", len(result.Projected), len(want))
	}
	for i, w := range want {
		if !almostEqual(result.Projected[i], w) {
			t.Errorf("projected[%d] = %v, want %v", i, result.Projected[i], w)
		}
	}
}

func TestRunSeriesConcatenation(t *testing.T) {
	result, err := Run("Jagung", []float64{10, 11, 12}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Series) != 6 {
		t.Fatalf("series length = %d, want 6", len(result.Series))
	}
	for i, v := range result.History {
		if result.Series[i] != v {
			t.Errorf("series[%d] = %v, want history value %v", i, result.Series[i], v)
		}
	}
	for i, v := range result.Projected {
		if result.Series[3+i] != v {
			t.Errorf("series[%d] = %v, want projection %v", 3+i, result.Series[3+i], v)
		}
	}
}

func TestRunZeroGuard(t *testing.T) {
	// A zero predecessor defines the rate as 0 by policy; no division error.
	result, err := Run("Padi", []float64{0, 5, 10}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.AvgGrowthRate, 0.5) {
		t.Errorf("avgRate = %v, want 0.5", result.AvgGrowthRate)
	}
	want := []float64{15, 22.5, 33.75}
	for i, w := range want {
		if !almostEqual(result.Projected[i], w) {
			t.Errorf("projected[%d] = %v, want %v", i, result.Projected[i], w)
		}
	}
}

func TestRunSingleValueFlatProjection(t *testing.T) {
	// Fewer than two values: avg rate is 0 and the projection is flat.
	result, err := Run("Cabai", []float64{7}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AvgGrowthRate != 0 {
		t.Errorf("avgRate = %v, want 0", result.AvgGrowthRate)
	}
	for i, v := range result.Projected {
		if v != 7 {
			t.Errorf("projected[%d] = %v, want 7", i, v)
		}
	}
}

func TestRunInvalidInput(t *testing.T) {
	if _, err := Run("Padi", nil, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty history: got %v", err)
	}
	if _, err := Run("Padi", []float64{1, math.NaN(), 3}, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NaN history: got %v", err)
	}
	if _, err := Run("Padi", []float64{1, math.Inf(1), 3}, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Inf history: got %v", err)
	}
	if _, err := Run("", []float64{1, 2, 3}, 3); err == nil {
		t.Error("empty commodity must be rejected")
	}
}

func TestRunDefaultHorizon(t *testing.T) {
	result, err := Run("Padi", []float64{1, 2, 3}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Projected) != DefaultHorizon {
		t.Errorf("projected steps = %d, want %d", len(result.Projected), DefaultHorizon)
	}
}
