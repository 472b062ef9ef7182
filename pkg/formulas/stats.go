// Package formulas provides statistical helpers for price series.
package formulas

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Min returns the smallest value in the slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Min(data)
}

// Max returns the largest value in the slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// TrendPerDay fits a least-squares line through (time, price) points and
// returns the slope in price units per day. Returns 0 for fewer than two
// points, where no trend is defined.
func TrendPerDay(times []time.Time, prices []float64) float64 {
	if len(times) < 2 || len(times) != len(prices) {
		return 0
	}

	days := make([]float64, len(times))
	origin := times[0]
	for i, t := range times {
		days[i] = t.Sub(origin).Hours() / 24
	}

	_, slope := stat.LinearRegression(days, prices, nil, false)
	return slope
}
