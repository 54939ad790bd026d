package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
)

// NumericSummary describes one numeric column over its non-null cells
type NumericSummary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// SummarizeNumeric computes summary statistics; an empty input is an error
func SummarizeNumeric(data []float64) (NumericSummary, error) {
	s := NumericSummary{Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return s, err
	}

	stdDev := 0.0
	if len(data) > 1 {
		stdDev, err = stats.StandardDeviationSample(data)
		if err != nil {
			return s, err
		}
	}

	min, err := stats.Min(data)
	if err != nil {
		return s, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return s, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return s, err
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return s, err
	}

	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return s, err
	}

	s.Mean = mean
	s.StdDev = stdDev
	s.Min = min
	s.Max = max
	s.Median = median
	s.Q25 = q25
	s.Q75 = q75
	s.Skewness = calculateSkewness(data, mean, stdDev)
	return s, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}
