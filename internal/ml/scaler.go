package ml

import (
	"fmt"
	"math"
)

// StandardScaler standardizes each column to zero mean and unit variance
// using the statistics captured at fit time.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// NewStandardScaler validates the fitted parameters and returns a scaler.
// A zero scale is treated as 1, matching how the scaler was fitted.
func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) == 0 {
		return nil, fmt.Errorf("standard scaler: empty mean")
	}
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler: mean has %d values, scale has %d", len(mean), len(scale))
	}
	s := &StandardScaler{
		Mean:  make([]float64, len(mean)),
		Scale: make([]float64, len(scale)),
	}
	for j := range mean {
		if !finite(mean[j]) || !finite(scale[j]) {
			return nil, fmt.Errorf("standard scaler: non-finite parameter at column %d", j)
		}
		s.Mean[j] = mean[j]
		s.Scale[j] = scale[j]
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}
	return s, nil
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("standard scaler: expected %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
		if !finite(out[j]) {
			return nil, fmt.Errorf("standard scaler: column %d overflows", j)
		}
	}
	return out, nil
}

// MinMaxScaler maps each column from the fitted [min, max] onto FeatureRange.
type MinMaxScaler struct {
	DataMin      []float64
	DataRange    []float64
	FeatureRange [2]float64
}

// NewMinMaxScaler validates the fitted parameters and returns a scaler.
func NewMinMaxScaler(dataMin, dataRange []float64, featureRange [2]float64) (*MinMaxScaler, error) {
	if len(dataMin) == 0 {
		return nil, fmt.Errorf("minmax scaler: empty data_min")
	}
	if len(dataMin) != len(dataRange) {
		return nil, fmt.Errorf("minmax scaler: data_min has %d values, data_range has %d", len(dataMin), len(dataRange))
	}
	if featureRange[0] >= featureRange[1] {
		return nil, fmt.Errorf("minmax scaler: invalid feature_range %v", featureRange)
	}
	s := &MinMaxScaler{
		DataMin:      make([]float64, len(dataMin)),
		DataRange:    make([]float64, len(dataRange)),
		FeatureRange: featureRange,
	}
	for j := range dataMin {
		if !finite(dataMin[j]) || !finite(dataRange[j]) {
			return nil, fmt.Errorf("minmax scaler: non-finite parameter at column %d", j)
		}
		s.DataMin[j] = dataMin[j]
		s.DataRange[j] = dataRange[j]
		if s.DataRange[j] == 0 {
			s.DataRange[j] = 1
		}
	}
	return s, nil
}

func (s *MinMaxScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.DataMin) {
		return nil, fmt.Errorf("minmax scaler: expected %d features, got %d", len(s.DataMin), len(x))
	}
	lo, hi := s.FeatureRange[0], s.FeatureRange[1]
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v-s.DataMin[j])/s.DataRange[j]*(hi-lo) + lo
		if !finite(out[j]) {
			return nil, fmt.Errorf("minmax scaler: column %d overflows", j)
		}
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
