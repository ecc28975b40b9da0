package series

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Series represents a time-indexed sequence of float64 observations.
// Timestamps and Values are parallel slices; timestamps must be strictly
// increasing.
type Series struct {
	Name       string      `json:"name"`
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
}

// New creates a new series and validates it.
func New(name string, timestamps []time.Time, values []float64) (*Series, error) {
	s := &Series{
		Name:       name,
		Timestamps: timestamps,
		Values:     values,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the series is well-formed: a valid name, equal-length
// index and values, a strictly increasing index, and finite values.
func (s *Series) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if len(s.Timestamps) != len(s.Values) {
		return fmt.Errorf("series %q: timestamps and values must have the same length (%d != %d)",
			s.Name, len(s.Timestamps), len(s.Values))
	}
	if len(s.Values) == 0 {
		return fmt.Errorf("series %q: empty series", s.Name)
	}
	for i := 1; i < len(s.Timestamps); i++ {
		if !s.Timestamps[i].After(s.Timestamps[i-1]) {
			return fmt.Errorf("series %q: timestamps must be strictly increasing at index %d", s.Name, i)
		}
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("series %q: non-finite value at index %d", s.Name, i)
		}
	}
	return nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// First returns the first timestamp of the series.
func (s *Series) First() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[0]
}

// Last returns the last timestamp of the series.
func (s *Series) Last() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v
	}
	return sum / float64(len(s.Values))
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, v := range s.Values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(s.Values)-1)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	min := s.Values[0]
	for _, v := range s.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	max := s.Values[0]
	for _, v := range s.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// At returns the value at the given timestamp and whether it exists.
func (s *Series) At(t time.Time) (float64, bool) {
	i := sort.Search(len(s.Timestamps), func(i int) bool {
		return !s.Timestamps[i].Before(t)
	})
	if i < len(s.Timestamps) && s.Timestamps[i].Equal(t) {
		return s.Values[i], true
	}
	return 0, false
}

// Slice returns the observations within [tmin, tmax]. A zero tmin or tmax
// leaves that side unbounded. The result may be empty.
func (s *Series) Slice(tmin, tmax time.Time) *Series {
	lo := 0
	if !tmin.IsZero() {
		lo = sort.Search(len(s.Timestamps), func(i int) bool {
			return !s.Timestamps[i].Before(tmin)
		})
	}
	hi := len(s.Timestamps)
	if !tmax.IsZero() {
		hi = sort.Search(len(s.Timestamps), func(i int) bool {
			return s.Timestamps[i].After(tmax)
		})
	}
	if lo >= hi {
		return &Series{Name: s.Name}
	}
	timestamps := make([]time.Time, hi-lo)
	values := make([]float64, hi-lo)
	copy(timestamps, s.Timestamps[lo:hi])
	copy(values, s.Values[lo:hi])
	return &Series{
		Name:       s.Name,
		Timestamps: timestamps,
		Values:     values,
	}
}

// Diff calculates the first difference of the series.
func (s *Series) Diff() *Series {
	if len(s.Values) < 2 {
		return &Series{Name: s.Name}
	}
	timestamps := make([]time.Time, len(s.Values)-1)
	values := make([]float64, len(s.Values)-1)
	for i := 1; i < len(s.Values); i++ {
		timestamps[i-1] = s.Timestamps[i]
		values[i-1] = s.Values[i] - s.Values[i-1]
	}
	return &Series{
		Name:       s.Name,
		Timestamps: timestamps,
		Values:     values,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)
	values := make([]float64, len(s.Values))
	copy(values, s.Values)
	return &Series{
		Name:       s.Name,
		Timestamps: timestamps,
		Values:     values,
	}
}

// Equal reports whether two series hold identical observations. Names are
// not compared.
func (s *Series) Equal(other *Series) bool {
	if other == nil || len(s.Values) != len(other.Values) {
		return false
	}
	for i := range s.Values {
		if !s.Timestamps[i].Equal(other.Timestamps[i]) {
			return false
		}
		if s.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}
