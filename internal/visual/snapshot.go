package visual

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Volume is a dense 4-D array in row-major order. The panel shown for a
// volume is its [0, 0, :, :] plane.
type Volume struct {
	Shape [4]int
	Data  []float64
}

// NewVolume checks that data fills shape exactly.
func NewVolume(shape [4]int, data []float64) (Volume, error) {
	v := Volume{Shape: shape, Data: data}
	return v, v.Validate()
}

func (v Volume) Validate() error {
	n := 1
	for i, d := range v.Shape {
		if d <= 0 {
			return fmt.Errorf("dimension %d of shape %v is not positive", i, v.Shape)
		}
		n *= d
	}
	if len(v.Data) != n {
		return fmt.Errorf("shape %v needs %d values, got %d", v.Shape, n, len(v.Data))
	}
	return nil
}

// Plane is a 2-D slice of a Volume.
type Plane struct {
	Rows, Cols int
	Data       []float64
}

// Plane returns the [0, 0, :, :] slice. It shares memory with v.
func (v Volume) Plane() Plane {
	rows, cols := v.Shape[2], v.Shape[3]
	return Plane{Rows: rows, Cols: cols, Data: v.Data[:rows*cols]}
}

func (p Plane) At(r, c int) float64 { return p.Data[r*p.Cols+c] }

// History is a learning curve: parallel slices indexed by sample.
type History struct {
	Iters   []int
	Costs   []float64
	ClsErrs []float64
}

func (h *History) Append(iter int, cost, clsErr float64) {
	h.Iters = append(h.Iters, iter)
	h.Costs = append(h.Costs, cost)
	h.ClsErrs = append(h.ClsErrs, clsErr)
}

func (h History) Len() int { return len(h.Iters) }

// Last returns the most recent sample.
func (h History) Last() (iter int, cost, clsErr float64, ok bool) {
	n := h.Len()
	if n == 0 {
		return 0, 0, 0, false
	}
	return h.Iters[n-1], h.Costs[n-1], h.ClsErrs[n-1], true
}

func (h History) Validate() error {
	if len(h.Costs) != len(h.Iters) || len(h.ClsErrs) != len(h.Iters) {
		return fmt.Errorf("history lengths differ: %d iterations, %d costs, %d classification errors",
			len(h.Iters), len(h.Costs), len(h.ClsErrs))
	}
	return nil
}

// Snapshot is everything drawn for one progress update.
type Snapshot struct {
	Start  time.Time
	Iter   int
	Cost   float64
	ClsErr float64
	Eta    float64

	Train History
	Test  History

	Input    Volume
	Output   Volume
	Label    Volume
	Gradient Volume
}

type panel struct {
	title string
	vol   Volume
}

func (s *Snapshot) panels() []panel {
	return []panel{
		{"input", s.Input},
		{"output", s.Output},
		{"label", s.Label},
		{"gradient", s.Gradient},
	}
}

func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	for _, p := range s.panels() {
		if err := p.vol.Validate(); err != nil {
			return fmt.Errorf("%s volume: %w", p.title, err)
		}
	}
	if err := s.Train.Validate(); err != nil {
		return fmt.Errorf("train %w", err)
	}
	if err := s.Test.Validate(); err != nil {
		return fmt.Errorf("test %w", err)
	}
	return nil
}

// finite drops the samples whose value is NaN or infinite.
func finite(iters []int, vals []float64) ([]int, []float64) {
	outIters := make([]int, 0, len(iters))
	outVals := make([]float64, 0, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		outIters = append(outIters, iters[i])
		outVals = append(outVals, v)
	}
	return outIters, outVals
}

func finiteValues(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
