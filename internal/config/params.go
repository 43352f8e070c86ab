package config

import (
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"znn/internal/costfn"
	"znn/internal/rangeset"
)

// DType is the numeric type the network computes in.
type DType string

const (
	Float32 DType = "float32"
	Float64 DType = "float64"
)

func (d DType) Valid() bool { return d == Float32 || d == Float64 }

// OutputKind is the training target representation selected by out_type.
type OutputKind int

const (
	OutputUnknown OutputKind = iota
	OutputBoundary
	OutputAffinity
)

// ClassifyOutType matches out_type by substring. "boundary" is checked
// before "affin".
func ClassifyOutType(outType string) OutputKind {
	switch {
	case strings.Contains(outType, "boundary"):
		return OutputBoundary
	case strings.Contains(outType, "affin"):
		return OutputAffinity
	}
	return OutputUnknown
}

func (k OutputKind) String() string {
	switch k {
	case OutputBoundary:
		return "boundary"
	case OutputAffinity:
		return "affinity"
	}
	return "unknown"
}

// Params is the typed content of the [parameters] section. It is built
// once by Load and treated as read-only afterwards.
type Params struct {
	// General
	NetSpec    string `json:"fnet_spec"`
	NumThreads int    `json:"num_threads"`
	DType      DType  `json:"dtype"`
	OutType    string `json:"out_type"`

	// IO
	TrainSaveNet string `json:"train_save_net"`
	TrainLoadNet string `json:"train_load_net"`

	// Training
	TrainRange       rangeset.Set `json:"train_range"`
	TestRange        rangeset.Set `json:"test_range"`
	Eta              float64      `json:"eta"`
	AnnealFactor     float64      `json:"anneal_factor"`
	Momentum         float64      `json:"momentum"`
	WeightDecay      float64      `json:"weight_decay"`
	TrainOutSize     []int        `json:"train_outsz"`
	IsOptimize       bool         `json:"is_optimize"`
	IsDataAug        bool         `json:"is_data_aug"`
	IsBoundaryMirror bool         `json:"is_bd_mirror"`
	IsRebalance      bool         `json:"is_rebalance"`
	IsMalis          bool         `json:"is_malis"`
	IsVisual         bool         `json:"is_visual"`

	// CostFnStr is the cost_fn option as written, except that "auto" is
	// replaced with the name of the function it resolved to.
	CostFnStr string      `json:"cost_fn_str"`
	CostFn    costfn.Kind `json:"cost_fn"`

	// Display and scheduling
	NumIterPerShow int `json:"Num_iter_per_show"`
	NumIterPerTest int `json:"Num_iter_per_test"`
	TestNum        int `json:"test_num"`
	NumIterPerSave int `json:"Num_iter_per_save"`
	MaxIter        int `json:"Max_iter"`

	// Forward pass
	ForwardRange   rangeset.Set `json:"forward_range"`
	ForwardNet     string       `json:"forward_net"`
	ForwardOutSize []int        `json:"forward_outsz"`
	OutputPrefix   string       `json:"output_prefix"`
}

func (p *Params) OutputKind() OutputKind { return ClassifyOutType(p.OutType) }

// Threads is the number of worker threads to start. A num_threads of 0
// means one per logical CPU.
func (p *Params) Threads() int {
	if p.NumThreads > 0 {
		return p.NumThreads
	}
	return LogicalCPUs()
}

// LogicalCPUs reports the logical CPU count, falling back to the Go
// runtime's view when the host cannot be queried.
func LogicalCPUs() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}
