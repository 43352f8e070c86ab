package config

import (
	"fmt"
	"strconv"
	"strings"

	"znn/internal/rangeset"
)

// field describes one key of the [parameters] section: how the raw string
// is coerced into Params and how the typed value is printed back.
type field struct {
	key   string
	apply func(p *Params, raw string) error
	show  func(p *Params) string
}

func stringField(key string, dst func(*Params) *string) field {
	return field{
		key:   key,
		apply: func(p *Params, raw string) error { *dst(p) = raw; return nil },
		show:  func(p *Params) string { return *dst(p) },
	}
}

func intField(key string, dst func(*Params) *int) field {
	return field{
		key: key,
		apply: func(p *Params, raw string) error {
			v, err := parseInt(raw)
			if err != nil {
				return err
			}
			*dst(p) = v
			return nil
		},
		show: func(p *Params) string { return strconv.Itoa(*dst(p)) },
	}
}

func floatField(key string, dst func(*Params) *float64) field {
	return field{
		key: key,
		apply: func(p *Params, raw string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return fmt.Errorf("not a number: %q", raw)
			}
			*dst(p) = v
			return nil
		},
		show: func(p *Params) string { return strconv.FormatFloat(*dst(p), 'g', -1, 64) },
	}
}

func boolField(key string, dst func(*Params) *bool) field {
	return field{
		key: key,
		apply: func(p *Params, raw string) error {
			v, err := parseBool(raw)
			if err != nil {
				return err
			}
			*dst(p) = v
			return nil
		},
		show: func(p *Params) string { return strconv.FormatBool(*dst(p)) },
	}
}

func intsField(key string, dst func(*Params) *[]int) field {
	return field{
		key: key,
		apply: func(p *Params, raw string) error {
			parts := strings.Split(raw, ",")
			vals := make([]int, 0, len(parts))
			for _, part := range parts {
				v, err := parseInt(part)
				if err != nil {
					return err
				}
				vals = append(vals, v)
			}
			*dst(p) = vals
			return nil
		},
		show: func(p *Params) string {
			vals := *dst(p)
			out := make([]string, len(vals))
			for i, v := range vals {
				out[i] = strconv.Itoa(v)
			}
			return strings.Join(out, ",")
		},
	}
}

// rangeField never fails: malformed tokens are dropped by rangeset.Parse.
func rangeField(key string, dst func(*Params) *rangeset.Set) field {
	return field{
		key:   key,
		apply: func(p *Params, raw string) error { *dst(p) = rangeset.Parse(raw); return nil },
		show:  func(p *Params) string { return dst(p).String() },
	}
}

func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return v, nil
}

// parseBool accepts the same words as Python's ConfigParser.getboolean.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", raw)
}

// schema lists the keys of the [parameters] section in file order. Every
// key is required.
var schema = []field{
	stringField("fnet_spec", func(p *Params) *string { return &p.NetSpec }),
	intField("num_threads", func(p *Params) *int { return &p.NumThreads }),
	{
		key:   "dtype",
		apply: func(p *Params, raw string) error { p.DType = DType(raw); return nil },
		show:  func(p *Params) string { return string(p.DType) },
	},
	stringField("out_type", func(p *Params) *string { return &p.OutType }),

	stringField("train_save_net", func(p *Params) *string { return &p.TrainSaveNet }),
	stringField("train_load_net", func(p *Params) *string { return &p.TrainLoadNet }),

	rangeField("train_range", func(p *Params) *rangeset.Set { return &p.TrainRange }),
	rangeField("test_range", func(p *Params) *rangeset.Set { return &p.TestRange }),
	floatField("eta", func(p *Params) *float64 { return &p.Eta }),
	floatField("anneal_factor", func(p *Params) *float64 { return &p.AnnealFactor }),
	floatField("momentum", func(p *Params) *float64 { return &p.Momentum }),
	floatField("weight_decay", func(p *Params) *float64 { return &p.WeightDecay }),
	intsField("train_outsz", func(p *Params) *[]int { return &p.TrainOutSize }),
	boolField("is_optimize", func(p *Params) *bool { return &p.IsOptimize }),
	boolField("is_data_aug", func(p *Params) *bool { return &p.IsDataAug }),
	boolField("is_bd_mirror", func(p *Params) *bool { return &p.IsBoundaryMirror }),
	boolField("is_rebalance", func(p *Params) *bool { return &p.IsRebalance }),
	boolField("is_malis", func(p *Params) *bool { return &p.IsMalis }),
	boolField("is_visual", func(p *Params) *bool { return &p.IsVisual }),
	stringField("cost_fn", func(p *Params) *string { return &p.CostFnStr }),

	intField("Num_iter_per_show", func(p *Params) *int { return &p.NumIterPerShow }),
	intField("Num_iter_per_test", func(p *Params) *int { return &p.NumIterPerTest }),
	intField("test_num", func(p *Params) *int { return &p.TestNum }),
	intField("Num_iter_per_save", func(p *Params) *int { return &p.NumIterPerSave }),
	intField("Max_iter", func(p *Params) *int { return &p.MaxIter }),

	rangeField("forward_range", func(p *Params) *rangeset.Set { return &p.ForwardRange }),
	stringField("forward_net", func(p *Params) *string { return &p.ForwardNet }),
	intsField("forward_outsz", func(p *Params) *[]int { return &p.ForwardOutSize }),
	stringField("output_prefix", func(p *Params) *string { return &p.OutputPrefix }),
}

// Keys returns the [parameters] keys Load requires, in file order.
func Keys() []string {
	keys := make([]string, len(schema))
	for i, f := range schema {
		keys[i] = f.key
	}
	return keys
}
