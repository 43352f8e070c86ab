// Package config loads the INI training configuration into a validated
// Params record.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/ini.v1"

	"znn/internal/costfn"
)

const (
	// ParametersSection holds every key of Params.
	ParametersSection = "parameters"
	// PPTypesKey is the label post-processing key of each label section.
	PPTypesKey = "pp_types"
)

// Values are read the way Python's ConfigParser reads them: key lookups
// ignore case, section names keep theirs, quotes are part of the value,
// '#' inside a value is literal, and inline comments are cut by
// stripInlineComment rather than by the ini parser.
var loadOptions = ini.LoadOptions{
	InsensitiveKeys:         true,
	IgnoreInlineComment:     true,
	PreserveSurroundedQuote: true,
}

// Load reads the configuration file at path. It returns the parsed
// document, with label sections already resolved, and the validated
// parameters.
func Load(path string) (*ini.File, *Params, error) {
	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return nil, nil, newError(ErrCodeSource, "", "", "cannot read "+path, err)
	}
	p, err := FromINI(f)
	if err != nil {
		return nil, nil, err
	}
	return f, p, nil
}

// Parse is Load for in-memory content.
func Parse(data []byte) (*ini.File, *Params, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, nil, newError(ErrCodeSource, "", "", "cannot parse configuration", err)
	}
	p, err := FromINI(f)
	if err != nil {
		return nil, nil, err
	}
	return f, p, nil
}

// FromINI builds Params from an already parsed document. On success the
// pp_types key of every label section in f has been rewritten in place.
func FromINI(f *ini.File) (*Params, error) {
	sec, err := f.GetSection(ParametersSection)
	if err != nil {
		return nil, newError(ErrCodeMissingSection, ParametersSection, "", "missing section", err)
	}

	p := &Params{}
	for _, fld := range schema {
		raw, ok := lookup(f, sec, fld.key)
		if !ok {
			return nil, newError(ErrCodeMissingKey, ParametersSection, fld.key, "missing key", nil)
		}
		if err := fld.apply(p, raw); err != nil {
			return nil, newError(ErrCodeMalformedValue, ParametersSection, fld.key, "malformed value", err)
		}
	}

	if err := checkConfig(f, p); err != nil {
		return nil, err
	}
	return p, nil
}

// lookup reads key from sec, falling back to the DEFAULT section.
func lookup(f *ini.File, sec *ini.Section, key string) (string, bool) {
	if sec.HasKey(key) {
		return stripInlineComment(sec.Key(key).String()), true
	}
	def := f.Section(ini.DefaultSection)
	if sec != def && def.HasKey(key) {
		return stripInlineComment(def.Key(key).String()), true
	}
	return "", false
}

// stripInlineComment cuts v at its first ';' when whitespace precedes it.
// A ';' glued to the text before it, as in "../out;run1", is kept.
func stripInlineComment(v string) string {
	if i := strings.IndexByte(v, ';'); i > 0 && unicode.IsSpace(rune(v[i-1])) {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// checkConfig resolves the cost function, asserts the invariants of every
// parameter, and resolves "auto" in the label sections.
func checkConfig(f *ini.File, p *Params) error {
	kind, err := costfn.Resolve(p.CostFnStr, p.OutType)
	switch {
	case errors.Is(err, costfn.ErrMismatch):
		return newError(ErrCodeCostFunctionMismatch, ParametersSection, "cost_fn", "cost function does not match out_type", err)
	case err != nil:
		return newError(ErrCodeUnknownCostFunction, ParametersSection, "cost_fn", "unknown cost function", err)
	}
	if strings.Contains(p.CostFnStr, "auto") {
		p.CostFnStr = kind.String()
	}
	p.CostFn = kind

	if err := validate(p); err != nil {
		return err
	}
	return resolveLabels(f, p.OutputKind())
}

func validate(p *Params) error {
	invalid := func(key, format string, args ...interface{}) error {
		return newError(ErrCodeValidation, ParametersSection, key, fmt.Sprintf(format, args...), nil)
	}
	unit := func(key string, v float64) error {
		// written so that NaN fails too
		if !(v >= 0 && v <= 1) {
			return invalid(key, "must be in [0, 1], got %v", v)
		}
		return nil
	}
	shape := func(key string, dims []int) error {
		if len(dims) != 3 {
			return invalid(key, "must have exactly 3 elements, got %d", len(dims))
		}
		for _, d := range dims {
			if d <= 0 {
				return invalid(key, "elements must be positive, got %v", dims)
			}
		}
		return nil
	}
	positive := func(key string, v int) error {
		if v <= 0 {
			return invalid(key, "must be positive, got %d", v)
		}
		return nil
	}

	if p.NumThreads < 0 {
		return invalid("num_threads", "must not be negative, got %d", p.NumThreads)
	}
	if !p.DType.Valid() {
		return invalid("dtype", "must be %s or %s, got %q", Float32, Float64, p.DType)
	}
	if p.OutputKind() == OutputUnknown {
		return invalid("out_type", `must contain "boundary" or "affin", got %q`, p.OutType)
	}

	checks := []error{
		shape("train_outsz", p.TrainOutSize),
		shape("forward_outsz", p.ForwardOutSize),
		unit("eta", p.Eta),
		unit("anneal_factor", p.AnnealFactor),
		unit("momentum", p.Momentum),
		unit("weight_decay", p.WeightDecay),
		positive("Num_iter_per_show", p.NumIterPerShow),
		positive("Num_iter_per_test", p.NumIterPerTest),
		positive("test_num", p.TestNum),
		positive("Num_iter_per_save", p.NumIterPerSave),
		positive("Max_iter", p.MaxIter),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if p.MaxIter <= p.NumIterPerSave {
		return invalid("Max_iter", "must be greater than Num_iter_per_save (%d), got %d", p.NumIterPerSave, p.MaxIter)
	}

	if p.IsMalis && !strings.Contains(p.OutType, "aff") {
		return invalid("is_malis", "malis weight should be used with affinity label type, out_type is %q", p.OutType)
	}
	return nil
}

// LabelSections returns the sections whose name contains "label".
func LabelSections(f *ini.File) []*ini.Section {
	var out []*ini.Section
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		if strings.Contains(sec.Name(), "label") {
			out = append(out, sec)
		}
	}
	return out
}

// resolveLabels replaces "auto" in each label section's pp_types with the
// post-processing type matching the output kind.
func resolveLabels(f *ini.File, kind OutputKind) error {
	var replacement string
	switch kind {
	case OutputBoundary:
		replacement = "binary_class"
	case OutputAffinity:
		replacement = "affinity"
	default:
		return nil
	}

	for _, sec := range LabelSections(f) {
		ppTypes, ok := lookup(f, sec, PPTypesKey)
		if !ok {
			return newError(ErrCodeMissingKey, sec.Name(), PPTypesKey, "missing key", nil)
		}
		sec.Key(PPTypesKey).SetValue(strings.ReplaceAll(ppTypes, "auto", replacement))
	}
	return nil
}

// Save writes the resolved document to path, so that tools reading the raw
// configuration afterwards see the resolved pp_types.
func Save(f *ini.File, path string) error {
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save configuration to %s: %w", path, err)
	}
	return nil
}
