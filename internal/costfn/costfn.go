// Package costfn maps the cost_fn option of a training configuration onto
// a closed set of cost function kinds, and keeps the registry through
// which the training backend supplies an implementation for each kind.
package costfn

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a cost function.
type Kind int

const (
	Unknown Kind = iota
	SoftmaxLoss
	BinomialCrossEntropy
	SquareLoss
	MultinomialCrossEntropy
)

var kindNames = map[Kind]string{
	SoftmaxLoss:             "softmax_loss",
	BinomialCrossEntropy:    "binomial_cross_entropy",
	SquareLoss:              "square_loss",
	MultinomialCrossEntropy: "multinomial_cross_entropy",
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{SoftmaxLoss, BinomialCrossEntropy, SquareLoss, MultinomialCrossEntropy}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the kind whose registry name is exactly name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknown, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

var (
	// ErrUnknown is returned when a name matches no cost function.
	ErrUnknown = errors.New("unknown cost function")
	// ErrMismatch is returned when the requested cost function cannot be
	// used with the configured output type.
	ErrMismatch = errors.New("cost function does not match output type")
)

// Resolve picks the cost function for a cost_fn option given the output
// type. Both strings are matched by case-sensitive substring, and the
// first matching rule wins:
//
//	"auto" + out type with "boundary" -> softmax_loss
//	"auto" + out type with "affin"    -> binomial_cross_entropy
//	"square"                          -> square_loss (boundary only)
//	"binomial"                        -> binomial_cross_entropy (affin only)
//	"multinomial_cross_entropy"       -> multinomial_cross_entropy (boundary only)
//	"softmax"                         -> softmax_loss (boundary only)
func Resolve(name, outType string) (Kind, error) {
	boundary := strings.Contains(outType, "boundary")
	affinity := strings.Contains(outType, "affin")

	switch {
	case strings.Contains(name, "auto"):
		switch {
		case boundary:
			return SoftmaxLoss, nil
		case affinity:
			return BinomialCrossEntropy, nil
		}
		return Unknown, fmt.Errorf("%w: cannot infer %q from out_type %q", ErrUnknown, name, outType)
	case strings.Contains(name, "square"):
		return needs(SquareLoss, boundary, "boundary", outType)
	case strings.Contains(name, "binomial"):
		return needs(BinomialCrossEntropy, affinity, "affin", outType)
	case strings.Contains(name, "multinomial_cross_entropy"):
		return needs(MultinomialCrossEntropy, boundary, "boundary", outType)
	case strings.Contains(name, "softmax"):
		return needs(SoftmaxLoss, boundary, "boundary", outType)
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknown, name)
}

func needs(k Kind, ok bool, want, outType string) (Kind, error) {
	if !ok {
		return Unknown, fmt.Errorf("%w: %s needs an out_type containing %q, got %q", ErrMismatch, k, want, outType)
	}
	return k, nil
}
