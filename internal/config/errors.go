package config

import "fmt"

// ErrorCode classifies a ConfigError.
type ErrorCode int

const (
	ErrCodeSource ErrorCode = iota + 1
	ErrCodeMissingSection
	ErrCodeMissingKey
	ErrCodeMalformedValue
	ErrCodeUnknownCostFunction
	ErrCodeCostFunctionMismatch
	ErrCodeValidation
)

// ConfigError is returned for every failure while loading a configuration.
// None of them are recoverable: the caller is expected to abort startup.
type ConfigError struct {
	Code    ErrorCode `json:"code"`
	Section string    `json:"section,omitempty"`
	Key     string    `json:"key,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *ConfigError) Error() string {
	loc := e.Section
	if e.Key != "" {
		if loc != "" {
			loc += "."
		}
		loc += e.Key
	}

	msg := fmt.Sprintf("config: [%d] %s", e.Code, e.Message)
	if loc != "" {
		msg = fmt.Sprintf("config: [%d] %s: %s", e.Code, loc, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is matches any ConfigError carrying the same code, so the predefined
// errors below work with errors.Is.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Code == e.Code
}

func newError(code ErrorCode, section, key, message string, err error) error {
	return &ConfigError{
		Code:    code,
		Section: section,
		Key:     key,
		Message: message,
		Err:     err,
	}
}

// Predefined errors
var (
	ErrSource              = &ConfigError{Code: ErrCodeSource, Message: "cannot read configuration"}
	ErrMissingSection      = &ConfigError{Code: ErrCodeMissingSection, Message: "missing section"}
	ErrMissingKey          = &ConfigError{Code: ErrCodeMissingKey, Message: "missing key"}
	ErrMalformedValue      = &ConfigError{Code: ErrCodeMalformedValue, Message: "malformed value"}
	ErrUnknownCostFunction = &ConfigError{Code: ErrCodeUnknownCostFunction, Message: "unknown cost function"}
	ErrCostFunctionType    = &ConfigError{Code: ErrCodeCostFunctionMismatch, Message: "cost function does not match out_type"}
	ErrValidation          = &ConfigError{Code: ErrCodeValidation, Message: "validation failed"}
)
