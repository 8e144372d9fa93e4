package engine

import (
	"errors"
	"fmt"
)

// InvalidInputError 输入校验失败，指明具体字段
type InvalidInputError struct {
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func invalid(field string, value float64, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}

// InvalidInputs 展开 (可能由 errors.Join 组合的) 错误中的全部 InvalidInputError
func InvalidInputs(err error) []*InvalidInputError {
	if err == nil {
		return nil
	}

	var out []*InvalidInputError
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var iie *InvalidInputError
		if errors.As(e, &iie) {
			out = append(out, iie)
		}
	}
	walk(err)
	return out
}

// IsInvalidInput 是否为输入校验错误
func IsInvalidInput(err error) bool {
	return len(InvalidInputs(err)) > 0
}
