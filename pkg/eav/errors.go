package eav

import (
	"errors"
	"fmt"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// ErrTargetNotFound is returned when a referenced attribute or entry doesn't exist
var ErrTargetNotFound = errors.New("target not found")

// InvalidValueError reports a value whose shape doesn't match the attribute's
// declared type. Nothing is written when it is returned.
type InvalidValueError struct {
	Type   model.AttrType
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s attribute: %s", e.Type, e.Reason)
}

func invalidValue(t model.AttrType, format string, args ...interface{}) error {
	return &InvalidValueError{Type: t, Reason: fmt.Sprintf(format, args...)}
}

// ValueTooLargeError reports a scalar payload over the size cap.
type ValueTooLargeError struct {
	Size  int
	Limit int
}

func (e *ValueTooLargeError) Error() string {
	return fmt.Sprintf("value of %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}
