package cli

import (
	"errors"
	"fmt"

	"github.com/mark3labs/routes2swagger/internal/swagger"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// swaggerUsageError turns assembly and validation failures into usage errors
// that name the error class and the offending location.
func swaggerUsageError(err error) error {
	var se *swagger.Error
	if !errors.As(err, &se) || se.Code == swagger.Canceled {
		return err
	}
	msg := fmt.Sprintf("%s: %s", se.Code, se.Message)
	if se.Pointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.Pointer)
	}
	return newUsageError(msg)
}
