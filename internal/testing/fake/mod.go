// Package fake provides fake implementations for interfaces commonly used in
// the repository. The implementations offer configuration to return errors
// when it is needed by the unit test and it is also possible to record the
// calls of the functions of an object in some cases.
package fake

import (
	"errors"
	"fmt"
)

var fakeErr = errors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the expected format of a wrapped fake error.
func Err(msg string) string {
	return fmt.Sprintf("%s: %s", msg, fakeErr.Error())
}
