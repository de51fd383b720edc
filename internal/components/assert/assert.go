// Package assert panics on violated preconditions, they are programmer
// errors and never user input errors.
package assert

import "fmt"

// NotEmptyStr panics if the value called name is empty.
func NotEmptyStr(name, value string) {
	if value == "" {
		panic(fmt.Sprintf("assert: %s must not be empty", name))
	}
}
