//+build go1.10

package util

import "strings"

// StringBuilder is strings.Builder under its original name. The module
// targets go1.10+ unconditionally, so string_builder_compat.go (behind
// "!go1.10") never builds; this is its counterpart.
type StringBuilder = strings.Builder

// StringWriter is satisfied by *StringBuilder (WriteString has a pointer
// receiver) and by any other writer with that method; OrList writes into it.
type StringWriter interface {
	WriteString(s string) (int, error)
}
