// Package testkit holds helpers shared by package tests
package testkit

import (
	"strings"
	"sync"
	"testing"
)

var serial sync.Mutex

// Serial holds a process wide lock until t finishes, use it in tests that touch package vars or env
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}

// Swap sets *target for the duration of t
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	old := *target
	*target = v
	t.Cleanup(func() { *target = old })
}

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
}

// MustContain fails t unless out contains want
func MustContain(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("missing %q in:\n%s", want, out)
	}
}
