package app_test

import (
	"testing"

	"go.uber.org/goleak"
)

// background runs must never outlive their controller
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
