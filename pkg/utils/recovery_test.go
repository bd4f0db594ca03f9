package utils_test

import (
	"testing"

	"github.com/tlstats/tlstats/pkg/utils"
)

func TestWithRecovery_CatchesPanic(t *testing.T) {
	var caught interface{}
	utils.WithRecovery(
		func() { panic("boom") },
		func(r interface{}) { caught = r },
	)
	if caught != "boom" {
		t.Fatalf("unexpected recover result: %v", caught)
	}
}

func TestWithRecovery_NoPanic(t *testing.T) {
	ran := false
	utils.WithRecovery(func() { ran = true }, nil)
	if !ran {
		t.Fatal("exec did not run")
	}
}
