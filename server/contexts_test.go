package server

import (
	"github.com/pkg/errors"
	"testing"
)

func TestContextHolderLimit(t *testing.T) {

	config := testConfig(t)
	config.ContextConfig.MaxContexts = 2
	h := NewContextHolder(config, nil)

	if err := h.Allocate("a"); err != nil {
		t.Fatal(err)
	}
	if err := h.Allocate("a"); errors.Cause(err) != ErrContextAllocation {
		t.Fatal("Allocating same context twice should fail")
	}
	if err := h.Allocate("b"); err != nil {
		t.Fatal(err)
	}
	if err := h.Allocate("c"); errors.Cause(err) != ErrContextAllocation {
		t.Fatal("Allocation over limit should fail")
	}

	h.Release("a")
	if h.Exists("a") {
		t.Fatal("Released context should not exist")
	}
	if err := h.Allocate("c"); err != nil {
		t.Fatal("Released slot should be reusable", err)
	}

}
