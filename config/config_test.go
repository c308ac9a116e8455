package config

import "testing"

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected Default() to be valid, got %v", err)
	}
}

func TestValidateRejectsTooSmallLookupRange(t *testing.T) {
	c := Default()
	c.EOFLookupRange = 4
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for EOFLookupRange below the minimum")
	}
}

func TestValidateRejectsUnknownScratchPolicy(t *testing.T) {
	c := Default()
	c.Scratch = "bogus"
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an unrecognized scratch policy")
	}
}

func TestValidateRequiresMemoryLimitForCappedScratch(t *testing.T) {
	c := Default()
	c.Scratch = ScratchCapped
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error when ScratchCapped has no ScratchMemoryLimit")
	}

	c.ScratchMemoryLimit = 1 << 20
	if err := c.Validate(); err != nil {
		t.Fatalf("expected a positive ScratchMemoryLimit to be accepted, got %v", err)
	}
}
