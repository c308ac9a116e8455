// Package config defines the validated knobs that govern how a document
// is opened: how far leniency extends, how far back to look for
// startxref, which stream-buffering policy is named (validated only), and
// what decryption credentials to try. It is spec.md §6's Configuration, realized with
// github.com/go-playground/validator/v10 the way the teacher's own CLI
// flag structs are validated (see DESIGN.md).
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/corvidae-labs/pdfxref/security"
)

// ScratchPolicy names a buffering strategy for large decoded stream
// content, per spec.md §6. Validate checks the value, but no other code
// reads it: the resolver always holds decoded streams fully in memory,
// whichever policy is set.
type ScratchPolicy string

const (
	// ScratchMemory names fully in-memory buffering.
	ScratchMemory ScratchPolicy = "memory"
	// ScratchCapped names in-memory buffering capped at
	// ScratchMemoryLimit bytes; Validate requires a positive limit with it.
	// No spill to disk is implemented.
	ScratchCapped ScratchPolicy = "capped"
	// ScratchFile names file-backed buffering. No file buffer is
	// implemented.
	ScratchFile ScratchPolicy = "file"
)

// Configuration is copied once into a Document at open time (spec.md §6:
// "Setting [lenient] after parse start is rejected") and never mutated
// again.
type Configuration struct {
	// Lenient enables the brute-force recovery fallbacks throughout xref
	// resolution and object parsing.
	Lenient bool `validate:"-"`

	// EOFLookupRange is how many trailing bytes are scanned for
	// startxref/%%EOF before giving up (or falling back to recovery).
	EOFLookupRange uint32 `validate:"min=16"`

	// Scratch names the large-stream buffering strategy (validated only;
	// see ScratchPolicy).
	Scratch ScratchPolicy `validate:"oneof=memory capped file"`

	// ScratchMemoryLimit is ScratchCapped's in-memory limit, in bytes,
	// checked by Validate. Ignored for the other two policies.
	ScratchMemoryLimit int64 `validate:"omitempty,min=0"`

	// DecryptionMaterial supplies the password/certificate used to open
	// an encrypted document. Nil is valid for an unencrypted one.
	DecryptionMaterial *security.Material `validate:"omitempty"`
}

// Default returns a Configuration with the package's recommended
// defaults: lenient recovery enabled, a 2048-byte startxref lookup
// window (spec.md §6), and in-memory stream buffering.
func Default() Configuration {
	return Configuration{
		Lenient:        true,
		EOFLookupRange: 2048,
		Scratch:        ScratchMemory,
	}
}

var validate = validator.New()

// Validate checks the struct tags above, returning a descriptive error if
// any field is out of range.
func (c Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	if c.Scratch == ScratchCapped && c.ScratchMemoryLimit == 0 {
		return fmt.Errorf("config: scratch policy %q requires ScratchMemoryLimit > 0", ScratchCapped)
	}
	return nil
}
