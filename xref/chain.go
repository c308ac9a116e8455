package xref

import (
	"errors"
	"fmt"

	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
)

// Config is the subset of the document-wide Configuration the chain walker
// needs: whether repair paths are enabled, and how far back from EOF to
// look for startxref.
type Config struct {
	Lenient        bool
	EOFLookupRange int64
}

// Recovery is the brute-force recovery subsystem's interface, as seen by
// the chain walker. It is implemented by package bruteforce; it is
// expressed as an interface here (rather than an import) so that xref,
// which bruteforce itself depends on for Map/Entry/Trailer, never imports
// bruteforce back.
type Recovery interface {
	// NearestXref returns the discovered xref table/stream start closest
	// to claimedOffset, consuming it from the candidate pool so repeated
	// claims map to distinct repaired offsets (spec.md §4.8). ok is false
	// if no candidate remains.
	NearestXref(claimedOffset int64) (offset int64, isStream bool, ok bool)

	// FullTrailer reconstructs a complete Map and Trailer from scratch by
	// linear scanning, used when startxref cannot be found at all.
	FullTrailer() (*Map, Trailer, error)
}

// chain carries the state threaded through one trailer resolution pass.
type chain struct {
	src      *pdfio.Source
	conf     Config
	recovery Recovery

	visited map[int64]bool
	result  *Map

	trailerAcc Trailer

	replacedByRecovery bool
}

// ResolveTrailer walks startxref → xref table/stream → /Prev …, as
// described by spec.md §4.3, and returns the consolidated Map and Trailer.
func ResolveTrailer(src *pdfio.Source, conf Config, recovery Recovery) (*Map, Trailer, error) {
	if conf.EOFLookupRange < 16 {
		conf.EOFLookupRange = 16
	}

	c := &chain{
		src:      src,
		conf:     conf,
		recovery: recovery,
		visited:  map[int64]bool{},
		result:   NewMap(),
	}

	offset, err := c.locateStartxref()
	if err != nil {
		if errors.Is(err, errFallbackToFullRecovery) && conf.Lenient && recovery != nil {
			m, tr, ferr := recovery.FullTrailer()
			if ferr != nil {
				return nil, Trailer{}, ferr
			}
			return m, tr, nil
		}
		return nil, Trailer{}, err
	}

	if err := c.walk(offset); err != nil {
		return nil, Trailer{}, err
	}

	if !c.replacedByRecovery {
		if err := c.validateConsolidatedMap(); err != nil {
			return nil, Trailer{}, err
		}
	}

	if c.replacedByRecovery && recovery != nil {
		// spec.md §4.3 step 4: "If validation replaces more than zero
		// entries, replace the entire xref map with the brute-force
		// result."
		m, tr, err := recovery.FullTrailer()
		if err != nil {
			return nil, Trailer{}, err
		}
		return m, tr, nil
	}

	return c.result, c.trailerAcc, nil
}

var errFallbackToFullRecovery = errors.New("xref: startxref not found, falling back to brute-force recovery")

// locateStartxref implements spec.md §4.3 step 1.
func (c *chain) locateStartxref() (int64, error) {
	tail, base, err := c.src.TailWindow(c.conf.EOFLookupRange)
	if err != nil {
		return 0, err
	}

	eofIdx := lexscan.FindLastKeyword(tail, "%%EOF")
	if eofIdx < 0 {
		if !c.conf.Lenient {
			return 0, model.ErrMissingEOF
		}
		// lenient: missing %%EOF is tolerated, continue searching for
		// startxref in the same window.
	}

	sxIdx := lexscan.FindLastKeyword(tail, "startxref")
	if sxIdx < 0 {
		if !c.conf.Lenient {
			return 0, model.ErrMissingStartxref
		}
		return 0, errFallbackToFullRecovery
	}

	v, _, ok := lexscan.ReadUint(tail, sxIdx+len("startxref"))
	if !ok {
		if !c.conf.Lenient {
			return 0, fmt.Errorf("xref: startxref has no numeric operand: %w", model.ErrMalformedXref)
		}
		return 0, errFallbackToFullRecovery
	}

	offset := int64(v)
	_ = base
	return offset, nil
}

// walk implements spec.md §4.3 steps 2-3.
func (c *chain) walk(offset int64) error {
	for offset != 0 {
		if c.visited[offset] {
			return model.ErrXrefLoop
		}
		c.visited[offset] = true

		validated, isStream := c.validateOffset(offset)
		if !validated {
			if !c.conf.Lenient || c.recovery == nil {
				return fmt.Errorf("xref: offset %d does not point at a table or stream: %w", offset, model.ErrMalformedXref)
			}
			nearest, nearestIsStream, ok := c.recovery.NearestXref(offset)
			if !ok {
				return fmt.Errorf("xref: no recovery candidate near offset %d: %w", offset, model.ErrMalformedXref)
			}
			c.replacedByRecovery = true
			offset, isStream = nearest, nearestIsStream
			if c.visited[offset] {
				return model.ErrXrefLoop
			}
			c.visited[offset] = true
		}

		var (
			prev    int64
			xrefStm int64
			err     error
		)
		if isStream {
			prev, xrefStm, err = c.parseOneStream(offset, true)
		} else {
			prev, xrefStm, err = c.parseOneTable(offset)
		}
		if err != nil {
			return err
		}

		if xrefStm != 0 {
			if _, _, err := c.parseOneStream(xrefStm, false); err != nil {
				if !c.conf.Lenient {
					return err
				}
				// lenient: a broken hybrid xref stream is not fatal, the
				// containing table's entries still stand.
			}
		}

		offset = prev
	}
	return nil
}

// validateOffset checks that bytes at offset look like "xref" or a
// plausible "N G obj" /Type /XRef header (spec.md §4.3 step 2).
func (c *chain) validateOffset(offset int64) (ok bool, isStream bool) {
	if offset < 0 || offset >= c.src.Length() {
		return false, false
	}
	peekLen := int64(64)
	if offset+peekLen > c.src.Length() {
		peekLen = c.src.Length() - offset
	}
	buf, err := c.src.ReadAt(offset, int(peekLen))
	if err != nil {
		return false, false
	}

	if matched, _ := lexscan.MatchKeyword(buf, 0, "xref"); matched {
		return true, false
	}

	// "N G obj" header: read the whole object declaration plus enough of
	// the dict to find /Type /XRef. We don't have the dict length yet, so
	// pull a larger window.
	window, err := c.src.ReadAt(offset, minInt(4096, int(c.src.Length()-offset)))
	if err != nil {
		return false, false
	}
	_, _, _, err = objreader.ObjectHeader(window)
	if err != nil {
		return false, false
	}
	if lexscan.FindKeyword(window, 0, "/XRef") >= 0 && lexscan.FindKeyword(window, 0, "stream") >= 0 {
		return true, true
	}
	return false, false
}

// objectHeaderMatches reports whether the bytes at offset begin with an
// "N G obj" header declaring exactly key.
func (c *chain) objectHeaderMatches(key model.ObjectKey, offset int64) bool {
	if offset < 0 || offset >= c.src.Length() {
		return false
	}
	windowLen := int64(64)
	if offset+windowLen > c.src.Length() {
		windowLen = c.src.Length() - offset
	}
	buf, err := c.src.ReadAt(offset, int(windowLen))
	if err != nil {
		return false
	}
	num, gen, _, err := objreader.ObjectHeader(buf)
	if err != nil {
		return false
	}
	return num == key.Number && gen == key.Generation
}

// validateConsolidatedMap implements spec.md §4.3 step 4: every InUse
// offset in the consolidated map must actually point at an object header
// matching its key. A mismatch is fatal in strict mode; in lenient mode it
// marks the whole map for replacement by the brute-force scanner, since a
// single bad offset usually means the file was reconstructed/appended in a
// way that invalidates byte offsets generally, not just for one object.
func (c *chain) validateConsolidatedMap() error {
	for _, key := range c.result.Keys() {
		entry, _ := c.result.Get(key)
		if entry.Kind != KindInUse {
			continue
		}
		if c.objectHeaderMatches(key, entry.Offset) {
			continue
		}
		if !c.conf.Lenient || c.recovery == nil {
			return fmt.Errorf("xref: object %s: offset %d does not match claimed key: %w", key, entry.Offset, model.ErrObjectMismatch)
		}
		c.replacedByRecovery = true
		return nil
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
