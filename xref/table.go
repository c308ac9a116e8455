package xref

import (
	"fmt"

	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
)

// parseOneTable parses one classic table-form xref section starting at
// offset (the "xref" keyword itself) through its trailing "trailer << ...
// >>" dictionary, per ISO 32000 §7.5.4. It merges discovered entries into
// c.result (newest wins) and the trailer dictionary into c.trailerAcc, and
// returns the /Prev and /XRefStm offsets found in that trailer (0 if
// absent).
func (c *chain) parseOneTable(offset int64) (prev int64, xrefStm int64, err error) {
	buf, rerr := c.src.ReadAt(offset, int(c.src.Length()-offset))
	if rerr != nil {
		return 0, 0, rerr
	}

	matched, i := lexscan.MatchKeyword(buf, 0, "xref")
	if !matched {
		return 0, 0, fmt.Errorf("xref table: missing \"xref\" keyword: %w", model.ErrMalformedXref)
	}

	entries := NewMap()
	for {
		i = lexscan.SkipWhitespaceAndComments(buf, i)
		if i >= len(buf) {
			return 0, 0, fmt.Errorf("xref table: truncated before trailer: %w", model.ErrTruncated)
		}

		if matched, after := lexscan.MatchKeyword(buf, i, "trailer"); matched {
			i = after
			break
		}

		startNum, next, ok := lexscan.ReadUint(buf, i)
		if !ok {
			return 0, 0, fmt.Errorf("xref table: expected subsection header: %w", model.ErrMalformedXref)
		}
		count, next, ok := lexscan.ReadUint(buf, next)
		if !ok {
			return 0, 0, fmt.Errorf("xref table: expected subsection entry count: %w", model.ErrMalformedXref)
		}
		i = next

		for n := uint64(0); n < count; n++ {
			objOffset, next, ok := lexscan.ReadUint(buf, i)
			if !ok {
				return 0, 0, fmt.Errorf("xref table: malformed entry offset: %w", model.ErrMalformedXref)
			}
			gen, next, ok := lexscan.ReadGeneration(buf, next)
			if !ok {
				return 0, 0, fmt.Errorf("xref table: malformed entry generation: %w", model.ErrMalformedXref)
			}
			next = lexscan.SkipWhitespace(buf, next)
			if next >= len(buf) {
				return 0, 0, fmt.Errorf("xref table: truncated entry: %w", model.ErrTruncated)
			}
			kind := buf[next]
			next++

			key := model.ObjectKey{Number: startNum + n, Generation: gen}
			switch kind {
			case 'n':
				entries.SetIfAbsent(key, InUse(int64(objOffset)))
			case 'f':
				// Free entries are recorded for completeness but never
				// resolved to a value; objOffset is really the next free
				// object number in the linked list (ISO 32000 Table 18).
				entries.SetIfAbsent(key, Free(model.ObjectKey{Number: objOffset}))
			default:
				return 0, 0, fmt.Errorf("xref table: unrecognized entry type %q: %w", kind, model.ErrMalformedXref)
			}
			i = next
		}
	}

	rd := objreader.New(buf[i:])
	trailerVal, err := rd.ParseObject()
	if err != nil {
		return 0, 0, fmt.Errorf("xref table: malformed trailer dictionary: %w", err)
	}
	dict, ok := trailerVal.(model.Dict)
	if !ok {
		return 0, 0, fmt.Errorf("xref table: trailer is not a dictionary: %w", model.ErrMalformedXref)
	}

	c.result.Merge(entries)
	newRawTrailer(dict).mergeInto(&c.trailerAcc)

	if v, has := dict["Prev"]; has {
		if off, ok := offsetOf(v); ok {
			prev = off
		}
	}
	if v, has := dict["XRefStm"]; has {
		if off, ok := offsetOf(v); ok {
			xrefStm = off
		}
	}
	return prev, xrefStm, nil
}
