package xref

import (
	"errors"
	"fmt"

	"github.com/corvidae-labs/pdfxref/model"
)

// StreamLayout is the decoded /W, /Index, /Size triple describing how to
// read a cross-reference stream's binary payload (spec.md §4.4).
type StreamLayout struct {
	Widths [3]int          // w0 (type), w1 (field2), w2 (field3)
	Index  [][2]int64      // (first key, run length) pairs
	Size   int64
}

// ParseStreamLayout reads /W, /Index, and /Size out of an (already
// resolved) xref-stream dictionary.
func ParseStreamLayout(dict model.Dict) (StreamLayout, error) {
	var out StreamLayout

	sizeV, ok := dict["Size"].(model.Integer)
	if !ok {
		return out, errors.New("xref stream: missing /Size")
	}
	out.Size = int64(sizeV)

	wArr, ok := dict["W"].(model.Array)
	if !ok || len(wArr) < 3 {
		return out, errors.New("xref stream: missing or malformed /W")
	}
	for i := 0; i < 3; i++ {
		n, ok := wArr[i].(model.Integer)
		if !ok || n < 0 {
			return out, fmt.Errorf("xref stream: /W[%d] is not a non-negative integer", i)
		}
		out.Widths[i] = int(n)
	}

	if idxArr, ok := dict["Index"].(model.Array); ok && len(idxArr) > 0 {
		if len(idxArr)%2 != 0 {
			return out, errors.New("xref stream: /Index has an odd number of elements")
		}
		for i := 0; i < len(idxArr); i += 2 {
			first, ok1 := idxArr[i].(model.Integer)
			count, ok2 := idxArr[i+1].(model.Integer)
			if !ok1 || !ok2 {
				return out, errors.New("xref stream: /Index entries must be integers")
			}
			out.Index = append(out.Index, [2]int64{int64(first), int64(count)})
		}
	} else {
		// Default per spec.md §4.4: "[0, Size]".
		out.Index = [][2]int64{{0, out.Size}}
	}

	return out, nil
}

// entrySize returns the per-entry byte width w0+w1+w2.
func (l StreamLayout) entrySize() int { return l.Widths[0] + l.Widths[1] + l.Widths[2] }

// count returns the total number of entries described by Index.
func (l StreamLayout) count() int64 {
	var total int64
	for _, run := range l.Index {
		total += run[1]
	}
	return total
}

func bigEndian(buf []byte) int64 {
	var v int64
	for _, b := range buf {
		v = v<<8 | int64(b)
	}
	return v
}

// DecodeStream decodes a cross-reference stream's payload into a Map,
// per spec.md §4.4. buf must already have been filter-decoded.
func DecodeStream(buf []byte, layout StreamLayout) (*Map, error) {
	entrySize := layout.entrySize()
	total := layout.count()
	need := int(total) * entrySize
	if int64(need) < 0 || len(buf) < need {
		return nil, fmt.Errorf("xref stream: buffer too short (%d < %d): %w", len(buf), need, model.ErrMalformedXref)
	}
	buf = buf[:need]

	out := NewMap()
	w0, w1, w2 := layout.Widths[0], layout.Widths[1], layout.Widths[2]

	j := 0
	for _, run := range layout.Index {
		first, n := run[0], run[1]
		for i := int64(0); i < n; i++ {
			objNum := uint64(first + i)
			off := j * entrySize

			typ := int64(1) // per spec.md §4.4: if w0 == 0, type defaults to 1
			if w0 > 0 {
				typ = bigEndian(buf[off : off+w0])
			}
			f2 := bigEndian(buf[off+w0 : off+w0+w1])
			f3 := bigEndian(buf[off+w0+w1 : off+w0+w1+w2])

			switch typ {
			case 0:
				// Free entry: currently dropped, per spec.md §4.4.
			case 1:
				out.Set(model.ObjectKey{Number: objNum, Generation: uint32(f3)}, InUse(f2))
			case 2:
				out.Set(model.ObjectKey{Number: objNum}, Compressed(model.ObjectKey{Number: uint64(f2)}, uint32(f3)))
			default:
				// Unknown type: skipped, per spec.md §4.4.
			}
			j++
		}
	}
	return out, nil
}
