// Package objstream reads the compressed-object container streams
// introduced by ISO 32000 §7.5.7 ("object streams"). A decoded object
// stream packs N sub-objects into one compressed payload: a header of N
// (object number, byte offset) pairs, followed by the /First-anchored
// object bodies themselves.
package objstream

import (
	"fmt"

	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
)

// Reader enumerates the sub-objects packed into one decoded object
// stream's payload.
type Reader struct {
	payload []byte
	first   int64
	offsets []entryOffset
}

type entryOffset struct {
	objectNumber uint64
	offset       int64
}

// New builds a Reader over decoded (i.e. already filter-decoded) object
// stream bytes, given the stream dictionary's /N and /First values.
func New(decoded []byte, n int64, first int64) (*Reader, error) {
	if n < 0 || first < 0 || int64(len(decoded)) < first {
		return nil, fmt.Errorf("objstream: /N or /First out of range: %w", model.ErrCorruptObject)
	}

	r := &Reader{payload: decoded, first: first}
	i := 0
	for k := int64(0); k < n; k++ {
		num, next, ok := lexscan.ReadUint(decoded, i)
		if !ok {
			return nil, fmt.Errorf("objstream: malformed header entry %d: %w", k, model.ErrCorruptObject)
		}
		off, next2, ok := lexscan.ReadUint(decoded, next)
		if !ok {
			return nil, fmt.Errorf("objstream: malformed header entry %d: %w", k, model.ErrCorruptObject)
		}
		i = next2
		r.offsets = append(r.offsets, entryOffset{objectNumber: num, offset: int64(off)})
	}
	return r, nil
}

// Count returns the number of sub-objects this stream declares.
func (r *Reader) Count() int { return len(r.offsets) }

// ObjectNumberAt returns the object number stored at header index idx.
func (r *Reader) ObjectNumberAt(idx int) (uint64, bool) {
	if idx < 0 || idx >= len(r.offsets) {
		return 0, false
	}
	return r.offsets[idx].objectNumber, true
}

// ValueAt parses and returns the sub-object at header index idx. Per ISO
// 32000 §7.5.7, objects inside an object stream are never themselves
// streams, so whatever objreader.ParseObject returns is the final value.
func (r *Reader) ValueAt(idx int) (model.Value, error) {
	if idx < 0 || idx >= len(r.offsets) {
		return nil, fmt.Errorf("objstream: index %d out of range: %w", idx, model.ErrCorruptObject)
	}
	start := r.first + r.offsets[idx].offset
	if start < 0 || start > int64(len(r.payload)) {
		return nil, fmt.Errorf("objstream: entry %d offset out of range: %w", idx, model.ErrCorruptObject)
	}
	rd := objreader.New(r.payload[start:])
	v, err := rd.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("objstream: entry %d: %w", idx, err)
	}
	return v, nil
}

// IndexOf returns the header index of objectNumber, if this stream
// declares it. Compressed xref entries record only an index when the
// producer is well-behaved, but recovery code may only know the object
// number and need to search for it.
func (r *Reader) IndexOf(objectNumber uint64) (int, bool) {
	for i, e := range r.offsets {
		if e.objectNumber == objectNumber {
			return i, true
		}
	}
	return -1, false
}
