package xref

import "github.com/corvidae-labs/pdfxref/model"

// Trailer holds the recognized trailer dictionary keys (spec.md §3).
// After chain resolution, a single consolidated Trailer is produced by
// overlaying trailers newest-to-oldest: once a field is filled from a
// newer revision's trailer, an older revision's value for the same field
// is ignored.
type Trailer struct {
	Root    *model.Reference
	Info    *model.Reference
	Encrypt model.Value // Dict or Reference; nil if absent
	ID      model.Array
	Size    int64
	Prev    int64 // not filled in by mergeInto or recovery; always 0
	XRefStm int64 // not filled in by mergeInto or recovery; always 0
}

// rawTrailer is the set of keys as seen in one revision's trailer
// dictionary, with presence tracked explicitly (a key can legitimately be
// absent versus present-but-zero).
type rawTrailer struct {
	dict model.Dict
}

func newRawTrailer(d model.Dict) rawTrailer { return rawTrailer{dict: d} }

func (r rawTrailer) has(key model.Name) bool {
	_, ok := r.dict[key]
	return ok
}

// mergeInto overlays r onto acc, keeping acc's existing values where both
// are present (acc is assumed newer). It returns the set of keys r itself
// carried; the chain walker's callers do not use it.
func (r rawTrailer) mergeInto(acc *Trailer) (keysSeen map[model.Name]bool) {
	keysSeen = map[model.Name]bool{}
	for k := range r.dict {
		keysSeen[k] = true
	}

	if acc.Root == nil {
		if ref, ok := r.dict["Root"].(model.Reference); ok {
			acc.Root = &ref
		}
	}
	if acc.Info == nil {
		if ref, ok := r.dict["Info"].(model.Reference); ok {
			acc.Info = &ref
		}
	}
	if acc.Encrypt == nil {
		if v, ok := r.dict["Encrypt"]; ok {
			acc.Encrypt = v
		}
	}
	if acc.ID == nil {
		if arr, ok := r.dict["ID"].(model.Array); ok {
			acc.ID = arr
		}
	}
	if acc.Size == 0 {
		if sz, ok := r.dict["Size"].(model.Integer); ok {
			acc.Size = int64(sz)
		}
	}
	return keysSeen
}

func offsetOf(v model.Value) (int64, bool) {
	switch v := v.(type) {
	case model.Integer:
		return int64(v), true
	case model.Reference:
		// Buggy producers write "/Prev NNN 0 R" instead of "/Prev NNN";
		// the object number itself is the intended offset.
		return int64(v.ObjectNumber), true
	default:
		return 0, false
	}
}
