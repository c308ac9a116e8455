package resolver

import (
	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objstream"
	"github.com/corvidae-labs/pdfxref/xref"
)

// Decryptor decrypts the strings and stream bytes belonging to one
// indirect object, keyed by its (number, generation). It is implemented by
// package security's Gate; expressing it as an interface here keeps
// resolver ignorant of which encryption algorithm, if any, is in play.
type Decryptor interface {
	DecryptString(key model.ObjectKey, raw []byte) ([]byte, error)
	DecryptStream(key model.ObjectKey, raw []byte) ([]byte, error)
}

// ObjectRecovery is the brute-force object discovery subsystem's
// interface, as seen by the Resolver: spec.md §4.8 situation (c), "a
// requested object key is absent from the xref map". It is implemented by
// package bruteforce's Scanner; expressed as an interface here (rather
// than an import) for the same reason xref.Recovery is — bruteforce
// imports resolver's sibling package xref, so importing bruteforce
// directly here would risk a cycle as the packages evolve.
type ObjectRecovery interface {
	// ObjectOffset returns the offset of the "N G obj" header matching
	// key, discovered by linear scan, if any.
	ObjectOffset(key model.ObjectKey) (offset int64, ok bool)
}

// Resolver walks a cross-reference Map against a byte Source to produce
// live model.Value objects, memoizing every object it parses (spec.md §5).
type Resolver struct {
	src      *pdfio.Source
	table    *xref.Map
	dec      Decryptor
	recovery ObjectRecovery
	lenient  bool

	pool       *pool
	objstreams map[model.ObjectKey]*objstream.Reader
	resolving  map[model.ObjectKey]bool // unused: cycles are caught by the pool cell's resolving state
}

// New builds a Resolver. dec may be nil for an unencrypted document;
// recovery may be nil to disable lenient-mode brute-force object
// discovery (spec.md §4.8 situation (c)).
func New(src *pdfio.Source, table *xref.Map, dec Decryptor, recovery ObjectRecovery, lenient bool) *Resolver {
	return &Resolver{
		src:        src,
		table:      table,
		dec:        dec,
		recovery:   recovery,
		lenient:    lenient,
		pool:       newPool(),
		objstreams: map[model.ObjectKey]*objstream.Reader{},
		resolving:  map[model.ObjectKey]bool{},
	}
}

// Resolve dereferences ref to its target value. A reference to a missing
// object, a free slot, or one caught mid-cycle resolves to model.Null{}
// rather than erroring, per ISO 32000 §7.3.9 and spec.md §5's cycle rule.
func (r *Resolver) Resolve(ref model.Reference) (model.Value, error) {
	return r.Get(ref.Key())
}

// Get dereferences key directly, without going through a model.Reference.
func (r *Resolver) Get(key model.ObjectKey) (model.Value, error) {
	c := r.pool.get(key)
	switch c.state {
	case resolved:
		return c.value, nil
	case isNull:
		return model.Null{}, nil
	case resolving:
		return model.Null{}, nil
	}

	c.state = resolving
	value, err := r.parse(key)
	if err != nil {
		c.state = unresolved
		return nil, err
	}
	if _, ok := value.(model.Null); ok {
		c.state = isNull
	} else {
		c.state = resolved
		c.value = value
	}
	return value, nil
}

func (r *Resolver) parse(key model.ObjectKey) (model.Value, error) {
	entry, ok := r.table.Get(key)
	if !ok {
		if r.lenient && r.recovery != nil {
			if offset, found := r.recovery.ObjectOffset(key); found {
				entry = xref.InUse(offset)
				// The brute-force scanner writes its finding back into the
				// map (spec.md §2 data flow), so later lookups of the same
				// key don't repeat the scan.
				r.table.Set(key, entry)
				ok = true
			}
		}
		if !ok {
			return model.Null{}, nil
		}
	}

	switch entry.Kind {
	case xref.KindFree:
		return model.Null{}, nil
	case xref.KindInUse:
		return r.parseInUse(key, entry)
	case xref.KindCompressed:
		return r.parseCompressed(entry)
	default:
		return model.Null{}, nil
	}
}

// resolveValue is the indirection hook the filter/security layers need:
// given any Value, if it is itself a Reference, resolve it; otherwise
// return it unchanged. It never recurses into arrays/dicts — PDF nesting
// of references is always exactly one level.
func (r *Resolver) resolveValue(v model.Value) (model.Value, error) {
	if ref, ok := v.(model.Reference); ok {
		return r.Resolve(ref)
	}
	return v, nil
}

// decryptStrings walks v (an array or dict returned by ParseObject) and
// decrypts every string literal/hex string found directly inside it,
// in place semantically (returning a rebuilt copy), using key as the
// decryption context. Streams are handled separately since their bytes
// are decrypted lazily, on demand, in StreamBytes.
func (r *Resolver) decryptStrings(key model.ObjectKey, v model.Value) model.Value {
	if r.dec == nil {
		return v
	}
	switch val := v.(type) {
	case model.StringLiteral:
		if out, err := r.dec.DecryptString(key, []byte(val)); err == nil {
			return model.StringLiteral(out)
		}
		return val
	case model.HexString:
		if out, err := r.dec.DecryptString(key, []byte(val)); err == nil {
			return model.HexString(out)
		}
		return val
	case model.Array:
		out := make(model.Array, len(val))
		for i, e := range val {
			out[i] = r.decryptStrings(key, e)
		}
		return out
	case model.Dict:
		out := make(model.Dict, len(val))
		for k, e := range val {
			out[k] = r.decryptStrings(key, e)
		}
		return out
	default:
		return v
	}
}
