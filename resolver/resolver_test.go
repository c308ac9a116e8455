package resolver

import (
	"bytes"
	"testing"

	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/xref"
)

func TestGetResolvesInUseObject(t *testing.T) {
	doc := "1 0 obj\n<< /Type /Catalog /Count 3 >>\nendobj\n"
	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}

	table := xref.NewMap()
	table.Set(model.ObjectKey{Number: 1}, xref.InUse(0))

	r := New(src, table, nil, nil, false)
	v, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	dict, ok := v.(model.Dict)
	if !ok || dict["Count"] != model.Integer(3) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestGetMemoizesAcrossCalls(t *testing.T) {
	doc := "1 0 obj\n42\nendobj\n"
	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()
	table.Set(model.ObjectKey{Number: 1}, xref.InUse(0))

	r := New(src, table, nil, nil, false)
	v1, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Fatalf("expected memoized identical values, got %#v and %#v", v1, v2)
	}
}

func TestGetReturnsNullForFreeEntry(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("")))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()
	table.Set(model.ObjectKey{Number: 1}, xref.Free(model.ObjectKey{}))

	r := New(src, table, nil, nil, false)
	v, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(model.Null); !ok {
		t.Fatalf("expected Null for a free entry, got %#v", v)
	}
}

func TestGetReturnsNullForMissingKeyStrict(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("")))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()

	r := New(src, table, nil, nil, false)
	v, err := r.Get(model.ObjectKey{Number: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(model.Null); !ok {
		t.Fatalf("expected Null for an undeclared key, got %#v", v)
	}
}

// stubRecovery is a resolver.ObjectRecovery double for tests: it reports a
// single fixed (key -> offset) discovery, as a real bruteforce.Scanner
// would after a linear scan.
type stubRecovery struct {
	key    model.ObjectKey
	offset int64
}

func (s stubRecovery) ObjectOffset(key model.ObjectKey) (int64, bool) {
	if key == s.key {
		return s.offset, true
	}
	return 0, false
}

// TestGetRecoversMissingKeyWhenLenient exercises spec.md §4.8 situation
// (c): a key absent from the xref map is, in lenient mode, discovered by
// brute-force object scanning and installed into the map instead of
// degrading straight to Null.
func TestGetRecoversMissingKeyWhenLenient(t *testing.T) {
	doc := "1 0 obj\n42\nendobj\n"
	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap() // deliberately missing object 1's entry

	r := New(src, table, nil, stubRecovery{key: model.ObjectKey{Number: 1}, offset: 0}, true)
	v, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	if v != model.Integer(42) {
		t.Fatalf("expected recovered value 42, got %#v", v)
	}
	if e, ok := table.Get(model.ObjectKey{Number: 1}); !ok || e.Kind != xref.KindInUse || e.Offset != 0 {
		t.Fatalf("expected the recovered entry to be written back into the map, got %#v, %v", e, ok)
	}
}

// TestGetReturnsNullWhenLenientRecoveryFindsNothing checks that a missing
// key still degrades to Null when recovery is consulted but turns up
// nothing, rather than erroring.
func TestGetReturnsNullWhenLenientRecoveryFindsNothing(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("")))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()

	r := New(src, table, nil, stubRecovery{key: model.ObjectKey{Number: 1}, offset: 0}, true)
	v, err := r.Get(model.ObjectKey{Number: 99})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(model.Null); !ok {
		t.Fatalf("expected Null when recovery finds nothing, got %#v", v)
	}
}

// TestGetOfMutuallyReferencingObjectsCompletes builds two objects that
// reference each other and checks that getting one of them completes
// without recursing into the other.
func TestGetOfMutuallyReferencingObjectsCompletes(t *testing.T) {
	obj1 := "1 0 obj\n2 0 R\nendobj\n"
	obj2Offset := int64(len(obj1))
	obj2 := "2 0 obj\n1 0 R\nendobj\n"
	doc := obj1 + obj2

	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()
	table.Set(model.ObjectKey{Number: 1}, xref.InUse(0))
	table.Set(model.ObjectKey{Number: 2}, xref.InUse(obj2Offset))

	r := New(src, table, nil, nil, false)
	v, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	// object 1 parses to a bare Reference(2 0 R); parseInUse does not
	// itself resolve it (resolveValue is only used by the stream-length
	// and filter paths), so v is the Reference, not the cycle's Null — this
	// asserts that getting object 1 at least completes without recursing.
	if _, ok := v.(model.Reference); !ok {
		t.Fatalf("expected a bare Reference value, got %#v", v)
	}
}

func TestStreamBytesReturnsUnfilteredContent(t *testing.T) {
	// Build a tiny stream object manually; content is intentionally left
	// unencoded with a Length matching its literal byte count, since
	// exercising the filter pipeline itself is filter package's job.
	content := "hello stream bytes"
	doc := "1 0 obj\n<< /Length 18 >>\nstream\n" + content + "\nendstream\nendobj\n"
	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	table := xref.NewMap()
	table.Set(model.ObjectKey{Number: 1}, xref.InUse(0))

	r := New(src, table, nil, nil, false)
	v, err := r.Get(model.ObjectKey{Number: 1})
	if err != nil {
		t.Fatal(err)
	}
	stm, ok := v.(model.Stream)
	if !ok {
		t.Fatalf("expected a Stream value, got %#v", v)
	}

	out, err := r.StreamBytes(model.ObjectKey{Number: 1}, stm)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != content {
		t.Fatalf("got %q, want %q", out, content)
	}
}
