package xref

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
)

func buildClassicPDF() ([]byte, int64) {
	header := "%PDF-1.4\n"
	obj := "1 0 obj\n<< /Type /Catalog >>\nendobj\n"
	xrefOffset := int64(len(header) + len(obj))

	table := fmt.Sprintf(
		"xref\n0 2\n0000000000 65535 f \n%010d 00000 n \ntrailer\n<< /Size 2 /Root 1 0 R >>\n",
		len(header),
	)
	tail := fmt.Sprintf("startxref\n%d\n%%%%EOF", xrefOffset)

	full := header + obj + table + tail
	return []byte(full), xrefOffset
}

func TestResolveTrailerClassicTable(t *testing.T) {
	buf, _ := buildClassicPDF()
	src, err := pdfio.New(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}

	table, trailer, err := ResolveTrailer(src, Config{EOFLookupRange: 1024}, nil)
	if err != nil {
		t.Fatal(err)
	}

	e, ok := table.Get(model.ObjectKey{Number: 1, Generation: 0})
	if !ok || e.Kind != KindInUse {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if trailer.Root == nil || trailer.Root.ObjectNumber != 1 {
		t.Fatalf("unexpected trailer root: %+v", trailer.Root)
	}
	if trailer.Size != 2 {
		t.Fatalf("got size %d, want 2", trailer.Size)
	}
}

func TestResolveTrailerMissingStartxrefStrict(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("%PDF-1.4\nno startxref here")))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = ResolveTrailer(src, Config{EOFLookupRange: 1024, Lenient: false}, nil)
	if err == nil {
		t.Fatal("expected an error when startxref is missing and Lenient is false")
	}
}

type stubRecovery struct {
	fullTrailer func() (*Map, Trailer, error)
}

func (s stubRecovery) NearestXref(int64) (int64, bool, bool) { return 0, false, false }
func (s stubRecovery) FullTrailer() (*Map, Trailer, error)   { return s.fullTrailer() }

func TestResolveTrailerFallsBackToFullRecovery(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("%PDF-1.4\nno startxref here")))
	if err != nil {
		t.Fatal(err)
	}

	want := NewMap()
	want.Set(model.ObjectKey{Number: 1}, InUse(9))
	rec := stubRecovery{fullTrailer: func() (*Map, Trailer, error) {
		return want, Trailer{Size: 1}, nil
	}}

	got, trailer, err := ResolveTrailer(src, Config{EOFLookupRange: 1024, Lenient: true}, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || trailer.Size != 1 {
		t.Fatalf("expected recovered map/trailer to be used, got %+v / %+v", got, trailer)
	}
}

// buildPDFWithMismatchedOffset builds a two-object PDF whose xref table
// claims object 1 lives at object 2's actual offset, so the object header
// found there declares "2 0 obj" rather than "1 0 obj".
func buildPDFWithMismatchedOffset() []byte {
	header := "%PDF-1.4\n"
	obj1 := "1 0 obj\n<< /Type /Catalog >>\nendobj\n"
	obj1Offset := int64(len(header))
	obj2 := "2 0 obj\n<< /Type /Pages >>\nendobj\n"
	obj2Offset := obj1Offset + int64(len(obj1))
	xrefOffset := obj2Offset + int64(len(obj2))

	table := fmt.Sprintf(
		"xref\n0 3\n0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \ntrailer\n<< /Size 3 /Root 1 0 R >>\n",
		obj2Offset, // object 1's entry wrongly claims object 2's offset
		obj2Offset,
	)
	tail := fmt.Sprintf("startxref\n%d\n%%%%EOF", xrefOffset)

	return []byte(header + obj1 + obj2 + table + tail)
}

func TestResolveTrailerRejectsMismatchedOffsetStrict(t *testing.T) {
	buf := buildPDFWithMismatchedOffset()
	src, err := pdfio.New(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = ResolveTrailer(src, Config{EOFLookupRange: 1024, Lenient: false}, nil)
	if err == nil {
		t.Fatal("expected an error for an xref entry whose offset doesn't match its claimed key")
	}
}

func TestResolveTrailerRepairsMismatchedOffsetLenient(t *testing.T) {
	buf := buildPDFWithMismatchedOffset()
	src, err := pdfio.New(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}

	want := NewMap()
	want.Set(model.ObjectKey{Number: 1}, InUse(9))
	rec := stubRecovery{fullTrailer: func() (*Map, Trailer, error) {
		return want, Trailer{Size: 1}, nil
	}}

	got, trailer, err := ResolveTrailer(src, Config{EOFLookupRange: 1024, Lenient: true}, rec)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || trailer.Size != 1 {
		t.Fatalf("expected the consolidated map to be replaced wholesale by the brute-force result, got %+v / %+v", got, trailer)
	}
}

func TestResolveTrailerDetectsLoop(t *testing.T) {
	// A /Prev chain pointing right back at itself must be rejected rather
	// than looping forever. The table starts at offset 1 (not 0) so that
	// the self-referencing /Prev is itself non-zero and actually re-enters
	// the walk loop.
	const tableOffset = 1
	table := "\nxref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev 1 >>\n"
	tail := fmt.Sprintf("startxref\n%d\n%%%%EOF", tableOffset)
	buf := []byte(table + tail)

	src, err := pdfio.New(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = ResolveTrailer(src, Config{EOFLookupRange: 1024}, nil)
	if err == nil {
		t.Fatal("expected a loop-detection error")
	}
}
