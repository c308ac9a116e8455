package bruteforce

import (
	"bytes"
	"testing"

	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
)

func newScanner(t *testing.T, content string) *Scanner {
	t.Helper()
	src, err := pdfio.New(bytes.NewReader([]byte(content)))
	if err != nil {
		t.Fatal(err)
	}
	return NewScanner(src)
}

func TestFindObjectsRejectsEndobjFalsePositive(t *testing.T) {
	doc := "1 0 obj\n<< /Type /Catalog >>\nendobj\n2 0 obj\n(x)\nendobj\n"
	s := newScanner(t, doc)

	objs, err := s.findObjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2: %+v", len(objs), objs)
	}
	if objs[0].key.Number != 1 || objs[1].key.Number != 2 {
		t.Fatalf("unexpected object numbers: %+v", objs)
	}
}

func TestNearestXrefConsumesCandidates(t *testing.T) {
	doc := "xref\n0 1\n0000000000 65535 f \n" + // candidate at offset 0
		"padding padding\n" +
		"xref\n0 1\n0000000000 65535 f \n" // second candidate further along
	s := newScanner(t, doc)

	off1, isStream1, ok1 := s.NearestXref(0)
	if !ok1 || isStream1 {
		t.Fatalf("got (%d, %v, %v)", off1, isStream1, ok1)
	}
	if off1 != 0 {
		t.Fatalf("got offset %d, want 0 (nearest to claimed offset 0)", off1)
	}

	off2, _, ok2 := s.NearestXref(0)
	if !ok2 || off2 == off1 {
		t.Fatalf("expected a distinct second candidate, got %d (first was %d)", off2, off1)
	}

	if _, _, ok3 := s.NearestXref(0); ok3 {
		t.Fatal("expected no third candidate once both are consumed")
	}
}

func TestFullTrailerFindsCatalog(t *testing.T) {
	doc := "%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n"
	s := newScanner(t, doc)

	m, tr, err := s.FullTrailer()
	if err != nil {
		t.Fatal(err)
	}
	if tr.Root == nil || tr.Root.ObjectNumber != 1 {
		t.Fatalf("unexpected recovered root: %+v", tr.Root)
	}
	if _, ok := m.Get(model.ObjectKey{Number: 2, Generation: 0}); !ok {
		t.Fatal("expected object 2 to be present in the recovered map")
	}
}

func TestFullTrailerErrorsWithoutCatalog(t *testing.T) {
	doc := "1 0 obj\n<< /Type /Pages >>\nendobj\n"
	s := newScanner(t, doc)
	if _, _, err := s.FullTrailer(); err == nil {
		t.Fatal("expected an error when no /Type /Catalog object is found")
	}
}
