package objstream

import (
	"testing"

	"github.com/corvidae-labs/pdfxref/model"
)

func TestReaderParsesHeaderAndObjects(t *testing.T) {
	header := "10 0 11 3"
	first := int64(len(header) + 1) // +1 for the separating space
	payload := header + " " + "42 /Name1"

	r, err := New([]byte(payload), 2, first)
	if err != nil {
		t.Fatal(err)
	}
	if r.Count() != 2 {
		t.Fatalf("got count %d, want 2", r.Count())
	}

	num0, ok := r.ObjectNumberAt(0)
	if !ok || num0 != 10 {
		t.Fatalf("got (%d, %v), want (10, true)", num0, ok)
	}
	num1, ok := r.ObjectNumberAt(1)
	if !ok || num1 != 11 {
		t.Fatalf("got (%d, %v), want (11, true)", num1, ok)
	}

	v0, err := r.ValueAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if v0 != model.Integer(42) {
		t.Fatalf("got %#v, want Integer(42)", v0)
	}

	v1, err := r.ValueAt(1)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != model.Name("Name1") {
		t.Fatalf("got %#v, want Name(Name1)", v1)
	}

	idx, ok := r.IndexOf(11)
	if !ok || idx != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := r.IndexOf(999); ok {
		t.Fatal("expected no match for an undeclared object number")
	}
}

func TestReaderRejectsOutOfRangeFirst(t *testing.T) {
	if _, err := New([]byte("short"), 1, 9999); err == nil {
		t.Fatal("expected an error when /First exceeds the payload length")
	}
}

func TestValueAtOutOfRangeIndex(t *testing.T) {
	r, err := New([]byte("1 0 "), 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ValueAt(5); err == nil {
		t.Fatal("expected an error for an out-of-range index")
	}
}
