package objreader

import (
	"testing"

	"github.com/corvidae-labs/pdfxref/model"
)

func parseOne(t *testing.T, src string) model.Value {
	t.Helper()
	v, err := New([]byte(src)).ParseObject()
	if err != nil {
		t.Fatalf("ParseObject(%q): %v", src, err)
	}
	return v
}

func TestParseScalars(t *testing.T) {
	if v := parseOne(t, "42"); v != model.Integer(42) {
		t.Fatalf("got %#v, want Integer(42)", v)
	}
	if v := parseOne(t, "3.14"); v != model.Real(3.14) {
		t.Fatalf("got %#v, want Real(3.14)", v)
	}
	if v := parseOne(t, "true"); v != model.Boolean(true) {
		t.Fatalf("got %#v, want Boolean(true)", v)
	}
	if _, ok := parseOne(t, "null").(model.Null); !ok {
		t.Fatalf("expected Null")
	}
	if v := parseOne(t, "/Name1"); v != model.Name("Name1") {
		t.Fatalf("got %#v, want Name(Name1)", v)
	}
}

func TestParseReference(t *testing.T) {
	v := parseOne(t, "12 0 R")
	ref, ok := v.(model.Reference)
	if !ok || ref.ObjectNumber != 12 || ref.GenerationNumber != 0 {
		t.Fatalf("got %#v, want Reference{12 0}", v)
	}
}

func TestParseBareIntegerNotMistakenForReference(t *testing.T) {
	v := parseOne(t, "12 0")
	if v != model.Integer(12) {
		t.Fatalf("got %#v, want Integer(12)", v)
	}
}

func TestParseArray(t *testing.T) {
	v := parseOne(t, "[1 2 /Three]")
	arr, ok := v.(model.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("got %#v", v)
	}
	if arr[0] != model.Integer(1) || arr[2] != model.Name("Three") {
		t.Fatalf("unexpected array contents: %#v", arr)
	}
}

func TestParseDict(t *testing.T) {
	v := parseOne(t, "<< /Type /Catalog /Count 3 >>")
	d, ok := v.(model.Dict)
	if !ok {
		t.Fatalf("got %#v, want Dict", v)
	}
	if d["Type"] != model.Name("Catalog") || d["Count"] != model.Integer(3) {
		t.Fatalf("unexpected dict contents: %#v", d)
	}
}

func TestParseDictDropsNullValuedKeys(t *testing.T) {
	v := parseOne(t, "<< /A null /B 1 >>")
	d := v.(model.Dict)
	if _, has := d["A"]; has {
		t.Fatalf("expected /A to be dropped since its value is null")
	}
	if d["B"] != model.Integer(1) {
		t.Fatalf("unexpected /B: %#v", d["B"])
	}
}

func TestParseDictRejectsDuplicateKeys(t *testing.T) {
	_, err := New([]byte("<< /A 1 /A 2 >>")).ParseObject()
	if err == nil {
		t.Fatal("expected an error for a duplicate dictionary key")
	}
}

func TestObjectHeader(t *testing.T) {
	num, gen, end, err := ObjectHeader([]byte("7 0 obj\n<< /Type /Page >>"))
	if err != nil {
		t.Fatal(err)
	}
	if num != 7 || gen != 0 {
		t.Fatalf("got (%d, %d), want (7, 0)", num, gen)
	}
	rest := New([]byte("7 0 obj\n<< /Type /Page >>")[end:])
	v, err := rest.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if v.(model.Dict)["Type"] != model.Name("Page") {
		t.Fatalf("unexpected remaining value: %#v", v)
	}
}

func TestObjectHeaderRejectsMissingObjKeyword(t *testing.T) {
	_, _, _, err := ObjectHeader([]byte("7 0 notobj"))
	if err == nil {
		t.Fatal("expected an error when \"obj\" keyword is missing")
	}
}
