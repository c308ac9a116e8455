package xref

import (
	"bytes"
	"testing"

	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
)

func TestParseOneTable(t *testing.T) {
	doc := "xref\n" +
		"0 3\n" +
		"0000000000 65535 f \n" +
		"0000000017 00000 n \n" +
		"0000000081 00000 n \n" +
		"trailer\n" +
		"<< /Size 3 /Root 2 0 R >>\n" +
		"startxref\n0\n%%EOF"

	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}

	c := &chain{src: src, result: NewMap()}
	prev, xrefStm, err := c.parseOneTable(0)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 0 || xrefStm != 0 {
		t.Fatalf("unexpected prev=%d xrefStm=%d", prev, xrefStm)
	}

	e0, ok := c.result.Get(model.ObjectKey{Number: 0, Generation: 65535})
	if !ok || e0.Kind != KindFree {
		t.Fatalf("unexpected entry 0: %+v", e0)
	}
	e1, ok := c.result.Get(model.ObjectKey{Number: 1, Generation: 0})
	if !ok || e1.Kind != KindInUse || e1.Offset != 17 {
		t.Fatalf("unexpected entry 1: %+v", e1)
	}

	if c.trailerAcc.Size != 3 {
		t.Fatalf("got size %d, want 3", c.trailerAcc.Size)
	}
	if c.trailerAcc.Root == nil || c.trailerAcc.Root.ObjectNumber != 2 {
		t.Fatalf("unexpected root: %+v", c.trailerAcc.Root)
	}
}

func TestParseOneTableWithPrev(t *testing.T) {
	doc := "xref\n0 1\n0000000000 65535 f \ntrailer\n<< /Size 1 /Prev 1234 >>\n"

	src, err := pdfio.New(bytes.NewReader([]byte(doc)))
	if err != nil {
		t.Fatal(err)
	}
	c := &chain{src: src, result: NewMap()}
	prev, _, err := c.parseOneTable(0)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 1234 {
		t.Fatalf("got prev %d, want 1234", prev)
	}
}

func TestParseOneTableRejectsMissingKeyword(t *testing.T) {
	src, err := pdfio.New(bytes.NewReader([]byte("not an xref table")))
	if err != nil {
		t.Fatal(err)
	}
	c := &chain{src: src, result: NewMap()}
	if _, _, err := c.parseOneTable(0); err == nil {
		t.Fatal("expected an error for a missing \"xref\" keyword")
	}
}
