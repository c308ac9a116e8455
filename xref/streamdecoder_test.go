package xref

import (
	"testing"

	"github.com/corvidae-labs/pdfxref/model"
)

func TestParseStreamLayoutDefaultsIndex(t *testing.T) {
	dict := model.Dict{
		"Size": model.Integer(3),
		"W":    model.Array{model.Integer(1), model.Integer(2), model.Integer(1)},
	}
	layout, err := ParseStreamLayout(dict)
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Index) != 1 || layout.Index[0] != [2]int64{0, 3} {
		t.Fatalf("got index %v, want [[0 3]]", layout.Index)
	}
	if layout.entrySize() != 4 {
		t.Fatalf("got entry size %d, want 4", layout.entrySize())
	}
}

func TestDecodeStreamInUseAndCompressed(t *testing.T) {
	layout := StreamLayout{
		Widths: [3]int{1, 2, 1},
		Index:  [][2]int64{{0, 2}},
		Size:   2,
	}
	// object 0: type 1 (in-use), offset 0x0100, generation 0
	// object 1: type 2 (compressed), stream obj 5, index 3
	buf := []byte{
		1, 0x01, 0x00, 0x00,
		2, 0x00, 0x05, 0x03,
	}

	m, err := DecodeStream(buf, layout)
	if err != nil {
		t.Fatal(err)
	}

	e0, ok := m.Get(model.ObjectKey{Number: 0, Generation: 0})
	if !ok || e0.Kind != KindInUse || e0.Offset != 0x0100 {
		t.Fatalf("unexpected entry 0: %+v", e0)
	}

	e1, ok := m.Get(model.ObjectKey{Number: 1, Generation: 0})
	if !ok || e1.Kind != KindCompressed || e1.StreamKey.Number != 5 || e1.IndexWithinStream != 3 {
		t.Fatalf("unexpected entry 1: %+v", e1)
	}
}

func TestDecodeStreamW0ZeroDefaultsToTypeOne(t *testing.T) {
	layout := StreamLayout{Widths: [3]int{0, 2, 1}, Index: [][2]int64{{7, 1}}, Size: 8}
	buf := []byte{0x00, 0x20, 0x00}

	m, err := DecodeStream(buf, layout)
	if err != nil {
		t.Fatal(err)
	}
	e, ok := m.Get(model.ObjectKey{Number: 7, Generation: 0})
	if !ok || e.Kind != KindInUse || e.Offset != 0x0020 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}
