package pdfio

import (
	"bytes"
	"testing"
)

func TestSourceReadAtAndSeek(t *testing.T) {
	src, err := New(bytes.NewReader([]byte("0123456789")))
	if err != nil {
		t.Fatal(err)
	}
	if src.Length() != 10 {
		t.Fatalf("got length %d, want 10", src.Length())
	}

	buf, err := src.ReadAt(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "3456" {
		t.Fatalf("got %q, want 3456", buf)
	}
}

func TestScopedSeekRestoresPosition(t *testing.T) {
	src, err := New(bytes.NewReader([]byte("0123456789")))
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Seek(5); err != nil {
		t.Fatal(err)
	}

	func() {
		defer src.ScopedSeek()()
		if err := src.Seek(0); err != nil {
			t.Fatal(err)
		}
		b, ok := src.ReadByte()
		if !ok || b != '0' {
			t.Fatalf("got (%v, %v)", b, ok)
		}
	}()

	pos, err := src.Position()
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Fatalf("got position %d, want 5 (restored)", pos)
	}
}

func TestTailWindow(t *testing.T) {
	src, err := New(bytes.NewReader([]byte("0123456789")))
	if err != nil {
		t.Fatal(err)
	}
	buf, start, err := src.TailWindow(4)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "6789" || start != 6 {
		t.Fatalf("got (%q, %d)", buf, start)
	}

	buf, start, err = src.TailWindow(100)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "0123456789" || start != 0 {
		t.Fatalf("got (%q, %d)", buf, start)
	}
}

func TestView(t *testing.T) {
	src, err := New(bytes.NewReader([]byte("0123456789")))
	if err != nil {
		t.Fatal(err)
	}
	v := src.View(3, 4)
	if v.Length() != 4 {
		t.Fatalf("got length %d, want 4", v.Length())
	}
	buf, err := v.ReadAt(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "3456" {
		t.Fatalf("got %q, want 3456", buf)
	}
}
