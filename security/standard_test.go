package security

import (
	"bytes"
	"testing"

	"github.com/corvidae-labs/pdfxref/model"
)

func TestPadPassword(t *testing.T) {
	short := padPassword([]byte("abc"))
	if len(short) != 32 {
		t.Fatalf("got length %d, want 32", len(short))
	}
	if string(short[:3]) != "abc" {
		t.Fatalf("expected password prefix to survive padding, got %q", short[:3])
	}

	long := padPassword(bytes.Repeat([]byte{'x'}, 40))
	if len(long) != 32 || long[0] != 'x' {
		t.Fatalf("expected truncation to 32 bytes of 'x', got %q", long)
	}
}

func TestComputeFileKeyR234IsDeterministic(t *testing.T) {
	o := bytes.Repeat([]byte{0x11}, 32)
	k1 := computeFileKeyR234([]byte("secret"), o, -44, []byte("docid"), 3, 16, true)
	k2 := computeFileKeyR234([]byte("secret"), o, -44, []byte("docid"), 3, 16, true)
	if !bytes.Equal(k1, k2) {
		t.Fatal("expected identical inputs to derive identical file keys")
	}
	if len(k1) != 16 {
		t.Fatalf("got key length %d, want 16", len(k1))
	}

	k3 := computeFileKeyR234([]byte("different"), o, -44, []byte("docid"), 3, 16, true)
	if bytes.Equal(k1, k3) {
		t.Fatal("expected a different password to derive a different file key")
	}
}

func TestObjectKeyR234LengthIsCappedAt16(t *testing.T) {
	fileKey := bytes.Repeat([]byte{0x01}, 16)
	k := objectKeyR234(fileKey, 7, 0, false)
	if len(k) != 16 {
		t.Fatalf("got length %d, want 16 (5+16 capped)", len(k))
	}

	shortKey := bytes.Repeat([]byte{0x02}, 5)
	k2 := objectKeyR234(shortKey, 7, 0, false)
	if len(k2) != 10 {
		t.Fatalf("got length %d, want 10 (5+5)", len(k2))
	}
}

// TestStandardHandlerR2RoundTrip builds a minimal R2/RC4 encryption
// dictionary by hand (computing /U the way Algorithm 4 does), then checks
// that NewStandardHandler accepts the matching password and that
// DecryptString inverts an RC4 encryption done with the same object key.
func TestStandardHandlerR2RoundTrip(t *testing.T) {
	o := bytes.Repeat([]byte{0xAA}, 32)
	id := []byte("0123456789ABCDEF")
	password := "hunter2"

	fileKey := computeFileKeyR234([]byte(password), o, -4, id, 2, 5, true)
	u, err := rc4Crypt(fileKey, pad32)
	if err != nil {
		t.Fatal(err)
	}

	dict := model.Dict{
		"R": model.Integer(2),
		"P": model.Integer(-4),
		"O": model.StringLiteral(string(o)),
		"U": model.StringLiteral(string(u)),
	}

	h, err := NewStandardHandler(dict, password, [2]string{string(id), ""})
	if err != nil {
		t.Fatalf("expected the correct password to be accepted: %v", err)
	}

	key := model.ObjectKey{Number: 3, Generation: 0}
	objKey := objectKeyR234(h.fileKey, key.Number, key.Generation, false)
	ciphertext, err := rc4Crypt(objKey, []byte("top secret payload"))
	if err != nil {
		t.Fatal(err)
	}

	plain, err := h.DecryptString(key, ciphertext)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "top secret payload" {
		t.Fatalf("got %q, want %q", plain, "top secret payload")
	}
}

func TestStandardHandlerRejectsWrongPassword(t *testing.T) {
	o := bytes.Repeat([]byte{0xAA}, 32)
	id := []byte("0123456789ABCDEF")

	fileKey := computeFileKeyR234([]byte("correct"), o, -4, id, 2, 5, true)
	u, err := rc4Crypt(fileKey, pad32)
	if err != nil {
		t.Fatal(err)
	}

	dict := model.Dict{
		"R": model.Integer(2),
		"P": model.Integer(-4),
		"O": model.StringLiteral(string(o)),
		"U": model.StringLiteral(string(u)),
	}

	if _, err := NewStandardHandler(dict, "wrong", [2]string{string(id), ""}); err == nil {
		t.Fatal("expected an incorrect password to be rejected")
	}
}
