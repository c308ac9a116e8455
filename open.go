// Package pdfxref is the root facade: Open/OpenFile compose the
// cross-reference chain walker, the brute-force recovery scanner, the
// resolver, and (when the document is encrypted) the security gate into
// one xref.Document, in the order spec.md §4.7 requires.
package pdfxref

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/corvidae-labs/pdfxref/bruteforce"
	"github.com/corvidae-labs/pdfxref/config"
	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/resolver"
	"github.com/corvidae-labs/pdfxref/security"
	"github.com/corvidae-labs/pdfxref/xref"
)

// Open parses rs as a PDF, resolving its cross-reference chain (falling
// back to brute-force recovery when conf.Lenient is set and the chain
// can't be trusted) and returns a Document ready to resolve objects from.
func Open(rs io.ReadSeeker, conf config.Configuration) (*xref.Document, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	src, err := pdfio.New(rs)
	if err != nil {
		return nil, fmt.Errorf("pdfxref: %w", err)
	}

	if err := checkHeader(src, conf.Lenient); err != nil {
		return nil, err
	}

	scanner := bruteforce.NewScanner(src)
	var recovery xref.Recovery
	var objRecovery resolver.ObjectRecovery
	if conf.Lenient {
		recovery = scanner
		objRecovery = scanner
	}

	table, trailer, err := xref.ResolveTrailer(src, xref.Config{
		Lenient:        conf.Lenient,
		EOFLookupRange: int64(conf.EOFLookupRange),
	}, recovery)
	if err != nil {
		return nil, fmt.Errorf("pdfxref: %w", err)
	}
	log.Printf("pdfxref: resolved trailer, %d xref entries, root=%v", table.Len(), trailer.Root)

	var dec resolver.Decryptor
	if trailer.Encrypt != nil {
		gate, err := buildGate(src, table, trailer, objRecovery, conf)
		if err != nil {
			return nil, err
		}
		dec = gate
	}

	r := resolver.New(src, table, dec, objRecovery, conf.Lenient)
	return xref.NewDocument(table, trailer, r), nil
}

// OpenFile opens the file at path as a PDF.
func OpenFile(path string, conf config.Configuration) (*xref.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfxref: %w", err)
	}
	doc, err := Open(f, conf)
	if err != nil {
		f.Close()
		return nil, err
	}
	return doc, nil
}

func checkHeader(src *pdfio.Source, lenient bool) error {
	n := 1024
	if int64(n) > src.Length() {
		n = int(src.Length())
	}
	buf, err := src.ReadAt(0, n)
	if err != nil {
		return err
	}
	if lexscan.FindKeyword(buf, 0, "%PDF-") >= 0 || lexscan.FindKeyword(buf, 0, "%FDF-") >= 0 {
		return nil
	}
	if lenient {
		return nil
	}
	return model.ErrMissingHeader
}

// buildGate resolves the /Encrypt dictionary (without decryption, since
// that's what we're about to set up) and constructs a security.Gate.
func buildGate(src *pdfio.Source, table *xref.Map, trailer xref.Trailer, objRecovery resolver.ObjectRecovery, conf config.Configuration) (*security.Gate, error) {
	// A bare resolver with no Decryptor is exactly what's needed to read
	// the encryption dictionary itself, which per ISO 32000 is never
	// encrypted.
	plain := resolver.New(src, table, nil, objRecovery, conf.Lenient)

	var encVal model.Value
	var err error
	switch e := trailer.Encrypt.(type) {
	case model.Reference:
		encVal, err = plain.Resolve(e)
	default:
		encVal = e
	}
	if err != nil {
		return nil, fmt.Errorf("pdfxref: resolving /Encrypt: %w", err)
	}
	dict, ok := encVal.(model.Dict)
	if !ok {
		return nil, fmt.Errorf("pdfxref: /Encrypt is not a dictionary: %w", model.ErrInvalidEncryption)
	}

	var material security.Material
	if conf.DecryptionMaterial != nil {
		material = *conf.DecryptionMaterial
	}

	id := ""
	if len(trailer.ID) > 0 {
		if s, ok := trailer.ID[0].(model.StringLiteral); ok {
			id = string(s)
		} else if s, ok := trailer.ID[0].(model.HexString); ok {
			id = string(s)
		}
	}

	gate, err := security.NewGate(dict, material, id)
	if err != nil {
		return nil, fmt.Errorf("pdfxref: %w", err)
	}
	return gate, nil
}
