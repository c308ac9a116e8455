package model

import "errors"

// Sentinel errors forming the taxonomy of spec §7. Packages wrap these with
// fmt.Errorf("...: %w", ErrXxx) so callers can still errors.Is against the
// bare sentinel.
var (
	ErrMissingHeader    = errors.New("pdfxref: no %PDF- or %FDF- header found")
	ErrMissingEOF       = errors.New("pdfxref: no %%EOF marker found")
	ErrMissingStartxref = errors.New("pdfxref: no startxref keyword found")
	ErrMalformedXref    = errors.New("pdfxref: malformed cross-reference data")
	ErrXrefLoop         = errors.New("pdfxref: /Prev chain revisits an offset")
	ErrObjectMismatch   = errors.New("pdfxref: object header does not match claimed key")
	ErrStreamLength     = errors.New("pdfxref: declared stream length does not match endstream")
	ErrInvalidEncryption = errors.New("pdfxref: encryption dictionary is invalid or unsupported")
	ErrInvalidPassword  = errors.New("pdfxref: decryption material was rejected")
	ErrCycleDetected    = errors.New("pdfxref: object graph contains a cycle")
	ErrTruncated        = errors.New("pdfxref: unexpected end of file")
	ErrCorruptObject    = errors.New("pdfxref: object body is locally corrupt")
)
