package bruteforce

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/corvidae-labs/pdfxref/filter"
	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
	"github.com/corvidae-labs/pdfxref/objstream"
	"github.com/corvidae-labs/pdfxref/xref"
)

// FullTrailer implements xref.Recovery: it rebuilds a complete Map by
// trusting only the "N G obj" headers found by linear scan (later offset
// wins, since incremental updates append newer object revisions), then
// locates a document catalog by scanning each object's declared /Type.
func (s *Scanner) FullTrailer() (*xref.Map, xref.Trailer, error) {
	buf, err := s.wholeFile()
	if err != nil {
		return nil, xref.Trailer{}, err
	}

	objs, err := s.findObjects()
	if err != nil {
		return nil, xref.Trailer{}, err
	}

	m := xref.NewMap()
	var rootRef *model.Reference
	var infoRef *model.Reference

	for _, o := range objs {
		m.Set(o.key, xref.InUse(o.offset))

		window := buf[o.offset:]
		if len(window) > 4096 {
			window = window[:4096]
		}
		if isCatalog(window) {
			ref := model.Reference{ObjectNumber: o.key.Number, GenerationNumber: o.key.Generation}
			rootRef = &ref
		}
		if infoRef == nil && isInfo(window) {
			ref := model.Reference{ObjectNumber: o.key.Number, GenerationNumber: o.key.Generation}
			infoRef = &ref
		}
	}

	if err := s.absorbObjectStreams(m, objs, buf); err != nil {
		return nil, xref.Trailer{}, err
	}

	if rootRef == nil {
		return nil, xref.Trailer{}, fmt.Errorf("bruteforce: no object declares /Type /Catalog: %w", model.ErrMalformedXref)
	}

	tr := xref.Trailer{Root: rootRef, Info: infoRef, Size: int64(m.HighestObjectNumber()) + 1}
	return m, tr, nil
}

// isCatalog reports whether an object (window starting at its "N G obj"
// header) declares /Type /Catalog.
func isCatalog(window []byte) bool {
	return declaresType(window, "Catalog")
}

func isInfo(window []byte) bool {
	// An info dictionary has no required /Type; heuristically, any object
	// referenced by a conventional key such as /Title or /Producer close
	// to its start is treated as a candidate. Kept deliberately weak: it
	// is only a fallback when no trailer survives at all.
	hasTitle := lexscan.FindKeyword(window, 0, "/Title") >= 0
	hasProducer := lexscan.FindKeyword(window, 0, "/Producer") >= 0
	return hasTitle || hasProducer
}

func declaresType(window []byte, typeName string) bool {
	idx := lexscan.FindKeyword(window, 0, "/Type")
	if idx < 0 {
		return false
	}
	rest := window[idx+len("/Type"):]
	matched, _ := lexscan.MatchKeyword(rest, 0, "/"+typeName)
	return matched
}

// absorbObjectStreams decodes every discovered object whose header region
// shows /Type /ObjStm, and installs its compressed sub-objects into m
// (never overwriting an object number that was itself written directly,
// since a direct "N G obj" occurrence always takes precedence over a
// stale compressed copy).
func (s *Scanner) absorbObjectStreams(m *xref.Map, objs []objHeader, buf []byte) error {
	for _, o := range objs {
		window := buf[o.offset:]
		probe := window
		if len(probe) > 2048 {
			probe = probe[:2048]
		}
		if !declaresType(probe, "ObjStm") {
			continue
		}

		_, _, headerLen, err := objreader.ObjectHeader(window)
		if err != nil {
			continue
		}
		window = window[headerLen:]
		rd := objreader.New(window)
		v, err := rd.ParseObject()
		if err != nil {
			continue
		}
		dict, ok := v.(model.Dict)
		if !ok {
			continue
		}
		n, _ := dict["N"].(model.Integer)
		first, _ := dict["First"].(model.Integer)

		matched, after := lexscan.MatchKeyword(window, rd.Position(), "stream")
		if !matched {
			continue
		}
		start := after
		if start < len(window) && window[start] == '\r' {
			start++
		}
		if start < len(window) && window[start] == '\n' {
			start++
		}
		end := lexscan.FindKeyword(window, start, "endstream")
		if end < 0 {
			continue
		}
		contentEnd := lexscan.SkipBackWhitespace(window, end-1) + 1

		decoded, err := decodeObjStmForRecovery(dict, window[start:contentEnd])
		if err != nil {
			continue
		}

		osr, err := objstream.New(decoded, int64(n), int64(first))
		if err != nil {
			continue
		}
		for idx := 0; idx < osr.Count(); idx++ {
			num, ok := osr.ObjectNumberAt(idx)
			if !ok {
				continue
			}
			key := model.ObjectKey{Number: num}
			if _, exists := m.Get(key); exists {
				continue
			}
			m.Set(key, xref.Compressed(o.key, uint32(idx)))
		}
	}
	return nil
}

// decodeObjStmForRecovery runs the raw (still filter-encoded) content of
// an object stream through its declared filter pipeline. Recovery has no
// resolver to hand ParseDict for indirect /DecodeParms, so references
// there are left unresolved; in practice recovery-relevant object streams
// always declare direct parameters.
func decodeObjStmForRecovery(dict model.Dict, raw []byte) ([]byte, error) {
	pipeline, err := filter.ParseDict(dict["Filter"], dict["DecodeParms"], nil)
	if err != nil {
		return nil, err
	}
	r, err := pipeline.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return ioutil.ReadAll(r)
}
