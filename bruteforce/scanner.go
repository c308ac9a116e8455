// Package bruteforce implements the last-resort recovery scans spec.md
// describes for when a document's cross-reference data is missing or
// contradicts the file it claims to describe: linear discovery of every
// "N G obj" header, every "xref"/xref-stream start, and the object that
// declares itself the document's catalog. It satisfies the
// xref.Recovery interface the chain walker calls back into.
package bruteforce

import (
	"sort"

	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/xref"
)

// objHeader is one "N G obj" occurrence found by a linear scan.
type objHeader struct {
	key    model.ObjectKey
	offset int64
}

// xrefCandidate is one "xref" or xref-stream-object occurrence.
type xrefCandidate struct {
	offset   int64
	isStream bool
}

// Scanner performs (and memoizes) linear scans of a Source's full
// contents, used to rebuild a cross-reference map and trailer without
// trusting any xref table/stream at all.
type Scanner struct {
	src *pdfio.Source

	buf        []byte
	bufErr     error
	bufLoaded  bool
	objects    []objHeader
	candidates []xrefCandidate
	consumed   map[int64]bool
}

// NewScanner builds a Scanner over src.
func NewScanner(src *pdfio.Source) *Scanner {
	return &Scanner{src: src, consumed: map[int64]bool{}}
}

func (s *Scanner) wholeFile() ([]byte, error) {
	if !s.bufLoaded {
		s.buf, s.bufErr = s.src.ReadAt(0, int(s.src.Length()))
		s.bufLoaded = true
	}
	return s.buf, s.bufErr
}

// findObjects scans the whole file once for "N G obj" headers, in
// ascending offset order, memoizing the result.
func (s *Scanner) findObjects() ([]objHeader, error) {
	if s.objects != nil {
		return s.objects, nil
	}
	buf, err := s.wholeFile()
	if err != nil {
		return nil, err
	}

	var out []objHeader
	i := 0
	for {
		idx := lexscan.FindKeyword(buf, i, "obj")
		if idx < 0 {
			break
		}
		// "obj" must be preceded by whitespace and, walking backward, by
		// two decimal integers (generation, then object number); a false
		// positive like "endobj" or a name containing "obj" is rejected
		// by requiring whitespace immediately before the keyword and a
		// digit immediately before that.
		if idx == 0 || !lexscan.IsWhitespace(buf[idx-1]) {
			i = idx + 3
			continue
		}
		genEnd := lexscan.SkipBackWhitespace(buf, idx-1)
		gen, genStart, ok := lexscan.ReadUintBackward(buf, genEnd)
		if !ok {
			i = idx + 3
			continue
		}
		numEnd := lexscan.SkipBackWhitespace(buf, genStart-1)
		num, numStart, ok := lexscan.ReadUintBackward(buf, numEnd)
		if !ok {
			i = idx + 3
			continue
		}

		out = append(out, objHeader{
			key:    model.ObjectKey{Number: num, Generation: uint32(gen)},
			offset: int64(numStart),
		})
		i = idx + 3
	}

	s.objects = out
	return out, nil
}

// findXrefCandidates scans the whole file once for "xref" table starts
// and "N G obj" headers whose dictionary declares /Type /XRef.
func (s *Scanner) findXrefCandidates() ([]xrefCandidate, error) {
	if s.candidates != nil {
		return s.candidates, nil
	}
	buf, err := s.wholeFile()
	if err != nil {
		return nil, err
	}

	var out []xrefCandidate
	i := 0
	for {
		idx := lexscan.FindKeyword(buf, i, "xref")
		if idx < 0 {
			break
		}
		if lexscan.PrecededByWhitespace(buf, idx) {
			out = append(out, xrefCandidate{offset: int64(idx)})
		}
		i = idx + 4
	}

	objs, err := s.findObjects()
	if err != nil {
		return nil, err
	}
	for _, o := range objs {
		window := buf[o.offset:]
		if len(window) > 2048 {
			window = window[:2048]
		}
		if lexscan.FindKeyword(window, 0, "/XRef") >= 0 && lexscan.FindKeyword(window, 0, "stream") >= 0 {
			out = append(out, xrefCandidate{offset: o.offset, isStream: true})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].offset < out[j].offset })
	s.candidates = out
	return out, nil
}

// NearestXref implements xref.Recovery.
func (s *Scanner) NearestXref(claimed int64) (offset int64, isStream bool, ok bool) {
	candidates, err := s.findXrefCandidates()
	if err != nil {
		return 0, false, false
	}

	bestIdx := -1
	var bestDist int64 = -1
	for i, c := range candidates {
		if s.consumed[c.offset] {
			continue
		}
		dist := c.offset - claimed
		if dist < 0 {
			dist = -dist
		}
		// On an exact tie, a stream candidate beats a table candidate.
		if bestDist < 0 || dist < bestDist ||
			(dist == bestDist && c.isStream && !candidates[bestIdx].isStream) {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return 0, false, false
	}
	chosen := candidates[bestIdx]
	s.consumed[chosen.offset] = true
	return chosen.offset, chosen.isStream, true
}

// ObjectOffset implements resolver.ObjectRecovery (spec.md §4.8 situation
// (c)): it returns the offset of the "N G obj" header matching key among
// the objects discovered by linear scan, if any.
func (s *Scanner) ObjectOffset(key model.ObjectKey) (offset int64, ok bool) {
	objs, err := s.findObjects()
	if err != nil {
		return 0, false
	}
	for _, o := range objs {
		if o.key == key {
			return o.offset, true
		}
	}
	return 0, false
}

var _ xref.Recovery = (*Scanner)(nil)
