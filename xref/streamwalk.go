package xref

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/corvidae-labs/pdfxref/filter"
	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
)

// parseOneStream parses one cross-reference stream (ISO 32000 §7.5.8): the
// "N G obj" header, the stream dictionary (which doubles as the trailer),
// and the binary payload itself. When primary is true, the dictionary's
// /Prev and /XRefStm feed back into the chain walk and its fields are
// merged into c.trailerAcc; a hybrid file's secondary /XRefStm stream is
// parsed with primary set to false, contributing only entries.
func (c *chain) parseOneStream(offset int64, primary bool) (prev int64, xrefStm int64, err error) {
	headerWindow, err := c.src.ReadAt(offset, minInt(64, int(c.src.Length()-offset)))
	if err != nil {
		return 0, 0, err
	}
	_, _, headerLen, err := objreader.ObjectHeader(headerWindow)
	if err != nil {
		return 0, 0, fmt.Errorf("xref stream: %w", err)
	}

	rest, err := c.src.ReadAt(offset+int64(headerLen), int(c.src.Length()-offset-int64(headerLen)))
	if err != nil {
		return 0, 0, err
	}

	rd := objreader.New(rest)
	dictVal, err := rd.ParseObject()
	if err != nil {
		return 0, 0, fmt.Errorf("xref stream: malformed dictionary: %w", err)
	}
	dict, ok := dictVal.(model.Dict)
	if !ok {
		return 0, 0, fmt.Errorf("xref stream: object is not a dictionary: %w", model.ErrMalformedXref)
	}

	afterDict := rd.Position()
	matched, streamStart := lexscan.MatchKeyword(rest, afterDict, "stream")
	if !matched {
		return 0, 0, fmt.Errorf("xref stream: missing \"stream\" keyword: %w", model.ErrMalformedXref)
	}
	// The stream keyword is followed by CRLF or LF (never a bare CR),
	// ISO 32000 §7.3.8.1.
	if streamStart < len(rest) && rest[streamStart] == '\r' {
		streamStart++
	}
	if streamStart < len(rest) && rest[streamStart] == '\n' {
		streamStart++
	}

	length, err := c.streamLength(dict, rest, streamStart)
	if err != nil {
		return 0, 0, err
	}
	if streamStart+length > len(rest) {
		return 0, 0, fmt.Errorf("xref stream: declared length runs past file end: %w", model.ErrTruncated)
	}
	raw := rest[streamStart : streamStart+length]

	pipeline, err := filter.ParseDict(dict["Filter"], dict["DecodeParms"], nil)
	if err != nil {
		return 0, 0, fmt.Errorf("xref stream: %w", err)
	}
	decodedReader, err := pipeline.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("xref stream: %w", err)
	}
	decoded, err := ioutil.ReadAll(decodedReader)
	if err != nil {
		return 0, 0, fmt.Errorf("xref stream: %w", err)
	}

	layout, err := ParseStreamLayout(dict)
	if err != nil {
		return 0, 0, err
	}
	entries, err := DecodeStream(decoded, layout)
	if err != nil {
		return 0, 0, err
	}
	c.result.Merge(entries)

	if !primary {
		return 0, 0, nil
	}

	newRawTrailer(dict).mergeInto(&c.trailerAcc)
	if v, has := dict["Prev"]; has {
		if off, ok := offsetOf(v); ok {
			prev = off
		}
	}
	if v, has := dict["XRefStm"]; has {
		if off, ok := offsetOf(v); ok {
			xrefStm = off
		}
	}
	return prev, xrefStm, nil
}

// streamLength resolves a stream's byte length. Direct integers are
// trusted outright; an indirect /Length (some producers forward-reference
// it) cannot be resolved this early in document opening, since the xref
// map that would let us look it up is exactly what's under construction,
// so we fall back to scanning for "endstream" the same way the resolver
// does for any other stream with an untrustworthy declared length.
func (c *chain) streamLength(dict model.Dict, buf []byte, streamStart int) (int, error) {
	if n, ok := dict["Length"].(model.Integer); ok && int(n) >= 0 && streamStart+int(n) <= len(buf) {
		return int(n), nil
	}
	idx := lexscan.FindKeyword(buf, streamStart, "endstream")
	if idx < 0 {
		return 0, fmt.Errorf("xref stream: no /Length and no \"endstream\" found: %w", model.ErrStreamLength)
	}
	end := lexscan.SkipBackWhitespace(buf, idx-1) + 1
	if end < streamStart {
		end = streamStart
	}
	return end - streamStart, nil
}
