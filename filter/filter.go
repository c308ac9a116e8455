// Package filter implements the decode-filter pipeline a PDF stream's
// /Filter and /DecodeParms entries describe. It is spec.md's
// FilterPipeline collaborator: kept intentionally small. The resolver,
// the xref stream walker and brute-force recovery use it to materialize
// decoded stream payloads (Decode); Skip finds the end of one filter's
// encoded data from its end-of-data marker, and has no caller inside
// this module.
package filter

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/hhrutter/lzw"

	"github.com/corvidae-labs/pdfxref/model"
)

// Names of the filters recognized by ISO 32000 §7.4.
const (
	Flate     = "FlateDecode"
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	DCT       = "DCTDecode"
	CCITTFax  = "CCITTFaxDecode"
	JPX       = "JPXDecode"
	Crypt     = "Crypt"
)

// Filter is one entry of a decode pipeline.
type Filter struct {
	Name   string
	Params map[string]int
}

// Pipeline is the ordered chain of filters applied to a stream's raw bytes.
type Pipeline []Filter

// ParseDict builds a Pipeline from a stream dictionary's (already resolved)
// /Filter and /DecodeParms entries. Both may be a single Name/Dict or an
// Array of them; resolve is used to follow indirect references found
// inside /DecodeParms (the /Filter entries themselves must be direct per
// spec, but we tolerate references defensively).
func ParseDict(filterEntry, parmsEntry model.Value, resolve func(model.Value) (model.Value, error)) (Pipeline, error) {
	if resolve == nil {
		resolve = func(v model.Value) (model.Value, error) { return v, nil }
	}

	names, err := asList(filterEntry)
	if err != nil {
		return nil, err
	}
	parms, err := asList(parmsEntry)
	if err != nil {
		return nil, err
	}

	pipeline := make(Pipeline, 0, len(names))
	for i, n := range names {
		name, ok := n.(model.Name)
		if !ok {
			return nil, fmt.Errorf("filter: /Filter entry %d is not a name", i)
		}

		var paramDict model.Dict
		if i < len(parms) {
			resolved, err := resolve(parms[i])
			if err != nil {
				return nil, err
			}
			if d, ok := resolved.(model.Dict); ok {
				paramDict = d
			}
		}

		params := map[string]int{}
		for k, v := range paramDict {
			resolved, err := resolve(v)
			if err != nil {
				continue
			}
			switch n := resolved.(type) {
			case model.Integer:
				params[string(k)] = int(n)
			case model.Boolean:
				if n {
					params[string(k)] = 1
				}
			}
		}

		pipeline = append(pipeline, Filter{Name: string(name), Params: params})
	}
	return pipeline, nil
}

func asList(v model.Value) ([]model.Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case model.Null:
		return nil, nil
	case model.Array:
		return []model.Value(v), nil
	default:
		return []model.Value{v}, nil
	}
}

// Decode runs the full pipeline over r, returning a reader of fully decoded
// bytes.
func (p Pipeline) Decode(r io.Reader) (io.Reader, error) {
	for _, f := range p {
		var err error
		r, err = f.decode(r)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Name, err)
		}
	}
	return r, nil
}

func (f Filter) decode(r io.Reader) (io.Reader, error) {
	switch f.Name {
	case Flate:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		return applyPredictor(zr, f.Params)
	case LZW:
		early := f.Params["EarlyChange"] != 0
		if _, has := f.Params["EarlyChange"]; !has {
			early = true // default value 1 (true), per ISO 32000 Table 8
		}
		return applyPredictor(lzw.NewReader(r, early), f.Params)
	case ASCIIHex:
		return decodeASCIIHex(r)
	case ASCII85:
		return decodeASCII85(r)
	case RunLength:
		return decodeRunLength(r)
	case Crypt, DCT, CCITTFax, JPX:
		// Image/identity codecs: these change pixel representation, not
		// object boundaries, and decoding them is outside the resolver's
		// concern (see SPEC_FULL.md §4.10). Pass through unchanged.
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported filter %q", f.Name)
	}
}

// Skip consumes exactly one filter's encoded data from r up to (and
// including) its end-of-data marker, returning the number of encoded bytes
// consumed. Only the first filter is run, rather than the whole
// pipeline's Decode, because Skip only needs to recognize the EOD marker,
// not actually materialize the plaintext. (The resolver does not use
// Skip: it finds a stream's end by scanning for "endstream".)
func (p Pipeline) Skip(r io.Reader) (int, error) {
	if len(p) == 0 {
		return 0, errors.New("filter: empty pipeline has no EOD marker")
	}
	return p[0].skip(r)
}

func (f Filter) skip(r io.Reader) (int, error) {
	cr := &countingReader{r: r}
	switch f.Name {
	case Flate:
		zr, err := zlib.NewReader(cr)
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(ioutil.Discard, zr); err != nil {
			return 0, err
		}
		return cr.n, zr.Close()
	case LZW:
		early := f.Params["EarlyChange"] != 0
		if _, has := f.Params["EarlyChange"]; !has {
			early = true
		}
		lr := lzw.NewReader(cr, early)
		if _, err := io.Copy(ioutil.Discard, lr); err != nil {
			return 0, err
		}
		return cr.n, lr.Close()
	case ASCIIHex:
		_, err := io.Copy(ioutil.Discard, &eodReader{r: cr, marker: []byte{'>'}})
		return cr.n, err
	case ASCII85:
		_, err := io.Copy(ioutil.Discard, &eodReader{r: cr, marker: []byte("~>")})
		return cr.n, err
	case RunLength:
		err := skipRunLength(cr)
		return cr.n, err
	default:
		return 0, fmt.Errorf("filter %s: no end-of-data marker to search for", f.Name)
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	// Hand out one byte per call, so that buffering decoders (zlib's
	// bufio wrapper, eodReader's chunks) never pull bytes past the
	// end-of-data marker out of r and the count stays exact.
	if len(p) > 1 {
		p = p[:1]
	}
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// eodReader yields the bytes of r up to and including the first
// occurrence of marker, then reports EOF. It reads r in chunks of up to
// 256 bytes; under Skip, r is a countingReader that returns one byte per
// read, so skipping stops exactly at the marker.
type eodReader struct {
	r      io.Reader
	marker []byte
	buf    bytes.Buffer
	done   bool
}

func (e *eodReader) Read(p []byte) (int, error) {
	if e.done && e.buf.Len() == 0 {
		return 0, io.EOF
	}
	for !e.done {
		var chunk [256]byte
		n, err := e.r.Read(chunk[:])
		if n > 0 {
			e.buf.Write(chunk[:n])
			if idx := bytes.Index(e.buf.Bytes(), e.marker); idx >= 0 {
				e.buf.Truncate(idx + len(e.marker))
				e.done = true
			}
		}
		if err != nil {
			if err == io.EOF && !e.done {
				return 0, errors.New("missing end-of-data marker")
			}
			if err != io.EOF {
				return 0, err
			}
			break
		}
		if e.done {
			break
		}
	}
	return e.buf.Read(p)
}

func decodeASCIIHex(r io.Reader) (io.Reader, error) {
	data, err := ioutil.ReadAll(&eodReader{r: r, marker: []byte{'>'}})
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSuffix(data, []byte{'>'})
	out := make([]byte, 0, len(data)/2+1)
	var hi byte
	haveHi := false
	for _, b := range data {
		var v byte
		switch {
		case b >= '0' && b <= '9':
			v = b - '0'
		case b >= 'a' && b <= 'f':
			v = b - 'a' + 10
		case b >= 'A' && b <= 'F':
			v = b - 'A' + 10
		default:
			continue // whitespace is ignored
		}
		if !haveHi {
			hi, haveHi = v, true
		} else {
			out = append(out, hi<<4|v)
			haveHi = false
		}
	}
	if haveHi {
		out = append(out, hi<<4)
	}
	return bytes.NewReader(out), nil
}

func decodeASCII85(r io.Reader) (io.Reader, error) {
	data, err := ioutil.ReadAll(&eodReader{r: r, marker: []byte("~>")})
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSuffix(data, []byte("~>"))

	var out []byte
	var group [5]byte
	n := 0
	flush := func(count int) error {
		for i := count; i < 5; i++ {
			group[i] = 'u'
		}
		var v uint32
		for _, c := range group {
			if c < '!' || c > 'u' {
				return errors.New("ascii85: invalid character")
			}
			v = v*85 + uint32(c-'!')
		}
		var b [4]byte
		b[0] = byte(v >> 24)
		b[1] = byte(v >> 16)
		b[2] = byte(v >> 8)
		b[3] = byte(v)
		out = append(out, b[:count-1]...)
		return nil
	}

	for _, c := range data {
		if c == 'z' && n == 0 {
			out = append(out, 0, 0, 0, 0)
			continue
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0 {
			continue
		}
		group[n] = c
		n++
		if n == 5 {
			if err := flush(5); err != nil {
				return nil, err
			}
			n = 0
		}
	}
	if n > 0 {
		if err := flush(n); err != nil {
			return nil, err
		}
	}
	return bytes.NewReader(out), nil
}

func decodeRunLength(r io.Reader) (io.Reader, error) {
	var out bytes.Buffer
	if err := runLengthDecodeInto(bufio.NewReader(r), &out); err != nil {
		return nil, err
	}
	return bytes.NewReader(out.Bytes()), nil
}

func skipRunLength(r io.Reader) error {
	return runLengthDecodeInto(bufio.NewReader(r), ioutil.Discard)
}

// runLengthDecodeInto implements ISO 32000 §7.4.5's RunLengthDecode: a
// length byte < 128 introduces that many literal bytes plus one; a length
// byte > 128 introduces 257-b copies of the next byte; 128 is the EOD
// marker.
func runLengthDecodeInto(br *bufio.Reader, w io.Writer) error {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return errors.New("runlength: missing EOD marker")
		}
		if b == 0x80 { // EOD
			return nil
		}
		if b < 0x80 {
			count := int(b) + 1
			buf := make([]byte, count)
			if _, err := io.ReadFull(br, buf); err != nil {
				return errors.New("runlength: truncated literal run")
			}
			if _, err := w.Write(buf); err != nil {
				return err
			}
			continue
		}
		count := 257 - int(b)
		rb, err := br.ReadByte()
		if err != nil {
			return errors.New("runlength: truncated repeat run")
		}
		if _, err := w.Write(bytes.Repeat([]byte{rb}, count)); err != nil {
			return err
		}
	}
}
