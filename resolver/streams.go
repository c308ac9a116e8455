package resolver

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/corvidae-labs/pdfxref/filter"
	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objstream"
)

// streamLength resolves a stream object's byte count. dict["Length"] is
// usually a direct integer; when it is an indirect reference (legal, and
// common for streams produced before their own length is known), it is
// resolved against the now-complete xref map. In lenient mode, if the
// declared length doesn't land on "endstream", the true end is found by
// scanning for the keyword instead (spec.md §5, "a stream's declared length
// is advisory, not authoritative"); in strict mode a declared length that
// fits the buffer is returned as is.
func (r *Resolver) streamLength(key model.ObjectKey, dict model.Dict, buf []byte, streamStart int) (int, error) {
	declared, hasDeclared := -1, false
	if raw, has := dict["Length"]; has {
		v, err := r.resolveValue(raw)
		if err == nil {
			if n, ok := v.(model.Integer); ok && n >= 0 {
				declared, hasDeclared = int(n), true
			}
		}
	}

	if hasDeclared && streamStart+declared <= len(buf) {
		end := streamStart + declared
		if looksLikeEndstream(buf, end) || !r.lenient {
			return declared, nil
		}
	}

	idx := lexscan.FindKeyword(buf, streamStart, "endstream")
	if idx < 0 {
		if hasDeclared {
			return declared, nil
		}
		return 0, fmt.Errorf("object %s: %w", key, model.ErrStreamLength)
	}
	end := lexscan.SkipBackWhitespace(buf, idx-1) + 1
	if end < streamStart {
		end = streamStart
	}
	return end - streamStart, nil
}

func looksLikeEndstream(buf []byte, at int) bool {
	matched, _ := lexscan.MatchKeyword(buf, at, "endstream")
	return matched
}

// objectStreamFor returns (building and caching, if necessary) the
// objstream.Reader for the object stream living at streamKey.
func (r *Resolver) objectStreamFor(streamKey model.ObjectKey) (*objstream.Reader, error) {
	if os, ok := r.objstreams[streamKey]; ok {
		return os, nil
	}

	v, err := r.Get(streamKey)
	if err != nil {
		return nil, err
	}
	stm, ok := v.(model.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %s: not a stream: %w", streamKey, model.ErrCorruptObject)
	}

	decoded, err := r.decodedStreamBytes(streamKey, stm)
	if err != nil {
		return nil, err
	}

	n, _ := stm.Args["N"].(model.Integer)
	first, _ := stm.Args["First"].(model.Integer)
	os, err := objstream.New(decoded, int64(n), int64(first))
	if err != nil {
		return nil, err
	}
	r.objstreams[streamKey] = os
	return os, nil
}

// StreamBytes returns the fully decoded, decrypted content of a stream
// object previously returned by Get/Resolve.
func (r *Resolver) StreamBytes(key model.ObjectKey, stm model.Stream) ([]byte, error) {
	return r.decodedStreamBytes(key, stm)
}

func (r *Resolver) decodedStreamBytes(key model.ObjectKey, stm model.Stream) ([]byte, error) {
	raw := stm.RawContent
	if raw == nil {
		var err error
		raw, err = r.src.ReadAt(stm.Offset, int(stm.Length))
		if err != nil {
			return nil, err
		}
	}

	if r.dec != nil && stm.Args["Type"] != model.Name("XRef") {
		decrypted, err := r.dec.DecryptStream(key, raw)
		if err == nil {
			raw = decrypted
		}
	}

	pipeline, err := filter.ParseDict(stm.Args["Filter"], stm.Args["DecodeParms"], r.resolveValue)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	decodedReader, err := pipeline.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	decoded, err := ioutil.ReadAll(decodedReader)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	return decoded, nil
}
