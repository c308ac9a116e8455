package resolver

import (
	"fmt"

	"github.com/corvidae-labs/pdfxref/internal/lexscan"
	"github.com/corvidae-labs/pdfxref/model"
	"github.com/corvidae-labs/pdfxref/objreader"
	"github.com/corvidae-labs/pdfxref/xref"
)

func (r *Resolver) parseInUse(key model.ObjectKey, entry xref.Entry) (model.Value, error) {
	if entry.Offset < 0 || entry.Offset >= r.src.Length() {
		return model.Null{}, nil
	}

	headerWindow, err := r.src.ReadAt(entry.Offset, minInt64(64, r.src.Length()-entry.Offset))
	if err != nil {
		return nil, err
	}
	number, generation, headerLen, err := objreader.ObjectHeader(headerWindow)
	if err != nil {
		if !r.lenient {
			return nil, fmt.Errorf("object %s: claimed offset %d has no parsable object header: %w", key, entry.Offset, model.ErrCorruptObject)
		}
		return model.Null{}, nil // lenient: unparsable header at a claimed offset degrades to null
	}
	if number != key.Number || generation != key.Generation {
		if !r.lenient {
			return nil, fmt.Errorf("object %s: header declares %d %d: %w", key, number, generation, model.ErrObjectMismatch)
		}
		// lenient: trust the xref-claimed offset over the object's own
		// header, a common producer bug.
	}

	rest, err := r.src.ReadAt(entry.Offset+int64(headerLen), int(r.src.Length()-entry.Offset-int64(headerLen)))
	if err != nil {
		return nil, err
	}

	rd := objreader.New(rest)
	value, err := rd.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}

	dict, isDict := value.(model.Dict)
	if !isDict {
		return r.decryptStrings(key, value), nil
	}

	skipped := false
	if matched, after := lexscan.MatchKeyword(rest, rd.Position(), "stream"); matched {
		skipped = true
		streamStart := after
		if streamStart < len(rest) && rest[streamStart] == '\r' {
			streamStart++
		}
		if streamStart < len(rest) && rest[streamStart] == '\n' {
			streamStart++
		}

		length, err := r.streamLength(key, dict, rest, streamStart)
		if err != nil {
			return nil, err
		}
		if streamStart+length > len(rest) {
			length = len(rest) - streamStart
		}

		skipNever := dict["Type"] == model.Name("XRef")
		dictValue := model.Value(dict)
		if !skipNever {
			dictValue = r.decryptStrings(key, dict)
		}
		decryptedDict, _ := dictValue.(model.Dict)
		if decryptedDict == nil {
			decryptedDict = dict
		}

		return model.Stream{
			Args:       decryptedDict,
			Offset:     entry.Offset + int64(headerLen) + int64(streamStart),
			Length:     int64(length),
			RawContent: nil,
		}, nil
	}
	_ = skipped

	return r.decryptStrings(key, dict), nil
}

func (r *Resolver) parseCompressed(entry xref.Entry) (model.Value, error) {
	os, err := r.objectStreamFor(entry.StreamKey)
	if err != nil {
		return nil, err
	}
	v, err := os.ValueAt(int(entry.IndexWithinStream))
	if err != nil {
		return nil, fmt.Errorf("compressed object in stream %s: %w", entry.StreamKey, err)
	}
	// Objects inside an object stream are never themselves encrypted
	// beyond the stream's own encryption, per ISO 32000 §7.5.7.
	return v, nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
