// Package objreader parses one PDF primitive (integer, real, name, string,
// array, dictionary, boolean, null, or indirect reference) at a time. It is
// spec.md's ObjectReader, built on top of the tokenizer the teacher PDF
// library itself depends on.
package objreader

import (
	"errors"
	"fmt"

	tok "github.com/benoitkugler/pstokenizer"

	"github.com/corvidae-labs/pdfxref/model"
)

var (
	errArrayNotTerminated      = errors.New("objreader: unterminated array")
	errDictNotTerminated       = errors.New("objreader: unterminated dictionary")
	errDictCorrupt             = errors.New("objreader: corrupted dictionary")
	errDictDuplicateKey        = errors.New("objreader: duplicate dictionary key")
	errUnexpectedEOF           = errors.New("objreader: unexpected end of input")
)

// Reader parses PDF object syntax out of a byte buffer. It holds no
// reference to a pdfio.Source: callers slice out the bytes they want parsed
// (typically via Source.ReadAt) and hand them to New.
type Reader struct {
	tk *tok.Tokenizer
}

// New wraps a byte buffer for object parsing, starting at its first byte.
func New(buf []byte) *Reader {
	return &Reader{tk: tok.NewTokenizer(buf)}
}

// Position returns the reader's current offset into the buffer it was
// constructed with.
func (r *Reader) Position() int { return r.tk.CurrentPosition() }

// SetPosition rewinds/advances the reader to an absolute offset.
func (r *Reader) SetPosition(pos int) { r.tk.SetPosition(pos) }

// ParseObject reads one PDF object starting at the current position.
func (r *Reader) ParseObject() (model.Value, error) {
	t, err := r.tk.NextToken()
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case tok.EOF:
		return nil, errUnexpectedEOF
	case tok.Name:
		return model.Name(t.Value), nil
	case tok.String:
		return model.StringLiteral(t.Value), nil
	case tok.StringHex:
		return model.HexString(t.Value), nil
	case tok.StartArray:
		return r.parseArray()
	case tok.StartDic:
		return r.parseDict()
	case tok.Float:
		f, err := t.Float()
		if err != nil {
			return nil, err
		}
		return model.Real(f), nil
	case tok.Other:
		return r.parseKeyword(t.Value)
	case tok.Integer:
		return r.parseIntegerOrReference(t)
	default:
		return nil, fmt.Errorf("objreader: unexpected token kind %v", t.Kind)
	}
}

func (r *Reader) parseArray() (model.Array, error) {
	arr := model.Array{}
	for {
		t, err := r.tk.PeekToken()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case tok.EndArray:
			_, _ = r.tk.NextToken()
			return arr, nil
		case tok.EOF:
			return nil, errArrayNotTerminated
		default:
			v, err := r.ParseObject()
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	}
}

func (r *Reader) parseDict() (model.Dict, error) {
	d := model.Dict{}
	for {
		t, err := r.tk.PeekToken()
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case tok.EndDic:
			_, _ = r.tk.NextToken()
			return d, nil
		case tok.EOF:
			return nil, errDictNotTerminated
		case tok.Name:
			key := model.Name(t.Value)
			_, _ = r.tk.NextToken() // consume the key

			var v model.Value
			if r.tk.HasEOLBeforeToken() {
				// Tolerate a missing value before an end-of-line, which
				// some producers emit; treat it as an empty string rather
				// than failing the whole dictionary.
				v = model.StringLiteral("")
			} else {
				v, err = r.ParseObject()
				if err != nil {
					return nil, err
				}
			}

			// The null object as a dictionary value is equivalent to the
			// entry being entirely absent (ISO 32000 §7.3.7).
			if _, isNull := v.(model.Null); !isNull {
				if _, has := d[key]; has {
					return nil, errDictDuplicateKey
				}
				d[key] = v
			}
		default:
			return nil, errDictCorrupt
		}
	}
}

func (r *Reader) parseKeyword(l []byte) (model.Value, error) {
	switch string(l) {
	case "null":
		return model.Null{}, nil
	case "true":
		return model.Boolean(true), nil
	case "false":
		return model.Boolean(false), nil
	default:
		return nil, fmt.Errorf("objreader: unexpected keyword %q", l)
	}
}

// parseIntegerOrReference handles the "123" vs "123 0 R" ambiguity: an
// integer is only an indirect reference if it is followed by another
// integer and then the literal "R", all without having been consumed yet.
func (r *Reader) parseIntegerOrReference(first tok.Token) (model.Value, error) {
	i, err := first.Int()
	if err != nil {
		return nil, err
	}

	next, err := r.tk.PeekToken()
	if err != nil {
		return nil, err
	}
	gen, genErr := next.Int()
	if next.Kind != tok.Integer || genErr != nil {
		return model.Integer(i), nil
	}

	afterGen, err := r.tk.PeekPeekToken()
	if err != nil || !afterGen.IsOther("R") {
		return model.Integer(i), nil
	}

	_, _ = r.tk.NextToken() // consume generation
	_, _ = r.tk.NextToken() // consume "R"
	return model.Reference{ObjectNumber: uint64(i), GenerationNumber: uint32(gen)}, nil
}

// ObjectHeader parses the "N G obj" declaration at the current position,
// without parsing the value that follows it. It is used by every caller
// that needs to verify a claimed (object number, generation) pair before
// trusting an xref offset.
func ObjectHeader(buf []byte) (number uint64, generation uint32, end int, err error) {
	tk := tok.NewTokenizer(buf)

	numTok, err := tk.NextToken()
	if err != nil {
		return 0, 0, 0, err
	}
	n, err := numTok.Int()
	if numTok.Kind != tok.Integer || err != nil {
		return 0, 0, 0, fmt.Errorf("objreader: missing object number: %w", model.ErrCorruptObject)
	}

	genTok, err := tk.NextToken()
	if err != nil {
		return 0, 0, 0, err
	}
	g, err := genTok.Int()
	if genTok.Kind != tok.Integer || err != nil {
		return 0, 0, 0, fmt.Errorf("objreader: missing generation number: %w", model.ErrCorruptObject)
	}

	kw, err := tk.NextToken()
	if err != nil {
		return 0, 0, 0, err
	}
	if !kw.IsOther("obj") {
		return 0, 0, 0, fmt.Errorf("objreader: missing \"obj\" keyword: %w", model.ErrCorruptObject)
	}

	return uint64(n), uint32(g), tk.CurrentPosition(), nil
}

// NewFromTokenizer builds a Reader over an already-constructed tokenizer,
// parsing from the tokenizer's current position.
func NewFromTokenizer(tk *tok.Tokenizer) *Reader { return &Reader{tk: tk} }
