// Package resolver turns a cross-reference Map plus a byte source into a
// graph of live PDF values: it is spec.md's Resolver and Document, the
// component every other package (content extraction, page tree walking,
// the CLI) ultimately calls into to get an actual model.Value out of an
// ObjectKey.
package resolver

import "github.com/corvidae-labs/pdfxref/model"

// cellState is the lifecycle of one pooled indirect object, per spec.md
// §5: a cell starts Unresolved, moves to Resolving while its own parse is
// in progress (so a self-referencing or mutually-referencing cycle can be
// caught instead of recursing forever), and ends at resolved or isNull.
type cellState uint8

const (
	unresolved cellState = iota
	resolving
	resolved
	isNull
)

type cell struct {
	state cellState
	value model.Value
}

// pool is the resolver's memo table: once an object has been parsed, every
// later reference to the same key returns the cached value instead of
// re-reading and re-parsing the file.
type pool struct {
	cells map[model.ObjectKey]*cell
}

func newPool() *pool {
	return &pool{cells: make(map[model.ObjectKey]*cell)}
}

func (p *pool) get(key model.ObjectKey) *cell {
	c, ok := p.cells[key]
	if !ok {
		c = &cell{state: unresolved}
		p.cells[key] = c
	}
	return c
}
