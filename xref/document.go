package xref

import "github.com/corvidae-labs/pdfxref/model"

// ValueResolver is the get/dereference surface a Document delegates to.
// It is implemented by *resolver.Resolver; expressing it as an interface
// here (rather than importing package resolver, which itself imports
// xref for Map/Entry/Trailer) keeps the two packages from forming an
// import cycle.
type ValueResolver interface {
	Get(model.ObjectKey) (model.Value, error)
}

// Document is the consolidated view of one opened PDF: its cross-reference
// map, its trailer, and the resolver that turns ObjectKeys into live
// values. It is spec.md §6's Document.
type Document struct {
	table    *Map
	trailer  Trailer
	resolver ValueResolver
}

// NewDocument assembles a Document from an already-resolved xref map and
// trailer plus the resolver that will service object lookups. The root
// package's Open/OpenFile is the only intended caller: it is the one place
// that can construct both a *Map/Trailer (via ResolveTrailer) and a
// *resolver.Resolver (which needs the Map to be built first).
func NewDocument(table *Map, trailer Trailer, resolver ValueResolver) *Document {
	return &Document{table: table, trailer: trailer, resolver: resolver}
}

// XrefTable returns the consolidated cross-reference map.
func (d *Document) XrefTable() *Map { return d.table }

// Trailer returns the consolidated trailer.
func (d *Document) Trailer() Trailer { return d.trailer }

// Resolve dereferences key to its live value.
func (d *Document) Resolve(key model.ObjectKey) (model.Value, error) {
	return d.resolver.Get(key)
}

// HighestObjectNumber returns the largest object number present in the
// cross-reference map.
func (d *Document) HighestObjectNumber() uint64 {
	return d.table.HighestObjectNumber()
}

// Root resolves and returns the document catalog, if the trailer names one.
func (d *Document) Root() (model.Value, error) {
	if d.trailer.Root == nil {
		return model.Null{}, nil
	}
	return d.Resolve(d.trailer.Root.Key())
}

// Info resolves and returns the document information dictionary, if the
// trailer names one.
func (d *Document) Info() (model.Value, error) {
	if d.trailer.Info == nil {
		return model.Null{}, nil
	}
	return d.Resolve(d.trailer.Info.Key())
}
