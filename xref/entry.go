// Package xref implements the cross-reference chain walker (spec.md
// §4.3), the cross-reference stream decoder (§4.4), and the consolidated
// Document that owns the resulting Map and Trailer (§3, §6).
package xref

import "github.com/corvidae-labs/pdfxref/model"

// Kind discriminates the three shapes an Entry can take.
type Kind uint8

const (
	// KindFree marks an object slot as unused.
	KindFree Kind = iota
	// KindInUse is a regular indirect object living at a byte offset.
	KindInUse
	// KindCompressed is an object living inside an object stream.
	KindCompressed
)

// Entry is the tagged value spec.md §3 calls XrefEntry.
type Entry struct {
	Kind Kind

	// valid when Kind == KindInUse
	Offset int64

	// valid when Kind == KindCompressed
	StreamKey         model.ObjectKey
	IndexWithinStream uint32

	// valid when Kind == KindFree
	NextFree model.ObjectKey
}

// InUse builds an Entry for an object living at offset.
func InUse(offset int64) Entry { return Entry{Kind: KindInUse, Offset: offset} }

// Compressed builds an Entry for an object living inside an object stream.
func Compressed(streamKey model.ObjectKey, index uint32) Entry {
	return Entry{Kind: KindCompressed, StreamKey: streamKey, IndexWithinStream: index}
}

// Free builds an Entry for a free slot, chained to the next free key.
func Free(next model.ObjectKey) Entry { return Entry{Kind: KindFree, NextFree: next} }

// Map is a mapping from object key to xref entry. Keys are unique; an
// insertion-order slice is kept alongside the map so that recovery (which
// must iterate deterministically, per spec.md §3) doesn't depend on Go's
// randomized map iteration order.
type Map struct {
	entries map[model.ObjectKey]Entry
	order   []model.ObjectKey
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[model.ObjectKey]Entry)}
}

// Get looks up key, reporting whether it is present.
func (m *Map) Get(key model.ObjectKey) (Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

// Set installs or overwrites the entry for key.
func (m *Map) Set(key model.ObjectKey, e Entry) {
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = e
}

// SetIfAbsent installs the entry for key only if it isn't already present.
// This is the primitive the chain walker uses to give newer revisions
// priority: once a key is set from the newest-seen table, the same key
// found in an older /Prev table must not overwrite it.
func (m *Map) SetIfAbsent(key model.ObjectKey, e Entry) (inserted bool) {
	if _, exists := m.entries[key]; exists {
		return false
	}
	m.Set(key, e)
	return true
}

// Delete removes key's entry, if any.
func (m *Map) Delete(key model.ObjectKey) {
	if _, exists := m.entries[key]; !exists {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns all keys in insertion order.
func (m *Map) Keys() []model.ObjectKey {
	out := make([]model.ObjectKey, len(m.order))
	copy(out, m.order)
	return out
}

// HighestObjectNumber returns the largest object number present in the
// map, or 0 if it is empty.
func (m *Map) HighestObjectNumber() uint64 {
	var max uint64
	for k := range m.entries {
		if k.Number > max {
			max = k.Number
		}
	}
	return max
}

// Merge copies every entry from other into m that m does not already have
// a key for (i.e. other is treated as older/lower-priority than m).
func (m *Map) Merge(other *Map) {
	for _, k := range other.order {
		e, _ := other.Get(k)
		m.SetIfAbsent(k, e)
	}
}
