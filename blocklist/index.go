package blocklist

import "strconv"

// Index is the lookup structure derived from a Data document. It is built
// once per published document and never modified afterwards; the entry
// pointers refer into the document it was built from.
type Index struct {
	data          *Data
	entries       map[string]*Entry
	global        DomainSet
	perIdentifier map[string]DomainSet
	generation    uint64
}

// BuildIndex derives a fresh index from d. d must not be modified after the
// call.
func BuildIndex(d *Data, generation uint64) *Index {
	idx := &Index{
		data:          d,
		entries:       make(map[string]*Entry, len(d.Entries)),
		global:        NewDomainSet(d.GlobalBlockedDomains...),
		perIdentifier: make(map[string]DomainSet, len(d.Entries)),
		generation:    generation,
	}
	for i := range d.Entries {
		e := &d.Entries[i]
		idx.entries[e.Identifier] = e
		idx.perIdentifier[e.Identifier] = NewDomainSet(e.BlockedDomains...)
	}
	return idx
}

// Generation increases with every published index.
func (idx *Index) Generation() uint64 {
	return idx.generation
}

// DecisionKey is the cache key of the decision for identifier and hostname
// under this index. It carries the generation, so keys of an older index are
// never looked up again once a newer one is published.
func (idx *Index) DecisionKey(identifier, hostname string) string {
	return strconv.FormatUint(idx.generation, 10) + "\x00" + identifier + "\x00" + hostname
}

// Data returns the document the index was built from. Callers must treat it
// as read-only.
func (idx *Index) Data() *Data {
	return idx.data
}

// Entry returns the entry for id.
func (idx *Index) Entry(id string) (*Entry, bool) {
	e, ok := idx.entries[id]
	return e, ok
}

// Len returns the number of blocked identifiers.
func (idx *Index) Len() int {
	return len(idx.entries)
}
