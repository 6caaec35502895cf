package blocklist

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Store owns the blocklist. Reads go through the currently published Index
// without locking. Mutations are serialized: each one is applied to a copy
// of the document, persisted, and only then published as a new Index, so a
// failed write leaves both memory and disk at the previous state.
type Store struct {
	mu         sync.Mutex
	persister  Persister
	generation uint64
	current    atomic.Pointer[Index]
}

// NewStore loads the document through p and publishes its first index.
func NewStore(p Persister) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("blocklist: persister cannot be nil")
	}
	d, err := p.Load()
	if err != nil {
		return nil, err
	}
	s := &Store{persister: p}
	s.publish(d)
	return s, nil
}

// publish must be called with mu held (or before the store is shared).
func (s *Store) publish(d *Data) {
	s.generation++
	s.current.Store(BuildIndex(d, s.generation))
}

// Index returns the current published index.
func (s *Store) Index() *Index {
	return s.current.Load()
}

func (s *Store) Decide(identifier, hostname string) Decision {
	return s.Index().Decide(identifier, hostname)
}

func (s *Store) Entries() []Entry {
	return s.Index().Data().Clone().Entries
}

func (s *Store) Entry(id string) (Entry, bool) {
	e, ok := s.Index().Entry(id)
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

func (s *Store) GlobalDomains() []string {
	return append([]string{}, s.Index().Data().GlobalBlockedDomains...)
}

// Reload rereads the document from the persister and publishes it.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.persister.Load()
	if err != nil {
		return err
	}
	s.publish(d)
	return nil
}

// mutate applies fn to a copy of the current document. fn reports whether it
// changed anything; unchanged documents are neither written nor republished.
func (s *Store) mutate(fn func(d *Data) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.Index().Data().Clone()
	changed, err := fn(d)
	if err != nil || !changed {
		return err
	}
	if err := s.persister.Save(d); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	s.publish(d)
	return nil
}

// UpsertIdentifier blocks id, or relabels it when already blocked.
func (s *Store) UpsertIdentifier(id, label string) (Entry, error) {
	if id == "" || label == "" {
		return Entry{}, fmt.Errorf("%w: identifier and label are required", ErrInvalidInput)
	}
	var entry Entry
	err := s.mutate(func(d *Data) (bool, error) {
		i := d.find(id)
		if i < 0 {
			d.Entries = append(d.Entries, Entry{Identifier: id, Label: label, BlockedDomains: []string{}})
			i = len(d.Entries) - 1
		} else if d.Entries[i].Label == label {
			entry = d.Entries[i].clone()
			return false, nil
		} else {
			d.Entries[i].Label = label
		}
		entry = d.Entries[i].clone()
		return true, nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *Store) RemoveIdentifier(id string) error {
	return s.mutate(func(d *Data) (bool, error) {
		i := d.find(id)
		if i < 0 {
			return false, identifierNotFound(id)
		}
		d.Entries = slices.Delete(d.Entries, i, i+1)
		return true, nil
	})
}

// AddGlobalDomain blocks domain for every identifier. It reports whether the
// domain was newly added.
func (s *Store) AddGlobalDomain(domain string) (bool, error) {
	n := NormalizeDomain(domain)
	if n == "" {
		return false, fmt.Errorf("%w: domain is required", ErrInvalidInput)
	}
	var added bool
	err := s.mutate(func(d *Data) (bool, error) {
		if slices.Contains(d.GlobalBlockedDomains, n) {
			return false, nil
		}
		d.GlobalBlockedDomains = append(d.GlobalBlockedDomains, n)
		added = true
		return true, nil
	})
	return added, err
}

func (s *Store) RemoveGlobalDomain(domain string) error {
	n := NormalizeDomain(domain)
	return s.mutate(func(d *Data) (bool, error) {
		i := slices.Index(d.GlobalBlockedDomains, n)
		if n == "" || i < 0 {
			return false, domainNotFound(domain)
		}
		d.GlobalBlockedDomains = slices.Delete(d.GlobalBlockedDomains, i, i+1)
		return true, nil
	})
}

// AddIdentifierDomain blocks domain for id only and returns the updated
// entry and whether the domain was newly added. The identifier is checked
// before the domain.
func (s *Store) AddIdentifierDomain(id, domain string) (Entry, bool, error) {
	if _, ok := s.Index().Entry(id); !ok {
		return Entry{}, false, identifierNotFound(id)
	}
	n := NormalizeDomain(domain)
	if n == "" {
		return Entry{}, false, fmt.Errorf("%w: domain is required", ErrInvalidInput)
	}
	var (
		entry Entry
		added bool
	)
	err := s.mutate(func(d *Data) (bool, error) {
		i := d.find(id)
		if i < 0 {
			return false, identifierNotFound(id)
		}
		if !slices.Contains(d.Entries[i].BlockedDomains, n) {
			d.Entries[i].BlockedDomains = append(d.Entries[i].BlockedDomains, n)
			added = true
		}
		entry = d.Entries[i].clone()
		return added, nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return entry, added, nil
}

func (s *Store) RemoveIdentifierDomain(id, domain string) error {
	n := NormalizeDomain(domain)
	return s.mutate(func(d *Data) (bool, error) {
		i := d.find(id)
		if i < 0 {
			return false, identifierNotFound(id)
		}
		j := slices.Index(d.Entries[i].BlockedDomains, n)
		if n == "" || j < 0 {
			return false, domainNotFound(domain)
		}
		d.Entries[i].BlockedDomains = slices.Delete(d.Entries[i].BlockedDomains, j, j+1)
		return true, nil
	})
}
