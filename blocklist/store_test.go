package blocklist

import (
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// memPersister keeps the document in memory and can be told to fail.
type memPersister struct {
	mu      sync.Mutex
	data    *Data
	saves   int
	saveErr error
}

func (m *memPersister) Load() (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return &Data{}, nil
	}
	return m.data.Clone(), nil
}

func (m *memPersister) Save(d *Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = d.Clone()
	return nil
}

func newTestStore(t *testing.T, initial *Data) (*Store, *memPersister) {
	t.Helper()
	p := &memPersister{data: initial}
	s, err := NewStore(p)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s, p
}

func TestNewStore_NilPersister(t *testing.T) {
	if _, err := NewStore(nil); err == nil {
		t.Error("expected error for nil persister")
	}
}

func TestStore_UpsertIdentifier(t *testing.T) {
	s, p := newTestStore(t, nil)

	e, err := s.UpsertIdentifier("k", "A")
	if err != nil {
		t.Fatalf("UpsertIdentifier() error = %v", err)
	}
	want := Entry{Identifier: "k", Label: "A", BlockedDomains: []string{}}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	// relabel keeps a single entry
	if _, err := s.UpsertIdentifier("k", "B"); err != nil {
		t.Fatal(err)
	}
	entries := s.Entries()
	if len(entries) != 1 || entries[0].Label != "B" {
		t.Errorf("expected one entry labeled B, got %+v", entries)
	}

	// same label is a no-op and does not write
	saves := p.saves
	if _, err := s.UpsertIdentifier("k", "B"); err != nil {
		t.Fatal(err)
	}
	if p.saves != saves {
		t.Errorf("expected no save for unchanged label, saves went from %d to %d", saves, p.saves)
	}

	if _, err := s.UpsertIdentifier("", "x"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty identifier, got %v", err)
	}
	if _, err := s.UpsertIdentifier("x", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty label, got %v", err)
	}
}

func TestStore_RemoveIdentifier(t *testing.T) {
	s, _ := newTestStore(t, &Data{Entries: []Entry{{Identifier: "k", Label: "A"}}})

	err := s.RemoveIdentifier("missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) || !errors.Is(err, ErrIdentifierNotFound) {
		t.Fatalf("expected identifier NotFoundError, got %v", err)
	}
	if nf.Error() != "Identifier missing not found" {
		t.Errorf("unexpected message %q", nf.Error())
	}

	if err := s.RemoveIdentifier("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Entry("k"); ok {
		t.Error("entry still present after removal")
	}
	if d := s.Decide("k", ""); d.Blocked {
		t.Error("removed identifier is still blocked")
	}
}

func TestStore_GlobalDomains(t *testing.T) {
	s, _ := newTestStore(t, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.AddGlobalDomain("X.com"); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"x.com"}, s.GlobalDomains()); diff != "" {
		t.Errorf("global domains mismatch (-want +got):\n%s", diff)
	}

	if !s.Decide("", "www.x.com").Blocked {
		t.Error("expected global domain to block immediately after add")
	}

	if err := s.RemoveGlobalDomain("nope.com"); !errors.Is(err, ErrDomainNotFound) {
		t.Errorf("expected ErrDomainNotFound, got %v", err)
	}
	if err := s.RemoveGlobalDomain("x.com"); err != nil {
		t.Fatal(err)
	}
	if s.Decide("", "www.x.com").Blocked {
		t.Error("expected domain to be allowed immediately after removal")
	}
	if _, err := s.AddGlobalDomain("  "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStore_IdentifierDomains(t *testing.T) {
	s, _ := newTestStore(t, &Data{Entries: []Entry{{Identifier: "k", Label: "A", BlockedDomains: []string{}}}})

	if _, _, err := s.AddIdentifierDomain("missing", "a.com"); !errors.Is(err, ErrIdentifierNotFound) {
		t.Errorf("expected ErrIdentifierNotFound, got %v", err)
	}
	// identifier is checked before the domain
	if _, _, err := s.AddIdentifierDomain("missing", ""); !errors.Is(err, ErrIdentifierNotFound) {
		t.Errorf("expected ErrIdentifierNotFound before domain validation, got %v", err)
	}
	if _, _, err := s.AddIdentifierDomain("k", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	e, added, err := s.AddIdentifierDomain("k", "evil.com")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("expected the first add to report added")
	}
	e, added, err = s.AddIdentifierDomain("k", "Evil.COM.")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("expected the repeated add to report not added")
	}
	if diff := cmp.Diff([]string{"evil.com"}, e.BlockedDomains); diff != "" {
		t.Errorf("blocked domains mismatch (-want +got):\n%s", diff)
	}
	if d := s.Decide("k", "sub.evil.com"); d.Rule != RuleIdentifierDomain {
		t.Errorf("expected identifier domain rule, got %v", d.Rule)
	}

	if err := s.RemoveIdentifierDomain("missing", "evil.com"); !errors.Is(err, ErrIdentifierNotFound) {
		t.Errorf("expected ErrIdentifierNotFound, got %v", err)
	}
	if err := s.RemoveIdentifierDomain("k", "other.com"); !errors.Is(err, ErrDomainNotFound) {
		t.Errorf("expected ErrDomainNotFound, got %v", err)
	}
	if err := s.RemoveIdentifierDomain("k", "evil.com"); err != nil {
		t.Fatal(err)
	}
	if d := s.Decide("k", "sub.evil.com"); d.Rule != RuleIdentifier {
		t.Errorf("expected bare identifier rule after domain removal, got %v", d.Rule)
	}
}

func TestStore_PersistFailureRollsBack(t *testing.T) {
	s, p := newTestStore(t, nil)
	before := s.Index().Generation()

	p.saveErr = errors.New("disk full")
	_, err := s.UpsertIdentifier("k", "A")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if _, ok := s.Entry("k"); ok {
		t.Error("in-memory state changed despite persist failure")
	}
	if s.Decide("k", "").Blocked {
		t.Error("index changed despite persist failure")
	}
	if s.Index().Generation() != before {
		t.Errorf("generation moved from %d to %d", before, s.Index().Generation())
	}
}

func TestStore_PublishedDataIsImmutable(t *testing.T) {
	s, _ := newTestStore(t, &Data{Entries: []Entry{{Identifier: "k", Label: "A", BlockedDomains: []string{"a.com"}}}})
	old := s.Index()

	if _, _, err := s.AddIdentifierDomain("k", "b.com"); err != nil {
		t.Fatal(err)
	}
	e, _ := old.Entry("k")
	if diff := cmp.Diff([]string{"a.com"}, e.BlockedDomains); diff != "" {
		t.Errorf("old index was modified (-want +got):\n%s", diff)
	}
	if old.Generation() >= s.Index().Generation() {
		t.Error("expected a newer generation after mutation")
	}
}

func TestStore_Reload(t *testing.T) {
	s, p := newTestStore(t, nil)
	p.data = &Data{Entries: []Entry{{Identifier: "external", Label: "edited by hand"}}}

	if err := s.Reload(); err != nil {
		t.Fatal(err)
	}
	if d := s.Decide("external", ""); !d.Blocked {
		t.Error("expected reloaded identifier to be blocked")
	}
}

func TestStore_FilePersisterIntegration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.json")
	s, err := NewStore(NewFilePersister(path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertIdentifier("k", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddGlobalDomain("evil.com"); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(NewFilePersister(path))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s.Entries(), reopened.Entries()); diff != "" {
		t.Errorf("entries differ after reopen (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"evil.com"}, reopened.GlobalDomains()); diff != "" {
		t.Errorf("global domains differ after reopen (-want +got):\n%s", diff)
	}
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	s, _ := newTestStore(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = s.UpsertIdentifier("k", "A")
				_, _ = s.AddGlobalDomain("evil.com")
				_ = s.RemoveIdentifier("k")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				idx := s.Index()
				// an index is always consistent with its own document
				_, inMap := idx.Entry("k")
				inData := idx.Data().find("k") >= 0
				if inMap != inData {
					t.Errorf("index and document disagree: map=%v data=%v", inMap, inData)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// Mutations return the entry as written, even when another writer removes
// the identifier right after.
func TestStore_MutationsReturnWrittenEntry(t *testing.T) {
	s, _ := newTestStore(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				e, err := s.UpsertIdentifier("k", "A")
				if err != nil {
					t.Errorf("UpsertIdentifier() error = %v", err)
					return
				}
				if e.Identifier != "k" || e.Label != "A" || e.BlockedDomains == nil {
					t.Errorf("unexpected upserted entry %+v", e)
					return
				}
				e, _, err = s.AddIdentifierDomain("k", "evil.com")
				if err != nil {
					// removed between the two calls
					if !errors.Is(err, ErrIdentifierNotFound) {
						t.Errorf("AddIdentifierDomain() error = %v", err)
					}
					continue
				}
				if e.Identifier != "k" || !slices.Contains(e.BlockedDomains, "evil.com") {
					t.Errorf("unexpected entry after domain add %+v", e)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.RemoveIdentifier("k")
			}
		}()
	}
	wg.Wait()
}

func TestStore_UpsertSameLabelReturnsEntry(t *testing.T) {
	s, p := newTestStore(t, &Data{Entries: []Entry{{Identifier: "k", Label: "A", BlockedDomains: []string{"a.com"}}}})
	saves := p.saves

	e, err := s.UpsertIdentifier("k", "A")
	if err != nil {
		t.Fatal(err)
	}
	want := Entry{Identifier: "k", Label: "A", BlockedDomains: []string{"a.com"}}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
	if p.saves != saves {
		t.Errorf("expected no write for an unchanged entry, got %d", p.saves-saves)
	}
}
