package blocklist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFilePersister_LoadMissingFile(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "blocklist.json"))
	d, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(d.Entries) != 0 || len(d.GlobalBlockedDomains) != 0 {
		t.Errorf("expected empty document, got %+v", d)
	}
}

func TestFilePersister_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFilePersister(path).Load()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestFilePersister_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocklist.json")
	p := NewFilePersister(path)

	d := &Data{
		Entries: []Entry{{Identifier: "phc_1", Label: "Acme"}},
	}
	if err := p.Save(d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "entries": [
    {
      "identifier": "phc_1",
      "label": "Acme",
      "blockedDomains": []
    }
  ],
  "globalBlockedDomains": []
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Errorf("saved document mismatch (-want +got):\n%s", diff)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".blocklist.json.tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestFilePersister_RoundTrip(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "blocklist.json"))
	in := &Data{
		Entries: []Entry{
			{Identifier: "a", Label: "A", BlockedDomains: []string{"x.com", "y.com"}},
			{Identifier: "b", Label: "B", BlockedDomains: []string{}},
		},
		GlobalBlockedDomains: []string{"evil.com"},
	}
	if err := p.Save(in); err != nil {
		t.Fatal(err)
	}
	out, err := p.Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseData(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    *Data
		wantErr bool
	}{
		{
			name:  "Case: current shape",
			input: `{"entries":[{"identifier":"k","label":"L","blockedDomains":["A.com"]}],"globalBlockedDomains":["g.com"]}`,
			want: &Data{
				Entries:              []Entry{{Identifier: "k", Label: "L", BlockedDomains: []string{"a.com"}}},
				GlobalBlockedDomains: []string{"g.com"},
			},
		},
		{
			name:  "Case: legacy shape",
			input: `{"apiKeys":[{"apiKey":"phc_x","label":"old"}],"globalBlockedDomains":[]}`,
			want: &Data{
				Entries:              []Entry{{Identifier: "phc_x", Label: "old", BlockedDomains: []string{}}},
				GlobalBlockedDomains: []string{},
			},
		},
		{
			name:  "Case: duplicate identifiers and domains are merged",
			input: `{"entries":[{"identifier":"k","label":"1","blockedDomains":["a.com","a.com"]},{"identifier":"k","label":"2","blockedDomains":["b.com"]}],"globalBlockedDomains":["g.com","G.com"]}`,
			want: &Data{
				Entries:              []Entry{{Identifier: "k", Label: "1", BlockedDomains: []string{"a.com", "b.com"}}},
				GlobalBlockedDomains: []string{"g.com"},
			},
		},
		{
			name:  "Case: empty object",
			input: `{}`,
			want:  &Data{Entries: []Entry{}, GlobalBlockedDomains: []string{}},
		},
		{
			name:    "Case: empty identifier",
			input:   `{"entries":[{"identifier":"","label":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "Case: not json",
			input:   `[1,2`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseData([]byte(tc.input))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseData mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
