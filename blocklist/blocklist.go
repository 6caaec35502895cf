// Package blocklist holds the identifier and domain blocklist enforced by the
// tunnel: the persisted document, its derived lookup index and the store that
// serializes mutations and publishes new indexes.
package blocklist

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Entry is a blocked project identifier with its optional domain rules.
type Entry struct {
	Identifier     string   `json:"identifier"`
	Label          string   `json:"label"`
	BlockedDomains []string `json:"blockedDomains"`
}

// Data is the persisted blocklist document.
type Data struct {
	Entries              []Entry  `json:"entries"`
	GlobalBlockedDomains []string `json:"globalBlockedDomains"`
}

// legacyData is the document shape written by earlier deployments, where
// identifiers were called api keys.
type legacyData struct {
	APIKeys []struct {
		APIKey         string   `json:"apiKey"`
		Label          string   `json:"label"`
		BlockedDomains []string `json:"blockedDomains"`
	} `json:"apiKeys"`
}

// ParseData decodes a blocklist document. Both the current and the legacy
// shape are accepted. Domains are normalized and deduplicated, entries
// sharing an identifier are merged into the first one.
func ParseData(b []byte) (*Data, error) {
	var doc struct {
		Data
		legacyData
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw := doc.Data.Entries
	for _, e := range doc.APIKeys {
		raw = append(raw, Entry{Identifier: e.APIKey, Label: e.Label, BlockedDomains: e.BlockedDomains})
	}

	d := &Data{
		Entries:              make([]Entry, 0, len(raw)),
		GlobalBlockedDomains: appendDomains([]string{}, doc.GlobalBlockedDomains...),
	}
	pos := make(map[string]int, len(raw))
	for _, e := range raw {
		if e.Identifier == "" {
			return nil, fmt.Errorf("%w: entry with empty identifier", ErrMalformed)
		}
		if i, ok := pos[e.Identifier]; ok {
			d.Entries[i].BlockedDomains = appendDomains(d.Entries[i].BlockedDomains, e.BlockedDomains...)
			continue
		}
		pos[e.Identifier] = len(d.Entries)
		d.Entries = append(d.Entries, Entry{
			Identifier:     e.Identifier,
			Label:          e.Label,
			BlockedDomains: appendDomains([]string{}, e.BlockedDomains...),
		})
	}
	return d, nil
}

// Marshal encodes the document with two-space indentation and a trailing
// newline.
func (d *Data) Marshal() ([]byte, error) {
	out := Data{
		Entries:              make([]Entry, len(d.Entries)),
		GlobalBlockedDomains: d.GlobalBlockedDomains,
	}
	if out.GlobalBlockedDomains == nil {
		out.GlobalBlockedDomains = []string{}
	}
	for i, e := range d.Entries {
		if e.BlockedDomains == nil {
			e.BlockedDomains = []string{}
		}
		out.Entries[i] = e
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Clone returns a deep copy. Mutations are always applied to a clone so that
// a published document is never modified.
func (d *Data) Clone() *Data {
	c := &Data{
		Entries:              make([]Entry, len(d.Entries)),
		GlobalBlockedDomains: slices.Clone(d.GlobalBlockedDomains),
	}
	for i, e := range d.Entries {
		c.Entries[i] = Entry{
			Identifier:     e.Identifier,
			Label:          e.Label,
			BlockedDomains: slices.Clone(e.BlockedDomains),
		}
	}
	return c
}

// clone copies e with a non-nil domain slice so it encodes as [].
func (e Entry) clone() Entry {
	return Entry{Identifier: e.Identifier, Label: e.Label, BlockedDomains: append([]string{}, e.BlockedDomains...)}
}

func (d *Data) find(id string) int {
	return slices.IndexFunc(d.Entries, func(e Entry) bool { return e.Identifier == id })
}

// appendDomains appends normalized domains to dst keeping insertion order and
// skipping duplicates and empty values.
func appendDomains(dst []string, domains ...string) []string {
	for _, raw := range domains {
		d := NormalizeDomain(raw)
		if d == "" || slices.Contains(dst, d) {
			continue
		}
		dst = append(dst, d)
	}
	return dst
}
