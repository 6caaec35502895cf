package blocklist

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// DomainSet is a set of normalized domains.
type DomainSet map[string]struct{}

func NewDomainSet(domains ...string) DomainSet {
	s := make(DomainSet, len(domains))
	for _, d := range domains {
		if n := NormalizeDomain(d); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

func (s DomainSet) Has(domain string) bool {
	_, ok := s[domain]
	return ok
}

// IsDomainBlocked reports whether hostname equals a member of set or is a
// subdomain of one. Candidates are taken only at label boundaries, so
// "ample.com" never matches "example.com".
func IsDomainBlocked(hostname string, set DomainSet) bool {
	if len(set) == 0 || hostname == "" {
		return false
	}

	h := hostname
	for {
		if _, ok := set[h]; ok {
			return true
		}
		i := strings.IndexByte(h, '.')
		if i < 0 {
			return false
		}
		h = h[i+1:]
	}
}

var idnaProfile = idna.Lookup

// NormalizeDomain lowercases the domain, trims whitespace and the trailing
// root dot and converts internationalized names to their ASCII form. When
// the IDNA conversion rejects the input the lowercased form is returned
// unchanged so that operators can still block odd hostnames literally.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimSuffix(d, ".")
	if d == "" {
		return ""
	}
	if ascii, err := idnaProfile.ToASCII(d); err == nil && ascii != "" {
		return ascii
	}
	return d
}

// RequestHost returns the normalized hostname a request originates from,
// taken from the Referer header and falling back to Origin. It returns ""
// when neither header carries a parsable URL with a host.
func RequestHost(r *http.Request) string {
	for _, raw := range []string{r.Header.Get("Referer"), r.Header.Get("Origin")} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		if h := u.Hostname(); h != "" {
			return NormalizeDomain(h)
		}
		return ""
	}
	return ""
}
