package blocklist

import "fmt"

// Rule names the blocklist rule that produced a decision.
type Rule int

const (
	RuleNone Rule = iota
	RuleGlobalDomain
	RuleIdentifierDomain
	RuleIdentifier
)

func (r Rule) String() string {
	switch r {
	case RuleNone:
		return "none"
	case RuleGlobalDomain:
		return "global_domain"
	case RuleIdentifierDomain:
		return "identifier_domain"
	case RuleIdentifier:
		return "identifier"
	default:
		return "unknown"
	}
}

// Decision is the verdict for one request.
type Decision struct {
	Blocked    bool
	Rule       Rule
	Identifier string
	Hostname   string
}

var allow = Decision{}

// Reason renders the deny message returned to callers. It is empty for
// allowed requests.
func (d Decision) Reason() string {
	switch d.Rule {
	case RuleGlobalDomain:
		return fmt.Sprintf("domain blocked globally: %s", d.Hostname)
	case RuleIdentifierDomain:
		return fmt.Sprintf("domain blocked for identifier %s: %s", d.Identifier, d.Hostname)
	case RuleIdentifier:
		return fmt.Sprintf("identifier blocked: %s", d.Identifier)
	}
	return ""
}

// Decide evaluates the rules in order, the first denial wins:
//
//  1. hostname matches a global blocked domain
//  2. no identifier: allow
//  3. identifier not listed: allow
//  4. hostname matches a domain blocked for the identifier
//  5. identifier listed: deny
//
// An empty identifier or hostname means absent.
func (idx *Index) Decide(identifier, hostname string) Decision {
	if hostname != "" && IsDomainBlocked(hostname, idx.global) {
		return Decision{Blocked: true, Rule: RuleGlobalDomain, Identifier: identifier, Hostname: hostname}
	}
	if identifier == "" {
		return allow
	}
	if _, ok := idx.entries[identifier]; !ok {
		return allow
	}
	if hostname != "" && IsDomainBlocked(hostname, idx.perIdentifier[identifier]) {
		return Decision{Blocked: true, Rule: RuleIdentifierDomain, Identifier: identifier, Hostname: hostname}
	}
	return Decision{Blocked: true, Rule: RuleIdentifier, Identifier: identifier, Hostname: hostname}
}
