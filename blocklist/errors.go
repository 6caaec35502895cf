package blocklist

import (
	"errors"
	"fmt"
)

var (
	ErrIdentifierNotFound = errors.New("identifier not found")
	ErrDomainNotFound     = errors.New("domain not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPersist            = errors.New("failed to persist blocklist")
	ErrMalformed          = errors.New("malformed blocklist document")
)

// NotFoundError carries the key that could not be found. It unwraps to
// ErrIdentifierNotFound or ErrDomainNotFound depending on Kind.
type NotFoundError struct {
	Kind error
	Key  string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case ErrIdentifierNotFound:
		return fmt.Sprintf("Identifier %s not found", e.Key)
	case ErrDomainNotFound:
		return fmt.Sprintf("Domain %s not found", e.Key)
	}
	return fmt.Sprintf("%s not found", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return e.Kind
}

func identifierNotFound(id string) error {
	return &NotFoundError{Kind: ErrIdentifierNotFound, Key: id}
}

func domainNotFound(domain string) error {
	return &NotFoundError{Kind: ErrDomainNotFound, Key: domain}
}
